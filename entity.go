package ecdb

import (
	"fmt"
	"unsafe"

	"github.com/TheBitDrifter/ecdb/idpool"
)

// entitySize is the byte footprint of the Entity column every table
// reserves in column 0.
const entitySize = unsafe.Sizeof(Entity{})

// WorldID tags an entity with the world it was allocated in. 0 is
// reserved to mean "no world" so the Entity zero value is structurally
// invalid without needing a pool lookup. Real worlds are numbered 1..32.
type WorldID uint8

// WorldHash is a caller-chosen stable identifier for a world (typically
// derived from its name), used by Server to look up a WorldID.
type WorldHash uint32

// Entity is a handle into a World: an index into its entity map paired
// with the generation that index was allocated under, plus the id of the
// owning world. The wire form packs index and generation into 32 bits
// per spec.md §6; World is carried alongside, not packed in.
type Entity struct {
	id    idpool.ID
	World WorldID
}

// InvalidEntity is the zero-value sentinel returned for lookups that
// fail recoverably (e.g. an unknown template id).
var InvalidEntity = Entity{}

// Valid reports whether e is structurally non-zero. It does not check
// generation freshness against a World's id pool; use World.IsValid for
// that.
func (e Entity) Valid() bool {
	return e.World != 0
}

// Index returns the entity's slot index within its world's entity map.
func (e Entity) Index() uint32 { return e.id.Index }

// Generation returns the entity's generation at allocation time.
func (e Entity) Generation() uint16 { return e.id.Generation }

// Pack returns the 32-bit wire form `(index << 10) | generation`.
func (e Entity) Pack() uint32 { return e.id.Pack() }

// PackWithWorld returns a 64-bit wire form carrying WorldID in the upper
// 32 bits, for crossing world boundaries (spec.md §6).
func (e Entity) PackWithWorld() uint64 {
	return uint64(e.World)<<32 | uint64(e.Pack())
}

// UnpackEntity rebuilds an Entity from its 64-bit wire form.
func UnpackEntity(wire uint64) Entity {
	return Entity{
		id:    idpool.Unpack(uint32(wire)),
		World: WorldID(wire >> 32),
	}
}

func (e Entity) String() string {
	return fmt.Sprintf("Entity{world:%d index:%d gen:%d}", e.World, e.id.Index, e.id.Generation)
}

// entityLocation is where a live entity's row data currently lives. A
// zero-value location (tableID 0) means "allocated but not yet
// instantiated" per spec.md §3's Entity Map definition.
type entityLocation struct {
	table TableID
	row   RowID
}

func (l entityLocation) instantiated() bool { return l.table != 0 }

// entityMap is a per-world array indexed by entity index giving
// (table, row).
type entityMap struct {
	locations []entityLocation
}

func newEntityMap() *entityMap {
	return &entityMap{locations: make([]entityLocation, 0, 1024)}
}

func (m *entityMap) ensure(index uint32) {
	if int(index) < len(m.locations) {
		return
	}
	grown := make([]entityLocation, index+1)
	copy(grown, m.locations)
	m.locations = grown
}

func (m *entityMap) set(index uint32, loc entityLocation) {
	m.ensure(index)
	m.locations[index] = loc
}

func (m *entityMap) lookup(e Entity) (entityLocation, bool) {
	if int(e.id.Index) >= len(m.locations) {
		return entityLocation{}, false
	}
	loc := m.locations[e.id.Index]
	return loc, loc.instantiated()
}

func (m *entityMap) clear(index uint32) {
	if int(index) < len(m.locations) {
		m.locations[index] = entityLocation{}
	}
}

func (m *entityMap) clone() *entityMap {
	c := &entityMap{}
	c.locations = append([]entityLocation(nil), m.locations...)
	return c
}

func (m *entityMap) reset() {
	m.locations = m.locations[:0]
}
