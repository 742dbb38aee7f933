package ecdb

import "github.com/TheBitDrifter/bark"

// smallRowWidthThreshold is the column-byte-width cutoff below which a
// new table uses the large (1024-row) partition capacity instead of the
// small (256-row) one; wide rows get smaller partitions to bound the
// cost of a single partition allocation and a single defragment pass.
const smallRowWidthThreshold = 256

// Database is a signature-indexed collection of Tables. Tables are
// created lazily by archetype signature and, outside of a full reset,
// live for the World's lifetime (spec.md §3).
type Database struct {
	tables []*Table // indexed by TableID; index 0 unused so TableID 0 means "none"
	byHash map[uint64]TableID
	nextID TableID
}

func newDatabase() *Database {
	return &Database{
		tables: make([]*Table, 1),
		byHash: make(map[uint64]TableID),
		nextID: 1,
	}
}

// CreateTable returns the table for components' archetype, creating one
// if none exists yet (archetype dedup). Reserved transform columns are
// prepended automatically if the caller didn't include them.
func (d *Database) CreateTable(components ...Component) TableID {
	sig := Of(components...)
	for _, reserved := range reservedComponentIDs {
		sig = sig.With(reserved)
	}
	if existing, ok := d.byHash[sig.Hash()]; ok {
		return existing
	}
	return d.createTableForSignature(sig)
}

func (d *Database) createTableForSignature(sig Signature) TableID {
	if existing, ok := d.byHash[sig.Hash()]; ok {
		return existing
	}
	columns := sig.ComponentIDs()
	width := 0
	for _, c := range columns {
		width += globalRegistry.SizeOf(c)
	}
	capacity := Config.largePartitionCapacity
	if width > smallRowWidthThreshold {
		capacity = Config.smallPartitionCapacity
	}
	id := d.nextID
	tbl := newTable(id, sig, columns, capacity)
	d.tables = append(d.tables, tbl)
	d.byHash[sig.Hash()] = id
	d.nextID++
	return id
}

// FindTable returns the table matching sig exactly, if any.
func (d *Database) FindTable(sig Signature) (TableID, bool) {
	id, ok := d.byHash[sig.Hash()]
	return id, ok
}

// GetTable returns the table for id.
func (d *Database) GetTable(id TableID) (*Table, error) {
	if !d.IsValid(id) {
		return nil, TableNotFoundError{}
	}
	return d.tables[id], nil
}

func (d *Database) mustTable(id TableID) *Table {
	t, err := d.GetTable(id)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	return t
}

// IsValid reports whether id names a live table.
func (d *Database) IsValid(id TableID) bool {
	return id != 0 && int(id) < len(d.tables) && d.tables[id] != nil
}

// Query returns every table whose signature is a superset of inclusive
// and shares no bit with exclusive. Table counts are small (hundreds at
// most); the Frame Pipeline's per-processor cache (§4.8) amortizes this
// to O(1) per frame for steady-state archetypes.
func (d *Database) Query(inclusive, exclusive Signature) []TableID {
	var out []TableID
	for id, t := range d.tables {
		if t == nil {
			continue
		}
		if !t.signature.IsSuperset(inclusive) {
			continue
		}
		if !t.signature.HasNone(exclusive) {
			continue
		}
		out = append(out, TableID(id))
	}
	return out
}

// ForEachTable calls f for every live table.
func (d *Database) ForEachTable(f func(*Table)) {
	for _, t := range d.tables {
		if t != nil {
			f(t)
		}
	}
}

// Reset drops every row in every table but keeps the table shells, so
// TableIDs stay stable across a level reload.
func (d *Database) Reset() {
	for _, t := range d.tables {
		if t == nil {
			continue
		}
		t.partitions = nil
		t.total = 0
	}
}

// Copy deep-clones every table, partition, and column byte buffer into
// dst, used by Server.OverrideWorld to snapshot one world's database
// into another.
func (d *Database) Copy(dst *Database) {
	dst.tables = make([]*Table, len(d.tables))
	dst.byHash = make(map[uint64]TableID, len(d.byHash))
	dst.nextID = d.nextID
	for id, t := range d.tables {
		if t == nil {
			continue
		}
		clone := newTable(t.id, t.signature, append([]ComponentID(nil), t.columns...), t.capacity)
		clone.partitions = make([]*partition, len(t.partitions))
		for i, p := range t.partitions {
			clone.partitions[i] = p.clone()
		}
		clone.total = t.total
		dst.tables[id] = clone
	}
	for h, id := range d.byHash {
		dst.byHash[h] = id
	}
}
