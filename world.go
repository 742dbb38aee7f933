package ecdb

import (
	"reflect"
	"sort"
	"sync"
	"unsafe"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/ecdb/idpool"
	"go.uber.org/zap"
)

// World owns one Database, its id pool, its entity map, its deferred
// command queues, its component-stage arena, its decay buffers, and its
// own Frame Pipeline (spec.md §4.7). Identified by a WorldID (stable
// for its lifetime within a Server) and a caller-chosen WorldHash.
type World struct {
	id   WorldID
	hash WorldHash

	db        *Database
	ids       *idpool.Pool
	entityMap *entityMap
	arena     *arena
	decay     *decayBuffers
	pipeline  *Pipeline

	templates        map[TemplateID]Signature
	initHooksEnabled bool
	cacheValid       bool

	mu           sync.Mutex
	removeQueue  []removeComponentCommand
	addQueue     []addComponentCommand
	deleteQueue  []deleteEntityCommand
	allocQueue   []allocateEntityCommand

	asyncBatches int32 // >0 while an async batch is executing; guards forbidden ops

	log *zap.Logger
}

func newWorld(id WorldID, hash WorldHash) *World {
	w := &World{
		id:               id,
		hash:             hash,
		db:               newDatabase(),
		ids:              idpool.New(Config.idRecycleLowWaterMark),
		entityMap:        newEntityMap(),
		arena:            newArena(Config.arenaSize),
		decay:            newDecayBuffers(),
		templates:        make(map[TemplateID]Signature),
		initHooksEnabled: true,
		log:              Config.logger,
	}
	w.ids.SetOnGenerationWrap(func(index uint32) {
		w.log.Warn("entity generation wrapped", zap.Uint32("index", index), zap.Uint8("world", uint8(w.id)))
	})
	w.pipeline = newPipeline()
	return w
}

// ID returns the world's WorldID.
func (w *World) ID() WorldID { return w.id }

// Hash returns the world's WorldHash.
func (w *World) Hash() WorldHash { return w.hash }

// Database exposes the world's table collection.
func (w *World) Database() *Database { return w.db }

// Pipeline exposes the world's Frame Pipeline.
func (w *World) Pipeline() *Pipeline { return w.pipeline }

// prefilterProcessors refreshes every attached processor's cached
// matching-table list. Cheap after the first call: Pipeline.Prefilter
// only re-scans a processor whose own cache was never filled once
// cacheValid is true, matching the original's World::PrefilterProcessors/
// cacheValid pair rather than a per-frame linear rescan of every table.
func (w *World) prefilterProcessors() {
	w.pipeline.Prefilter(w.db, !w.cacheValid)
	w.cacheValid = true
}

// SetInitHooksEnabled toggles whether newly instantiated rows run
// component init hooks; used by Server.OverrideWorld and by editor
// authoring worlds that intentionally skip them.
func (w *World) SetInitHooksEnabled(enabled bool) { w.initHooksEnabled = enabled }

// InitHooksEnabled reports the current setting.
func (w *World) InitHooksEnabled() bool { return w.initHooksEnabled }

// RegisterTemplate associates a TemplateID with the signature formed by
// components, for later use by CreateEntityFromTemplate.
func (w *World) RegisterTemplate(id TemplateID, components ...Component) {
	sig := Of(components...)
	for _, r := range reservedComponentIDs {
		sig = sig.With(r)
	}
	w.templates[id] = sig
}

// assertSyncContext panics if called while an async batch is running;
// get/set/structural mutation of an arbitrary entity is forbidden there
// (spec.md §5, §7).
func (w *World) assertSyncContext(op string) {
	if w.asyncBatches > 0 {
		panic(bark.AddTrace(AsyncContextError{Operation: op}))
	}
}

// CreateEntity allocates an id and, if immediate, an instance row in the
// default (reserved-components-only) table; otherwise the row is queued.
func (w *World) CreateEntity(immediate bool) Entity {
	raw, _ := w.ids.Allocate()
	e := Entity{id: raw, World: w.id}
	w.entityMap.set(e.Index(), entityLocation{})
	if immediate {
		w.allocateNow(e, nil)
		return e
	}
	w.mu.Lock()
	w.allocQueue = append(w.allocQueue, allocateEntityCommand{entity: e})
	w.mu.Unlock()
	return e
}

// CreateEntityFromTemplate allocates an id and enqueues instantiation
// from a registered template. An unknown template id logs a warning and
// returns InvalidEntity without consuming an id (spec.md §7).
func (w *World) CreateEntityFromTemplate(tpl TemplateID, immediate bool) Entity {
	if _, ok := w.templates[tpl]; !ok {
		w.log.Warn("template not found", zap.Uint32("template", uint32(tpl)))
		return InvalidEntity
	}
	raw, _ := w.ids.Allocate()
	e := Entity{id: raw, World: w.id}
	w.entityMap.set(e.Index(), entityLocation{})
	if immediate {
		sig := w.templates[tpl]
		w.allocateNow(e, &sig)
		return e
	}
	w.mu.Lock()
	w.allocQueue = append(w.allocQueue, allocateEntityCommand{entity: e, template: tpl, fromTmpl: true})
	w.mu.Unlock()
	return e
}

// getOrCreateTable wraps Database.createTableForSignature, prepending
// the reserved transform columns and notifying the pipeline's per-
// processor table cache whenever the signature maps to a genuinely new
// table (spec.md §4.8's cache_table hook).
func (w *World) getOrCreateTable(sig Signature) TableID {
	for _, r := range reservedComponentIDs {
		sig = sig.With(r)
	}
	if existing, ok := w.db.FindTable(sig); ok {
		return existing
	}
	tid := w.db.createTableForSignature(sig)
	w.pipeline.CacheTable(tid, sig)
	return tid
}

func (w *World) allocateNow(e Entity, sig *Signature) {
	var tid TableID
	if sig != nil {
		tid = w.getOrCreateTable(*sig)
	} else {
		tid = w.getOrCreateTable(Signature{})
	}
	tbl := w.db.mustTable(tid)
	row := tbl.addRow(e)
	w.entityMap.set(e.Index(), entityLocation{table: tid, row: row})
	if w.initHooksEnabled {
		for _, col := range tbl.columns {
			if isReserved(col) {
				continue
			}
			w.runInitHook(e, col, tbl, row)
		}
	}
}

func isReserved(id ComponentID) bool {
	for _, r := range reservedComponentIDs {
		if r == id {
			return true
		}
	}
	return false
}

func (w *World) runInitHook(e Entity, col ComponentID, tbl *Table, row RowID) {
	attr := globalRegistry.attribute(col)
	if attr.initFn == nil {
		return
	}
	ptr, _ := tbl.valuePointer(col, row)
	if ptr == nil {
		attr.initFn(w, e, nil)
		return
	}
	if attr.goType == nil {
		attr.initFn(w, e, nil)
		return
	}
	val := reflect.NewAt(attr.goType, ptr).Interface()
	attr.initFn(w, e, val)
}

// DeleteEntity enqueues an instantiated entity's destruction, or frees
// its id immediately if it was never instantiated.
func (w *World) DeleteEntity(e Entity) {
	loc, ok := w.entityMap.lookup(e)
	if !ok || !loc.instantiated() {
		w.ids.Deallocate(idpool.ID{Index: e.Index(), Generation: e.Generation()})
		w.entityMap.clear(e.Index())
		return
	}
	w.mu.Lock()
	w.deleteQueue = append(w.deleteQueue, deleteEntityCommand{entity: e})
	w.mu.Unlock()
}

// IsValid reports whether e's generation matches the world's id pool.
func (w *World) IsValid(e Entity) bool {
	return w.ids.IsValid(idpool.ID{Index: e.Index(), Generation: e.Generation()})
}

// HasComponent reports whether e currently carries component c. Immediate.
func (w *World) HasComponent(e Entity, c Component) bool {
	loc, ok := w.entityMap.lookup(e)
	if !ok {
		return false
	}
	return w.db.mustTable(loc.table).HasComponent(c.ID())
}

// AddComponent stages a default-valued add-component command for e,
// running c's init hook (if any) against the staged default now.
func (w *World) AddComponent(e Entity, c Component) error {
	return w.stageAdd(e, c.ID(), nil)
}

// RemoveComponent enqueues a remove-component command for e.
func (w *World) RemoveComponent(e Entity, c Component) error {
	w.assertSyncContext("remove_component")
	if !w.entityHasInstance(e) {
		return InvalidEntityError{Entity: e}
	}
	w.mu.Lock()
	w.removeQueue = append(w.removeQueue, removeComponentCommand{entity: e, component: c.ID()})
	w.mu.Unlock()
	return nil
}

func (w *World) entityHasInstance(e Entity) bool {
	loc, ok := w.entityMap.lookup(e)
	return ok && loc.instantiated()
}

func (w *World) stageAdd(e Entity, id ComponentID, seed []byte) error {
	w.assertSyncContext("add_component")
	if !w.entityHasInstance(e) {
		return InvalidEntityError{Entity: e}
	}
	loc, _ := w.entityMap.lookup(e)
	if w.db.mustTable(loc.table).HasComponent(id) {
		return ComponentExistsError{Entity: e, Component: id}
	}
	size := globalRegistry.SizeOf(id)
	var buf []byte
	if size > 0 {
		buf = w.arena.alloc(size)
		if seed != nil {
			copy(buf, seed)
		} else {
			copy(buf, globalRegistry.DefaultOf(id))
		}
	}
	var ptr unsafe.Pointer
	if len(buf) > 0 {
		ptr = unsafe.Pointer(&buf[0])
	}
	attr := globalRegistry.attribute(id)
	if attr.initFn != nil {
		if ptr != nil && attr.goType != nil {
			attr.initFn(w, e, reflect.NewAt(attr.goType, ptr).Interface())
		} else {
			attr.initFn(w, e, nil)
		}
	}
	w.mu.Lock()
	w.addQueue = append(w.addQueue, addComponentCommand{entity: e, component: id, bytes: buf})
	w.mu.Unlock()
	return nil
}

// MarkAsModified sets e's bit in its partition's modified-rows bitset.
func (w *World) MarkAsModified(e Entity) {
	loc, ok := w.entityMap.lookup(e)
	if !ok || !loc.instantiated() {
		return
	}
	w.db.mustTable(loc.table).markModified(loc.row)
}

// Query runs filter against the world's Database and materializes the
// matching Dataset.
func (w *World) Query(filter *Filter) *Dataset {
	return materializeDataset(w.db, filter)
}

// GetDecayBuffer exposes id's current raw decay bytes to external
// collaborators; see DecayValues for a typed view.
func (w *World) GetDecayBuffer(id ComponentID) []byte {
	return w.decay.Get(id)
}

// Get reads entity e's current value for component c. Forbidden from an
// async processor context.
func Get[T any](w *World, e Entity, c AccessibleComponent[T]) (T, error) {
	w.assertSyncContext("get")
	var zero T
	loc, ok := w.entityMap.lookup(e)
	if !ok || !loc.instantiated() {
		return zero, InvalidEntityError{Entity: e}
	}
	tbl := w.db.mustTable(loc.table)
	ptr, err := tbl.valuePointer(c.ID(), loc.row)
	if err != nil {
		return zero, err
	}
	if ptr == nil {
		return zero, nil
	}
	return *(*T)(ptr), nil
}

// Set overwrites entity e's cell for component c. Forbidden from an
// async processor context.
func Set[T any](w *World, e Entity, c AccessibleComponent[T], value T) error {
	w.assertSyncContext("set")
	loc, ok := w.entityMap.lookup(e)
	if !ok || !loc.instantiated() {
		return InvalidEntityError{Entity: e}
	}
	tbl := w.db.mustTable(loc.table)
	ptr, err := tbl.valuePointer(c.ID(), loc.row)
	if err != nil {
		return err
	}
	if ptr == nil {
		return nil
	}
	*(*T)(ptr) = value
	return nil
}

// AddComponent stages component c for entity e, returning a pointer into
// arena memory valid until the next dispatch boundary.
func AddComponent[T any](w *World, e Entity, c AccessibleComponent[T]) (*T, error) {
	var zero T
	return AddComponentValue(w, e, c, zero)
}

// AddComponentValue is AddComponent seeded with an initial value.
func AddComponentValue[T any](w *World, e Entity, c AccessibleComponent[T], value T) (*T, error) {
	size := c.Size()
	var seed []byte
	if size > 0 {
		seed = make([]byte, size)
		copy(seed, unsafe.Slice((*byte)(unsafe.Pointer(&value)), size))
	}
	if err := w.stageAdd(e, c.ID(), seed); err != nil {
		return nil, err
	}
	cmd := w.addQueue[len(w.addQueue)-1]
	if len(cmd.bytes) == 0 {
		return new(T), nil
	}
	return (*T)(unsafe.Pointer(&cmd.bytes[0])), nil
}

// ManageEntities runs the full deferred-dispatch sequence described in
// spec.md §4.7: removes, then adds, then deletes, then allocates, then
// defragments every table, then resets the component-stage arena.
// Decay buffers are cleared by the Server, not here.
func (w *World) ManageEntities() {
	w.dispatchRemoves()
	w.dispatchAdds()
	w.dispatchDeletes()
	w.dispatchAllocates()
	w.DefragmentAll()
	w.arena.Reset()
}

// dispatchAdds runs only the add-component queue, used between
// OnBeginFrame/OnFrame and the next event so a processor's staged
// component becomes visible to the following event.
func (w *World) dispatchAdds() {
	if len(w.addQueue) == 0 {
		return
	}
	groups := groupByEntity(len(w.addQueue), func(i int) Entity { return w.addQueue[i].entity })
	for _, idxs := range groups {
		e := w.addQueue[idxs[0]].entity
		loc, ok := w.entityMap.lookup(e)
		if !ok || !loc.instantiated() {
			continue
		}
		srcTable := w.db.mustTable(loc.table)
		targetSig := srcTable.signature
		for _, i := range idxs {
			targetSig = targetSig.With(w.addQueue[i].component)
		}
		dstID := w.getOrCreateTable(targetSig)
		dst := w.db.mustTable(dstID)
		if dstID == loc.table {
			// components already present (race with a prior op); nothing to migrate
			continue
		}
		newRow := w.migrateRow(e, srcTable, loc.row, dstID, false)
		for _, i := range idxs {
			dst.setValueBytes(w.addQueue[i].component, newRow, w.addQueue[i].bytes)
		}
	}
	w.addQueue = w.addQueue[:0]
}

func (w *World) dispatchRemoves() {
	if len(w.removeQueue) == 0 {
		return
	}
	groups := groupByEntity(len(w.removeQueue), func(i int) Entity { return w.removeQueue[i].entity })
	for _, idxs := range groups {
		e := w.removeQueue[idxs[0]].entity
		loc, ok := w.entityMap.lookup(e)
		if !ok || !loc.instantiated() {
			continue
		}
		srcTable := w.db.mustTable(loc.table)
		targetSig := srcTable.signature
		for _, i := range idxs {
			targetSig = targetSig.Without(w.removeQueue[i].component)
		}
		dstID := w.getOrCreateTable(targetSig)
		if dstID == loc.table {
			continue
		}
		w.migrateRow(e, srcTable, loc.row, dstID, false)
	}
	w.removeQueue = w.removeQueue[:0]
}

func (w *World) dispatchDeletes() {
	for _, cmd := range w.deleteQueue {
		loc, ok := w.entityMap.lookup(cmd.entity)
		if !ok || !loc.instantiated() {
			continue
		}
		tbl := w.db.mustTable(loc.table)
		for _, col := range tbl.columns {
			if globalRegistry.IsDecaying(col) {
				w.decay.append(col, tbl.valueBytesCopy(col, loc.row))
			}
		}
		tbl.removeRow(loc.row)
		w.entityMap.clear(cmd.entity.Index())
		w.ids.Deallocate(idpool.ID{Index: cmd.entity.Index(), Generation: cmd.entity.Generation()})
	}
	w.deleteQueue = w.deleteQueue[:0]
}

func (w *World) dispatchAllocates() {
	for _, cmd := range w.allocQueue {
		var tid TableID
		if cmd.fromTmpl {
			sig, ok := w.templates[cmd.template]
			if !ok {
				continue
			}
			tid = w.getOrCreateTable(sig)
		} else {
			tid = w.getOrCreateTable(Signature{})
		}
		tbl := w.db.mustTable(tid)
		row := tbl.addRow(cmd.entity)
		w.entityMap.set(cmd.entity.Index(), entityLocation{table: tid, row: row})
		if w.initHooksEnabled {
			for _, col := range tbl.columns {
				if isReserved(col) {
					continue
				}
				w.runInitHook(cmd.entity, col, tbl, row)
			}
		}
	}
	w.allocQueue = w.allocQueue[:0]
}

// migrateRow is the shared implementation of spec.md §4.4's
// migrate_instance: copy every column common to src and dst, drop (and
// decay, if flagged) columns only in src, default-init columns only in
// dst, then free the source row.
func (w *World) migrateRow(e Entity, src *Table, srcRow RowID, dstID TableID, runInits bool) RowID {
	dst := w.db.mustTable(dstID)
	newRow := dst.addRow(e)
	for _, col := range src.columns {
		if col == entityComponentID {
			continue
		}
		if dst.HasComponent(col) {
			dst.setValueBytes(col, newRow, src.valueBytesCopy(col, srcRow))
			continue
		}
		if globalRegistry.IsDecaying(col) {
			w.decay.append(col, src.valueBytesCopy(col, srcRow))
		}
	}
	if runInits {
		for _, col := range dst.columns {
			if !src.HasComponent(col) && !isReserved(col) {
				w.runInitHook(e, col, dst, newRow)
			}
		}
	}
	src.removeRow(srcRow)
	w.entityMap.set(e.Index(), entityLocation{table: dstID, row: newRow})
	return newRow
}

// DefragmentAll compacts every table in the world's database, updating
// the entity map ahead of each row swap.
func (w *World) DefragmentAll() {
	w.db.ForEachTable(func(t *Table) {
		t.Defragment(func(from, to RowID) {
			ptr, _ := t.valuePointer(entityComponentID, from)
			if ptr == nil {
				return
			}
			moved := *(*Entity)(ptr)
			w.entityMap.set(moved.Index(), entityLocation{table: t.id, row: to})
		})
	})
}

func groupByEntity(n int, entityAt func(int) Entity) [][]int {
	byEntity := make(map[Entity][]int)
	var order []Entity
	for i := 0; i < n; i++ {
		e := entityAt(i)
		if _, ok := byEntity[e]; !ok {
			order = append(order, e)
		}
		byEntity[e] = append(byEntity[e], i)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Index() < order[j].Index() })
	groups := make([][]int, len(order))
	for i, e := range order {
		groups[i] = byEntity[e]
	}
	return groups
}

// snapshotInto deep-copies w's entity map, id pool, and database into
// dst, the Server.OverrideWorld primitive (spec.md §4.9).
func (w *World) snapshotInto(dst *World) {
	dst.entityMap = w.entityMap.clone()
	dst.ids = w.ids.Clone()
	dst.db = newDatabase()
	w.db.Copy(dst.db)
	dst.cacheValid = false
}
