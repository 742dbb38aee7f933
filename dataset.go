package ecdb

import (
	"unsafe"

	"github.com/bits-and-blooms/bitset"
)

// View is one partition's worth of a Dataset: raw column pointers for
// the filter's projected components (nil for tag/zero-size components),
// the row count, and a copy of the partition's valid-rows bitset so
// consumers can skip holes that have not yet been defragmented away.
type View struct {
	Table     TableID
	Partition PartitionID
	Count     int
	valid     *bitset.BitSet
	buffers   map[ComponentID]unsafe.Pointer
	entityBuf unsafe.Pointer
}

// Entity returns the entity handle stored in column 0 for row.
func (v *View) Entity(row int) Entity {
	if v.entityBuf == nil {
		return InvalidEntity
	}
	return *(*Entity)(unsafe.Add(v.entityBuf, row*int(entitySize)))
}

// Column returns the raw pointer to id's column buffer in this view, or
// nil if id was not part of the originating filter's projection or is a
// tag component.
func (v *View) Column(id ComponentID) unsafe.Pointer {
	return v.buffers[id]
}

// IsValidRow reports whether row is a live (non-hole) row in this view.
func (v *View) IsValidRow(row int) bool {
	return v.valid.Test(uint(row))
}

// Dataset is a materialized query result: one View per active partition
// matched by a Filter.
type Dataset struct {
	Filter *Filter
	Views  []*View
}

// materializeDataset runs filter against db, emitting one View per
// non-empty partition of every matched table.
func materializeDataset(db *Database, filter *Filter) *Dataset {
	tableIDs := db.Query(filter.inclusive, filter.exclusive)
	return materializeDatasetFromTables(db, filter, tableIDs)
}

// materializeDatasetFromTables builds a Dataset from a caller-supplied
// table-id list instead of running a fresh Database.Query scan — used by
// Processor.materialize once its Prefilter/CacheTable cache is populated,
// so a processor's per-frame cost stops scaling with the database's
// total table count (spec.md §4.8).
func materializeDatasetFromTables(db *Database, filter *Filter, tableIDs []TableID) *Dataset {
	ds := &Dataset{Filter: filter}
	for _, tid := range tableIDs {
		t := db.mustTable(tid)
		for _, p := range t.partitions {
			if p.numRows() == 0 {
				continue
			}
			view := &View{
				Table:     tid,
				Partition: p.id,
				Count:     p.numRows(),
				valid:     p.validRows.Clone(),
				buffers:   make(map[ComponentID]unsafe.Pointer, len(filter.projection)),
			}
			for _, proj := range filter.projection {
				ci, ok := t.columnIndex(proj.Component.ID())
				if !ok {
					continue
				}
				buf := p.columnBuffer(ci)
				if buf == nil {
					continue
				}
				view.buffers[proj.Component.ID()] = unsafe.Pointer(&buf[0])
			}
			if entityCol, ok := t.columnIndex(entityComponentID); ok {
				if buf := p.columnBuffer(entityCol); buf != nil {
					view.entityBuf = unsafe.Pointer(&buf[0])
				}
			}
			ds.Views = append(ds.Views, view)
		}
	}
	return ds
}
