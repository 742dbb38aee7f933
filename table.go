package ecdb

import (
	"unsafe"
)

// TableID identifies a table (archetype instance) within a Database.
// Stable for the table's lifetime; tables are never destroyed except by
// a full Database reset.
type TableID uint32

// TableMoveCallback is invoked by Table.Defragment before each row swap,
// in terms of the table-relative RowIDs affected, so the World can
// repoint its entity map.
type TableMoveCallback func(from, to RowID)

// Table is one archetype instance: a signature, an ordered column list,
// and the partitions holding its rows. Column 0..3 are reserved and
// fixed across every entity-bearing table: Entity, Position,
// Orientation, Scale (spec.md §3).
type Table struct {
	id          TableID
	signature   Signature
	columns     []ComponentID
	columnSizes []int
	partitions  []*partition
	capacity    int // row capacity of each new partition
	total       int // row count as of last add/Defragment; removeRow leaves it unchanged, so holes stay counted until Defragment runs
}

func newTable(id TableID, sig Signature, columns []ComponentID, partitionCapacity int) *Table {
	sizes := make([]int, len(columns))
	for i, c := range columns {
		sizes[i] = globalRegistry.SizeOf(c)
	}
	return &Table{
		id:          id,
		signature:   sig,
		columns:     columns,
		columnSizes: sizes,
		capacity:    partitionCapacity,
	}
}

// ID returns the table's stable identifier.
func (t *Table) ID() TableID { return t.id }

// Signature returns the archetype signature this table stores.
func (t *Table) Signature() Signature { return t.signature }

// Columns returns the ordered component-id-per-column list.
func (t *Table) Columns() []ComponentID { return append([]ComponentID(nil), t.columns...) }

// NumRows returns the total row count across every partition.
func (t *Table) NumRows() int { return t.total }

// Partitions exposes the table's partitions in order, for Dataset
// materialization and the level codec.
func (t *Table) Partitions() []*partition { return t.partitions }

func (t *Table) columnIndex(id ComponentID) (int, bool) {
	for i, c := range t.columns {
		if c == id {
			return i, true
		}
	}
	return -1, false
}

// HasComponent reports whether id is one of the table's columns.
func (t *Table) HasComponent(id ComponentID) bool {
	_, ok := t.columnIndex(id)
	return ok
}

// addRow reserves a fresh row seeded with each column's registry default,
// except column 0 which is set to e, and returns its RowID.
func (t *Table) addRow(e Entity) RowID {
	defaults := make([][]byte, len(t.columns))
	for i, c := range t.columns {
		defaults[i] = globalRegistry.DefaultOf(c)
	}
	if len(t.partitions) == 0 || t.partitions[len(t.partitions)-1].full() {
		t.partitions = append(t.partitions, newPartition(PartitionID(len(t.partitions)), t.capacity, t.columnSizes))
	}
	p := t.partitions[len(t.partitions)-1]
	idx, ok := p.addRow(defaults)
	if !ok {
		p = newPartition(PartitionID(len(t.partitions)), t.capacity, t.columnSizes)
		t.partitions = append(t.partitions, p)
		idx, ok = p.addRow(defaults)
		if !ok {
			panic(PartitionFullError{Capacity: t.capacity})
		}
	}
	t.total++
	row := RowID{Partition: uint16(p.id), Index: idx}
	if entityCol, ok := t.columnIndex(entityComponentID); ok {
		ptr := p.valuePointer(entityCol, idx)
		if ptr != nil {
			*(*Entity)(ptr) = e
		}
	}
	return row
}

// removeRow frees row; bytes stay in place until Defragment runs. Per
// the original's row-count semantics (GetNumRows stays unchanged across
// removal until a Defragment compacts the table), t.total is left alone
// here and only recomputed once Defragment runs.
func (t *Table) removeRow(row RowID) {
	p := t.partitionAt(row.Partition)
	p.removeRow(row.Index)
}

func (t *Table) partitionAt(id uint16) *partition {
	return t.partitions[id]
}

// valuePointer returns a pointer to id's cell at row, or nil if id is a
// tag column or not present on the table.
func (t *Table) valuePointer(id ComponentID, row RowID) (unsafe.Pointer, error) {
	ci, ok := t.columnIndex(id)
	if !ok {
		return nil, ComponentMissingError{Component: id}
	}
	p := t.partitionAt(row.Partition)
	return p.valuePointer(ci, row.Index), nil
}

// valueBytesCopy copies id's raw bytes out of row, returning nil for tag
// columns. Used to drain a value into a decay buffer before removal.
func (t *Table) valueBytesCopy(id ComponentID, row RowID) []byte {
	ci, ok := t.columnIndex(id)
	if !ok {
		return nil
	}
	size := t.columnSizes[ci]
	if size == 0 {
		return nil
	}
	ptr, _ := t.valuePointer(id, row)
	if ptr == nil {
		return nil
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(ptr), size))
	return out
}

// setValueBytes overwrites id's cell at row with raw bytes, used during
// migration and staged-component dispatch.
func (t *Table) setValueBytes(id ComponentID, row RowID, bytes []byte) {
	ptr, err := t.valuePointer(id, row)
	if err != nil || ptr == nil || bytes == nil {
		return
	}
	size := t.columnSizes[mustIndex(t, id)]
	copy(unsafe.Slice((*byte)(ptr), size), bytes)
}

func mustIndex(t *Table, id ComponentID) int {
	ci, _ := t.columnIndex(id)
	return ci
}

func (t *Table) markModified(row RowID) {
	t.partitionAt(row.Partition).markModified(row.Index)
}

// NumPartitions returns the number of partitions backing the table, for
// callers (the level codec) that need to walk raw storage directly.
func (t *Table) NumPartitions() int { return len(t.partitions) }

// PartitionRowCount returns partition i's row count, holes included.
func (t *Table) PartitionRowCount(i int) int { return t.partitions[i].numRows() }

// IsRowValid reports whether row within partition i is a live row.
func (t *Table) IsRowValid(i, row int) bool { return t.partitions[i].isValid(uint16(row)) }

// ColumnSize returns the byte width of column index ci (0 for tags).
func (t *Table) ColumnSize(ci int) int { return t.columnSizes[ci] }

// ColumnBytes returns partition i's raw backing buffer for column ci
// (nil for a tag column), for bulk copy by the level codec's export path.
func (t *Table) ColumnBytes(i, ci int) []byte { return t.partitions[i].columnBuffer(ci) }

// Defragment compacts every partition, invoking onMove before each swap
// with table-relative RowIDs, recomputes t.total from the post-
// compaction partition watermarks, and returns the total number of rows
// moved.
func (t *Table) Defragment(onMove TableMoveCallback) int {
	moved := 0
	for _, p := range t.partitions {
		pid := p.id
		moved += p.defragment(func(from, to uint16) {
			if onMove != nil {
				onMove(RowID{Partition: uint16(pid), Index: from}, RowID{Partition: uint16(pid), Index: to})
			}
		})
	}
	total := 0
	for _, p := range t.partitions {
		total += p.numRows()
	}
	t.total = total
	return moved
}
