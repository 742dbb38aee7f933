package ecdb

import (
	"unsafe"

	"github.com/bits-and-blooms/bitset"
)

// PartitionID is a partition's position within its table's partition list.
type PartitionID uint16

// MoveCallback is invoked by defragment before each row swap so the
// caller (the World) can repoint its entity map ahead of the move.
type MoveCallback func(from, to uint16)

// partition is a fixed-capacity, column-oriented slab of rows. One
// contiguous byte buffer backs each non-zero-size column; a validRows
// bitset marks live rows and a modifiedRows bitset is exposed to
// observers via World.MarkAsModified.
type partition struct {
	id           PartitionID
	capacity     int
	columnSizes  []int
	columns      [][]byte // nil entry for zero-size (tag) columns
	validRows    *bitset.BitSet
	modifiedRows *bitset.BitSet
	freeList     []uint16
	watermark    uint16 // one past the highest index ever handed out
}

func newPartition(id PartitionID, capacity int, columnSizes []int) *partition {
	p := &partition{
		id:           id,
		capacity:     capacity,
		columnSizes:  columnSizes,
		columns:      make([][]byte, len(columnSizes)),
		validRows:    bitset.New(uint(capacity)),
		modifiedRows: bitset.New(uint(capacity)),
	}
	for i, size := range columnSizes {
		if size == 0 {
			continue
		}
		p.columns[i] = make([]byte, capacity*size)
	}
	return p
}

// full reports whether the partition has no room for another row.
func (p *partition) full() bool {
	return len(p.freeList) == 0 && int(p.watermark) >= p.capacity
}

// numRows returns the partition's total row count: valid rows plus rows
// pending defragmentation, satisfying invariant 2 in spec.md §4.4.
func (p *partition) numRows() int {
	return int(p.watermark)
}

// addColumn extends the partition with a new column (used when a table
// gains a component and its existing partitions must grow to match).
func (p *partition) addColumn(size int) {
	p.columnSizes = append(p.columnSizes, size)
	if size == 0 {
		p.columns = append(p.columns, nil)
		return
	}
	p.columns = append(p.columns, make([]byte, p.capacity*size))
}

// addRow reserves a row, seeding every non-tag column from defaults
// (indexed by column, matching p.columns). Returns false if the
// partition is at capacity; the caller must allocate a new partition.
func (p *partition) addRow(defaults [][]byte) (uint16, bool) {
	var idx uint16
	if n := len(p.freeList); n > 0 {
		idx = p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
	} else if int(p.watermark) < p.capacity {
		idx = p.watermark
		p.watermark++
	} else {
		return 0, false
	}
	p.validRows.Set(uint(idx))
	p.modifiedRows.Clear(uint(idx))
	for ci, buf := range p.columns {
		if buf == nil {
			continue
		}
		size := p.columnSizes[ci]
		var src []byte
		if ci < len(defaults) {
			src = defaults[ci]
		}
		dst := buf[int(idx)*size : int(idx)*size+size]
		if src != nil {
			copy(dst, src)
		} else {
			for i := range dst {
				dst[i] = 0
			}
		}
	}
	return idx, true
}

// removeRow marks idx free; bytes remain in place until defragmentation.
func (p *partition) removeRow(idx uint16) {
	p.validRows.Clear(uint(idx))
	p.modifiedRows.Clear(uint(idx))
	p.freeList = append(p.freeList, idx)
}

func (p *partition) isValid(idx uint16) bool {
	return p.validRows.Test(uint(idx))
}

func (p *partition) markModified(idx uint16) {
	p.modifiedRows.Set(uint(idx))
}

// columnBuffer returns the raw backing buffer for a column, or nil for a
// zero-size (tag) column.
func (p *partition) columnBuffer(column int) []byte {
	if column < 0 || column >= len(p.columns) {
		return nil
	}
	return p.columns[column]
}

// valuePointer returns a pointer to the row's cell within column, or nil
// for a tag column.
func (p *partition) valuePointer(column int, idx uint16) unsafe.Pointer {
	buf := p.columnBuffer(column)
	if buf == nil {
		return nil
	}
	size := p.columnSizes[column]
	if size == 0 {
		return nil
	}
	return unsafe.Pointer(&buf[int(idx)*size])
}

// defragment swaps the last valid row into the earliest hole, repeatedly,
// until validRows is a contiguous prefix. onMove fires before each swap.
// Returns the number of rows moved.
func (p *partition) defragment(onMove MoveCallback) int {
	moves := 0
	for {
		hole, ok := p.firstHoleBelowWatermark()
		if !ok {
			break
		}
		last, ok := p.lastValidRow()
		if !ok || last <= hole {
			break
		}
		if onMove != nil {
			onMove(last, hole)
		}
		for ci, buf := range p.columns {
			if buf == nil {
				continue
			}
			size := p.columnSizes[ci]
			src := buf[int(last)*size : int(last)*size+size]
			dst := buf[int(hole)*size : int(hole)*size+size]
			copy(dst, src)
		}
		p.validRows.Set(uint(hole))
		p.validRows.Clear(uint(last))
		if p.modifiedRows.Test(uint(last)) {
			p.modifiedRows.Set(uint(hole))
		} else {
			p.modifiedRows.Clear(uint(hole))
		}
		p.modifiedRows.Clear(uint(last))
		p.removeFromFreeList(hole)
		p.freeList = append(p.freeList, last)
		moves++
	}
	p.watermark = uint16(p.validRows.Count())
	p.freeList = p.freeList[:0]
	return moves
}

func (p *partition) firstHoleBelowWatermark() (uint16, bool) {
	for i := uint16(0); i < p.watermark; i++ {
		if !p.validRows.Test(uint(i)) {
			return i, true
		}
	}
	return 0, false
}

func (p *partition) lastValidRow() (uint16, bool) {
	for i := p.watermark; i > 0; i-- {
		idx := i - 1
		if p.validRows.Test(uint(idx)) {
			return idx, true
		}
	}
	return 0, false
}

// clone returns a deep copy of p, including its column byte buffers.
func (p *partition) clone() *partition {
	c := &partition{
		id:           p.id,
		capacity:     p.capacity,
		columnSizes:  append([]int(nil), p.columnSizes...),
		columns:      make([][]byte, len(p.columns)),
		validRows:    p.validRows.Clone(),
		modifiedRows: p.modifiedRows.Clone(),
		freeList:     append([]uint16(nil), p.freeList...),
		watermark:    p.watermark,
	}
	for i, buf := range p.columns {
		if buf == nil {
			continue
		}
		c.columns[i] = append([]byte(nil), buf...)
	}
	return c
}

func (p *partition) removeFromFreeList(idx uint16) {
	for i, v := range p.freeList {
		if v == idx {
			p.freeList = append(p.freeList[:i], p.freeList[i+1:]...)
			return
		}
	}
}
