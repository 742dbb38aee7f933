package ecdb

import (
	"reflect"
	"unsafe"
)

// Component identifies a registered attribute kind and lets callers read
// or write it through a Dataset View or directly against an Entity.
type Component interface {
	ID() ComponentID
	Name() string
	Size() int
}

// AccessibleComponent binds a registered component kind to its Go type T,
// giving typed access into column storage. It is the handle callers hold
// onto (usually as a package-level var) and pass to ReadOf / WriteOf /
// World.AddComponent, or whose ID() they pass to View.Column.
type AccessibleComponent[T any] struct {
	id   ComponentID
	name string
}

// ID implements Component.
func (c AccessibleComponent[T]) ID() ComponentID { return c.id }

// Name implements Component.
func (c AccessibleComponent[T]) Name() string { return c.name }

// Size implements Component.
func (c AccessibleComponent[T]) Size() int { return int(unsafe.Sizeof(*new(T))) }

// Get reads the value at row within a raw column buffer obtained from a
// View. Get does not check buf: it must be non-nil, and it is nil for
// zero-size tag components and for components the View does not project.
func (c AccessibleComponent[T]) Get(buf unsafe.Pointer, row int) *T {
	base := (*T)(buf)
	return (*T)(unsafe.Add(unsafe.Pointer(base), row*int(unsafe.Sizeof(*new(T)))))
}

// GetFromCursor reads the component's value for the cursor's current row.
func (c AccessibleComponent[T]) GetFromCursor(cur *Cursor) *T {
	buf := cur.View().Column(c.id)
	return c.Get(buf, cur.RowInView())
}

// GetFromEntity reads the component's current value directly from an
// entity's backing row, bypassing any Dataset. Disallowed inside an async
// processor (see World.assertSyncContext).
func (c AccessibleComponent[T]) GetFromEntity(w *World, e Entity) (T, error) {
	w.assertSyncContext("get")
	var zero T
	loc, ok := w.entityMap.lookup(e)
	if !ok {
		return zero, InvalidEntityError{Entity: e}
	}
	tbl := w.db.mustTable(loc.table)
	ptr, err := tbl.valuePointer(c.id, loc.row)
	if err != nil {
		return zero, err
	}
	if ptr == nil {
		return zero, nil
	}
	return *(*T)(ptr), nil
}

// typeOf returns the reflect.Type backing T, used when registering a
// component so the registry can carry it for the level codec.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf(*new(T))
}

// defaultBytesOf copies *seed (or T's zero value when seed is nil) into a
// raw byte slice of T's size; it returns nil for a zero-size T.
func defaultBytesOf[T any](seed *T) []byte {
	size := int(unsafe.Sizeof(*new(T)))
	if size == 0 {
		return nil
	}
	var v T
	if seed != nil {
		v = *seed
	}
	buf := make([]byte, size)
	copy(buf, unsafe.Slice((*byte)(unsafe.Pointer(&v)), size))
	return buf
}
