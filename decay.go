package ecdb

import "unsafe"

// decayBuffers holds, per component id, the raw bytes of every value
// removed from a row since the last Clear. The World appends; the
// Server clears them once per frame (spec.md §4.7, §4.9).
type decayBuffers struct {
	data map[ComponentID][]byte
}

func newDecayBuffers() *decayBuffers {
	return &decayBuffers{data: make(map[ComponentID][]byte)}
}

func (d *decayBuffers) append(id ComponentID, value []byte) {
	if len(value) == 0 {
		return
	}
	d.data[id] = append(d.data[id], value...)
}

// Get returns the raw, concatenated bytes currently buffered for id.
func (d *decayBuffers) Get(id ComponentID) []byte {
	return d.data[id]
}

// Clear empties every buffer. Called only by Server, per spec.md §4.7's
// explicit "decay buffers are cleared by the Server, not here."
func (d *decayBuffers) Clear() {
	for id := range d.data {
		delete(d.data, id)
	}
}

// DecayValues reinterprets the raw decay bytes buffered for c as a typed
// slice, in the order values were removed.
func DecayValues[T any](w *World, c AccessibleComponent[T]) []T {
	raw := w.decay.Get(c.ID())
	size := c.Size()
	if size == 0 || len(raw) == 0 {
		return nil
	}
	n := len(raw) / size
	return unsafe.Slice((*T)(unsafe.Pointer(&raw[0])), n)
}
