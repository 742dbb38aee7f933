package ecdb

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/TheBitDrifter/mask"
)

// Signature is an ordered bitset identifying an archetype: which
// component kinds a table (or a filter's inclusive/exclusive side)
// carries. Two signatures built from the same components in any order
// compare equal. The underlying mask.Mask gives O(1)-ish set algebra for
// the hot filter-matching path (ContainsAll/ContainsAny/ContainsNone);
// an accompanying sorted id list supports the operations mask.Mask does
// not expose directly (membership test, enumeration, stable hashing).
type Signature struct {
	bits mask.Mask
	ids  []ComponentID // sorted, deduped
}

// Of builds a Signature from a set of components. Order does not affect
// the result (property 9 in spec.md §8).
func Of(components ...Component) Signature {
	var s Signature
	for _, c := range components {
		s = s.With(c.ID())
	}
	return s
}

// With returns a copy of s with id set.
func (s Signature) With(id ComponentID) Signature {
	if s.IsSet(id) {
		return s
	}
	s.bits.Mark(uint32(id))
	ids := make([]ComponentID, len(s.ids), len(s.ids)+1)
	copy(ids, s.ids)
	ids = append(ids, id)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	s.ids = ids
	return s
}

// Without returns a copy of s with id cleared.
func (s Signature) Without(id ComponentID) Signature {
	if !s.IsSet(id) {
		return s
	}
	s.bits.Unmark(uint32(id))
	ids := make([]ComponentID, 0, len(s.ids))
	for _, existing := range s.ids {
		if existing != id {
			ids = append(ids, existing)
		}
	}
	s.ids = ids
	return s
}

// IsSet reports whether id is present in the signature.
func (s Signature) IsSet(id ComponentID) bool {
	var probe mask.Mask
	probe.Mark(uint32(id))
	return s.bits.ContainsAll(probe)
}

// Eq reports structural equality. mask.Mask is a comparable value type,
// so two signatures built the same way compare equal directly.
func (s Signature) Eq(other Signature) bool {
	return s.bits == other.bits
}

// IsSuperset reports whether every bit set in of is also set in s.
func (s Signature) IsSuperset(of Signature) bool {
	return s.bits.ContainsAll(of.bits)
}

// HasAny reports whether s and other share any set bit.
func (s Signature) HasAny(other Signature) bool {
	return s.bits.ContainsAny(other.bits)
}

// HasNone reports whether s and other share no set bit.
func (s Signature) HasNone(other Signature) bool {
	return s.bits.ContainsNone(other.bits)
}

// CheckBits is a synonym for IsSuperset, matching the filter matcher's
// vocabulary in spec.md §4.3.
func (s Signature) CheckBits(required Signature) bool {
	return s.IsSuperset(required)
}

// ComponentIDs returns the sorted component ids making up the signature.
func (s Signature) ComponentIDs() []ComponentID {
	return append([]ComponentID(nil), s.ids...)
}

// Len returns the number of components in the signature.
func (s Signature) Len() int { return len(s.ids) }

// Hash returns a stable 64-bit hash of the signature, used by Database to
// key its signature→table lookup.
func (s Signature) Hash() uint64 {
	if len(s.ids) == 0 {
		return 0
	}
	buf := make([]byte, 4*len(s.ids))
	for i, id := range s.ids {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(id))
	}
	return xxhash.Sum64(buf)
}

// String renders the signature as its component id list, for debugging.
func (s Signature) String() string {
	return fmt.Sprintf("%v", s.ids)
}
