package idpool_test

import (
	"testing"

	"github.com/TheBitDrifter/ecdb/idpool"
)

func TestAllocateFreshBelowLowWaterMark(t *testing.T) {
	p := idpool.New(4)
	id, reused := p.Allocate()
	if reused {
		t.Fatalf("expected a fresh id, got reused")
	}
	if id.Index != 0 || id.Generation != 0 {
		t.Fatalf("unexpected first id: %+v", id)
	}
}

func TestDeallocateThenRecycleAfterLowWaterMark(t *testing.T) {
	p := idpool.New(2)
	a, _ := p.Allocate()
	b, _ := p.Allocate()
	_, _ = p.Allocate()

	p.Deallocate(a)
	p.Deallocate(b)

	id, reused := p.Allocate()
	if !reused {
		t.Fatalf("expected a recycled id once the low-water mark is reached")
	}
	if id.Index != a.Index {
		t.Fatalf("expected oldest freed index %d back, got %d", a.Index, id.Index)
	}
	if id.Generation != 1 {
		t.Fatalf("expected generation bumped to 1, got %d", id.Generation)
	}
}

func TestDeallocateBelowLowWaterMarkDoesNotRecycleYet(t *testing.T) {
	p := idpool.New(1024)
	a, _ := p.Allocate()
	p.Deallocate(a)

	id, reused := p.Allocate()
	if reused {
		t.Fatalf("should not recycle before the low-water mark is reached")
	}
	if id.Index == a.Index {
		t.Fatalf("fresh allocation should not reuse a pending index")
	}
}

func TestIsValidRejectsStaleGeneration(t *testing.T) {
	p := idpool.New(0)
	a, _ := p.Allocate()
	if !p.IsValid(a) {
		t.Fatalf("freshly allocated id should be valid")
	}
	p.Deallocate(a)
	if p.IsValid(a) {
		t.Fatalf("id should be invalid after deallocate bumps its generation")
	}
}

func TestDeallocateOfStaleIDIsNoOp(t *testing.T) {
	p := idpool.New(0)
	a, _ := p.Allocate()
	p.Deallocate(a)
	before := p.Pending()
	p.Deallocate(a) // stale, should be ignored
	if p.Pending() != before {
		t.Fatalf("deallocating an already-stale id must be a no-op")
	}
}

func TestGenerationWrapsAndWarns(t *testing.T) {
	p := idpool.New(0)
	var wrapped []uint32
	p.SetOnGenerationWrap(func(index uint32) { wrapped = append(wrapped, index) })

	id, _ := p.Allocate()
	for i := 0; i < 1024; i++ {
		p.Deallocate(id)
		id, _ = p.Allocate()
	}
	if len(wrapped) == 0 {
		t.Fatalf("expected at least one generation-wrap callback after 1024 cycles")
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	id := idpool.ID{Index: 12345, Generation: 7}
	got := idpool.Unpack(id.Pack())
	if got != id {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, id)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := idpool.New(8)
	a, _ := p.Allocate()
	clone := p.Clone()
	p.Deallocate(a)
	if !clone.IsValid(a) {
		t.Fatalf("mutating the original pool must not affect the clone")
	}
}
