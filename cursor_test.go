package ecdb

import "testing"

type curPosition struct{ X float64 }

func TestCursorIteratesValidRowsAcrossViews(t *testing.T) {
	position := FactoryNewComponent[curPosition]("cursor-test-position")
	w := newWorld(1, 1)

	var entities []Entity
	for i := 0; i < 5; i++ {
		e := w.CreateEntity(true)
		if _, err := AddComponentValue(w, e, position, curPosition{X: float64(i)}); err != nil {
			t.Fatalf("AddComponentValue: %v", err)
		}
		entities = append(entities, e)
	}
	w.ManageEntities()

	// Delete one entity to leave a hole the cursor must skip.
	w.DeleteEntity(entities[2])
	w.dispatchDeletes()

	ds := w.Query(NewFilterBuilder().Including(ReadOf(position)).Build())
	cur := NewCursor(ds)

	var seen int
	for cur.Next() {
		seen++
		if cur.Entity() == entities[2] {
			t.Fatal("cursor should skip the deleted entity's hole")
		}
	}
	if seen != 4 {
		t.Fatalf("expected 4 live rows, saw %d", seen)
	}
	if cur.TotalMatched() != 4 {
		t.Fatalf("TotalMatched should still report the live row count after exhaustion, got %d", cur.TotalMatched())
	}
}

func TestCursorResetRevisitsFromStart(t *testing.T) {
	position := FactoryNewComponent[curPosition]("cursor-test-reset-position")
	w := newWorld(2, 2)
	e := w.CreateEntity(true)
	if _, err := AddComponentValue(w, e, position, curPosition{X: 1}); err != nil {
		t.Fatalf("AddComponentValue: %v", err)
	}
	w.ManageEntities()

	ds := w.Query(NewFilterBuilder().Including(ReadOf(position)).Build())
	cur := NewCursor(ds)

	if !cur.Next() {
		t.Fatal("expected at least one row")
	}
	if cur.Next() {
		t.Fatal("expected exactly one row")
	}

	cur.Reset()
	if !cur.Next() {
		t.Fatal("expected Reset to allow revisiting the first row")
	}
}
