package ecdb

import "testing"

type wPosition struct{ X, Y float64 }
type wVelocity struct{ X, Y float64 }
type wTag struct{}

func TestWorldCreateEntityImmediate(t *testing.T) {
	position := FactoryNewComponent[wPosition]("world-test-position")
	w := newWorld(1, 1)

	e := w.CreateEntity(true)
	if !e.Valid() {
		t.Fatal("expected a valid entity")
	}
	if !w.IsValid(e) {
		t.Fatal("expected IsValid to hold right after creation")
	}
	if w.HasComponent(e, position) {
		t.Fatal("freshly created entity should carry no optional components")
	}
}

func TestWorldAddComponentDeferredUntilDispatch(t *testing.T) {
	position := FactoryNewComponent[wPosition]("world-test-add-position")
	w := newWorld(2, 2)

	e := w.CreateEntity(true)
	if err := w.AddComponent(e, position); err != nil {
		t.Fatalf("AddComponent: %v", err)
	}
	if w.HasComponent(e, position) {
		t.Fatal("add should not take effect until dispatch")
	}
	w.ManageEntities()
	if !w.HasComponent(e, position) {
		t.Fatal("add should be visible after ManageEntities")
	}
}

func TestWorldAddComponentValueRoundTrip(t *testing.T) {
	position := FactoryNewComponent[wPosition]("world-test-value-position")
	w := newWorld(3, 3)

	e := w.CreateEntity(true)
	if _, err := AddComponentValue(w, e, position, wPosition{X: 1, Y: 2}); err != nil {
		t.Fatalf("AddComponentValue: %v", err)
	}
	w.ManageEntities()

	got, err := Get(w, e, position)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.X != 1 || got.Y != 2 {
		t.Fatalf("got %+v, want {1 2}", got)
	}

	if err := Set(w, e, position, wPosition{X: 5, Y: 6}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err = Get(w, e, position)
	if err != nil {
		t.Fatalf("Get after Set: %v", err)
	}
	if got.X != 5 || got.Y != 6 {
		t.Fatalf("got %+v after Set, want {5 6}", got)
	}
}

func TestWorldRemoveComponent(t *testing.T) {
	position := FactoryNewComponent[wPosition]("world-test-remove-position")
	velocity := FactoryNewComponent[wVelocity]("world-test-remove-velocity")
	w := newWorld(4, 4)

	e := w.CreateEntity(true)
	_ = w.AddComponent(e, position)
	_ = w.AddComponent(e, velocity)
	w.ManageEntities()

	if !w.HasComponent(e, velocity) {
		t.Fatal("expected velocity to be present before removal")
	}
	if err := w.RemoveComponent(e, velocity); err != nil {
		t.Fatalf("RemoveComponent: %v", err)
	}
	w.ManageEntities()
	if w.HasComponent(e, velocity) {
		t.Fatal("velocity should be gone after dispatch")
	}
	if !w.HasComponent(e, position) {
		t.Fatal("position should survive an unrelated removal")
	}
}

func TestWorldDeleteEntity(t *testing.T) {
	w := newWorld(5, 5)
	e := w.CreateEntity(true)
	w.DeleteEntity(e)
	w.ManageEntities()
	if w.IsValid(e) {
		t.Fatal("entity should be invalid after delete dispatch")
	}
}

func TestWorldTemplateInstantiation(t *testing.T) {
	tag := FactoryNewComponent[wTag]("world-test-template-tag")
	w := newWorld(6, 6)
	w.RegisterTemplate(1, tag)

	e := w.CreateEntityFromTemplate(1, true)
	if !w.HasComponent(e, tag) {
		t.Fatal("expected template component present on immediate instantiation")
	}
}

func TestWorldUnknownTemplateReturnsInvalidEntity(t *testing.T) {
	w := newWorld(7, 7)
	e := w.CreateEntityFromTemplate(999, true)
	if e.Valid() {
		t.Fatal("expected InvalidEntity for an unregistered template")
	}
}

func TestAsyncContextForbidsGetSetAndStructuralOps(t *testing.T) {
	position := FactoryNewComponent[wPosition]("world-test-async-position")
	w := newWorld(8, 8)
	e := w.CreateEntity(true)

	w.asyncBatches = 1
	defer func() { w.asyncBatches = 0 }()

	mustPanic := func(name string, fn func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic inside async context", name)
			}
		}()
		fn()
	}

	mustPanic("Get", func() { _, _ = Get(w, e, position) })
	mustPanic("Set", func() { _ = Set(w, e, position, wPosition{}) })
	mustPanic("AddComponent", func() { _ = w.AddComponent(e, position) })
	mustPanic("RemoveComponent", func() { _ = w.RemoveComponent(e, position) })
}
