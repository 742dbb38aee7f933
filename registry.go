package ecdb

import (
	"reflect"
	"sync"
)

// ComponentID is the stable numeric id of a registered Attribute.
type ComponentID uint32

// ComponentFlag marks special handling for an Attribute.
type ComponentFlag uint32

const (
	// FlagDecay marks a component whose last value, on row destruction,
	// is migrated into the owning World's decay buffer instead of being
	// silently discarded.
	FlagDecay ComponentFlag = 1 << iota
)

// InitHook runs once when a component first becomes attached to an entity,
// against the freshly written bytes (staged or default).
type InitHook func(w *World, e Entity, value any)

// attribute is one registry entry: a component kind.
type attribute struct {
	id     ComponentID
	name   string
	size   int
	deflt  []byte
	flags  ComponentFlag
	initFn InitHook
	goType reflect.Type
}

// registry is the process-wide, append-only table of component kinds.
// Registration happens once per component type during program init;
// after that, lookups are lock-free in spirit (spec.md 4.2) though Go has
// no static-init ordering guarantee across packages, so a RWMutex guards
// the rare write against concurrent reads.
type registry struct {
	mu     sync.RWMutex
	byName map[string]ComponentID
	attrs  []attribute // index 0 unused; ids start at 1
}

var globalRegistry = &registry{
	byName: make(map[string]ComponentID),
	attrs:  make([]attribute, 1),
}

// Register adds (or, if name already exists, returns the existing) a
// component kind. Idempotent by name.
func (r *registry) Register(name string, size int, deflt []byte, flags ComponentFlag, goType reflect.Type, init InitHook) ComponentID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byName[name]; ok {
		return id
	}
	id := ComponentID(len(r.attrs))
	r.attrs = append(r.attrs, attribute{
		id:     id,
		name:   name,
		size:   size,
		deflt:  append([]byte(nil), deflt...),
		flags:  flags,
		initFn: init,
		goType: goType,
	})
	r.byName[name] = id
	return id
}

// LookupByName returns the ComponentID registered under name, if any.
func (r *registry) LookupByName(name string) (ComponentID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

func (r *registry) attribute(id ComponentID) attribute {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.attrs) {
		panic(ComponentNotRegisteredError{ID: id})
	}
	return r.attrs[id]
}

// SizeOf returns the byte size of a registered component (0 for tags).
func (r *registry) SizeOf(id ComponentID) int { return r.attribute(id).size }

// DefaultOf returns the default raw bytes for a registered component.
func (r *registry) DefaultOf(id ComponentID) []byte { return r.attribute(id).deflt }

// FlagsOf returns the flag set for a registered component.
func (r *registry) FlagsOf(id ComponentID) ComponentFlag { return r.attribute(id).flags }

// NameOf returns the registered name for a component id.
func (r *registry) NameOf(id ComponentID) string { return r.attribute(id).name }

// GoTypeOf returns the Go struct type a component was registered with, or
// nil for components registered without one (pure-byte/tag components).
func (r *registry) GoTypeOf(id ComponentID) reflect.Type { return r.attribute(id).goType }

// IsDecaying reports whether id carries FlagDecay.
func (r *registry) IsDecaying(id ComponentID) bool {
	return r.attribute(id).flags&FlagDecay != 0
}

// Registry exposes the process-wide Attribute Registry for callers that
// need raw registry access (e.g. the level codec validating schema drift).
func Registry() *registry { return globalRegistry }

// componentRef implements Component purely from a registered id, for
// callers (the level codec, scripting bindings) that only have a raw
// ComponentID or a name and no AccessibleComponent[T] handle.
type componentRef ComponentID

func (c componentRef) ID() ComponentID { return ComponentID(c) }
func (c componentRef) Name() string    { return globalRegistry.NameOf(ComponentID(c)) }
func (c componentRef) Size() int       { return globalRegistry.SizeOf(ComponentID(c)) }

// ComponentByID returns a Component handle for a registered id.
func ComponentByID(id ComponentID) Component { return componentRef(id) }

// ComponentByName resolves name against the registry and returns a
// Component handle, or false if no component was ever registered under
// that name.
func ComponentByName(name string) (Component, bool) {
	id, ok := globalRegistry.LookupByName(name)
	if !ok {
		return nil, false
	}
	return componentRef(id), true
}
