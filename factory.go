package ecdb

// factory is the type of the package-level Factory value. It has no
// methods; components are registered through the package-level
// FactoryNew* generic functions below.
type factory struct{}

// Factory is the global factory instance for creating ecdb components.
var Factory factory

// FactoryNewComponent registers a component kind named name for Go type
// T (idempotent: re-registering the same name returns the existing
// AccessibleComponent) and returns a typed accessor for it. Size and
// default value are inferred from T's zero value, per the "replace
// component-registration macros with a generic helper" design note.
func FactoryNewComponent[T any](name string) AccessibleComponent[T] {
	return FactoryNewComponentWithDefault[T](name, nil, 0, nil)
}

// FactoryNewDecayingComponent registers a component that migrates its
// last value into the owning World's decay buffer on row removal.
func FactoryNewDecayingComponent[T any](name string) AccessibleComponent[T] {
	return FactoryNewComponentWithDefault[T](name, nil, FlagDecay, nil)
}

// FactoryNewComponentWithDefault registers a component with an explicit
// default value, flags, and init hook.
func FactoryNewComponentWithDefault[T any](name string, deflt *T, flags ComponentFlag, init InitHook) AccessibleComponent[T] {
	size := AccessibleComponent[T]{}.Size()
	id := globalRegistry.Register(name, size, defaultBytesOf(deflt), flags, typeOf[T](), init)
	return AccessibleComponent[T]{id: id, name: name}
}
