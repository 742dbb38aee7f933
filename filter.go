package ecdb

// AccessMode records whether a processor reads or writes a projected
// component; it is advisory (there is no per-row locking) but drives
// Batch's write-conflict check for async scheduling.
type AccessMode int

const (
	Read AccessMode = iota
	Write
)

// Projection pairs a component with the access mode a Filter grants it.
type Projection struct {
	Component Component
	Mode      AccessMode
}

// ReadOf builds a read projection, for use in FilterBuilder.Including.
func ReadOf(c Component) Projection { return Projection{Component: c, Mode: Read} }

// WriteOf builds a write projection, for use in FilterBuilder.Including.
func WriteOf(c Component) Projection { return Projection{Component: c, Mode: Write} }

// Filter is a compiled, immutable (inclusive signature, exclusive
// signature, projection list) triple. Filters are cheap value types in
// this Go port; the source's reference-counted destroy_filter has no
// equivalent here since there is no manual memory to release.
type Filter struct {
	inclusive  Signature
	exclusive  Signature
	projection []Projection
}

// Matches reports whether sig satisfies the filter: a superset of the
// inclusive signature and disjoint from the exclusive one.
func (f *Filter) Matches(sig Signature) bool {
	return sig.IsSuperset(f.inclusive) && sig.HasNone(f.exclusive)
}

// Inclusive returns the filter's required-component signature.
func (f *Filter) Inclusive() Signature { return f.inclusive }

// Exclusive returns the filter's forbidden-component signature.
func (f *Filter) Exclusive() Signature { return f.exclusive }

// Projection returns the filter's ordered column projection list.
func (f *Filter) Projection() []Projection { return f.projection }

// WriteComponents returns the ids of every component projected as Write.
func (f *Filter) WriteComponents() []ComponentID {
	var out []ComponentID
	for _, p := range f.projection {
		if p.Mode == Write {
			out = append(out, p.Component.ID())
		}
	}
	return out
}

// ReadComponents returns the ids of every component projected as Read.
func (f *Filter) ReadComponents() []ComponentID {
	var out []ComponentID
	for _, p := range f.projection {
		if p.Mode == Read {
			out = append(out, p.Component.ID())
		}
	}
	return out
}

// FilterBuilder assembles a Filter's inclusive/exclusive signatures and
// projection list before Build compiles it.
type FilterBuilder struct {
	projection []Projection
	exclude    []Component
}

// NewFilterBuilder starts a new FilterBuilder.
func NewFilterBuilder() *FilterBuilder { return &FilterBuilder{} }

// Including adds projected components (with access mode) to the filter's
// inclusive side.
func (b *FilterBuilder) Including(projections ...Projection) *FilterBuilder {
	b.projection = append(b.projection, projections...)
	return b
}

// Excluding adds components to the filter's exclusive side. Excluded
// components are not projected and carry no access mode.
func (b *FilterBuilder) Excluding(components ...Component) *FilterBuilder {
	b.exclude = append(b.exclude, components...)
	return b
}

// Build compiles the accumulated projections into an immutable Filter.
func (b *FilterBuilder) Build() *Filter {
	f := &Filter{projection: append([]Projection(nil), b.projection...)}
	for _, p := range f.projection {
		f.inclusive = f.inclusive.With(p.Component.ID())
	}
	for _, c := range b.exclude {
		f.exclusive = f.exclusive.With(c.ID())
	}
	return f
}
