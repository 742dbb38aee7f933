package ecdb

// ProcessorFunc is the callback a Processor runs once per matched View
// (for an async batch) or once per Dataset (for a sync batch; see
// Batch.run). It receives the owning World so it may stage structural
// commands, but per spec.md §5 must not call Get/Set/AddComponent/
// RemoveComponent against an arbitrary entity while running async.
type ProcessorFunc func(w *World, ds *Dataset)

// Processor is one named unit of per-frame work: a compiled Filter, a
// callback, and the scheduling metadata (event, order, async flag) used
// to place it into a Batch.
type Processor struct {
	Name  string
	Event string
	Order int
	Async bool

	filter   *Filter
	callback ProcessorFunc

	cached    []TableID
	cacheFull bool
}

func (p *Processor) matches(sig Signature) bool {
	return p.filter.Matches(sig)
}

// materialize builds p's Dataset for the current frame, consulting its
// Prefilter/CacheTable-maintained table list instead of running a fresh
// Database.Query scan whenever that cache has been populated.
func (p *Processor) materialize(db *Database) *Dataset {
	if p.cacheFull {
		return materializeDatasetFromTables(db, p.filter, p.cached)
	}
	return materializeDataset(db, p.filter)
}

// writeConflicts reports whether p and other touch a shared component
// with at least one of them holding it as Write — the batch-acceptance
// rule from spec.md §4.8.
func (p *Processor) writeConflicts(other *Processor) bool {
	for _, a := range p.filter.projection {
		for _, b := range other.filter.projection {
			if a.Component.ID() != b.Component.ID() {
				continue
			}
			if a.Mode == Write || b.Mode == Write {
				return true
			}
		}
	}
	return false
}

// ProcessorBuilder assembles a Processor before attaching it to a
// Pipeline event; this mirrors FilterBuilder's step-by-step shape and
// is the repo's own addition over the teacher's flatter processor
// registration, since a bare struct literal would otherwise require
// every caller to hand-build a Filter first.
type ProcessorBuilder struct {
	name     string
	event    string
	order    int
	async    bool
	filter   *FilterBuilder
	callback ProcessorFunc
}

// NewProcessorBuilder starts building a Processor named name.
func NewProcessorBuilder(name string) *ProcessorBuilder {
	return &ProcessorBuilder{name: name, event: EventOnFrame, order: 100, filter: NewFilterBuilder()}
}

// OnEvent sets which Frame Event the processor attaches to and its
// order within that event's batch list.
func (b *ProcessorBuilder) OnEvent(event string, order int) *ProcessorBuilder {
	b.event = event
	b.order = order
	return b
}

// Async marks the processor eligible for parallel execution alongside
// any other processor in its batch with no write conflict.
func (b *ProcessorBuilder) Async() *ProcessorBuilder {
	b.async = true
	return b
}

// Including adds projected components to the processor's filter.
func (b *ProcessorBuilder) Including(projections ...Projection) *ProcessorBuilder {
	b.filter.Including(projections...)
	return b
}

// Excluding adds excluded components to the processor's filter.
func (b *ProcessorBuilder) Excluding(components ...Component) *ProcessorBuilder {
	b.filter.Excluding(components...)
	return b
}

// Run sets the processor's callback.
func (b *ProcessorBuilder) Run(fn ProcessorFunc) *ProcessorBuilder {
	b.callback = fn
	return b
}

// Build compiles the accumulated configuration into a Processor.
func (b *ProcessorBuilder) Build() *Processor {
	return &Processor{
		Name:     b.name,
		Event:    b.event,
		Order:    b.order,
		Async:    b.async,
		filter:   b.filter.Build(),
		callback: b.callback,
	}
}
