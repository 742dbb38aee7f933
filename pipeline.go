package ecdb

import "sort"

// Pipeline is the ordered sequence of Frame Events a World runs its
// Processors through each frame (spec.md §4.8). Three events are
// registered at construction: OnBeginFrame (10), OnFrame (100),
// OnEndFrame (200, not an integer hard rule, just this package's
// convention, mirroring the default orders named in the spec).
type Pipeline struct {
	events []*FrameEvent
	cursor int
	armed  bool
}

func newPipeline() *Pipeline {
	p := &Pipeline{}
	p.RegisterFrameEvent(EventOnBeginFrame, 10)
	p.RegisterFrameEvent(EventOnFrame, 100)
	p.RegisterFrameEvent(EventOnEndFrame, 200)
	return p
}

// RegisterFrameEvent adds a new named event at order, kept sorted.
// Registering under a name that already exists is a no-op.
func (p *Pipeline) RegisterFrameEvent(name string, order int) {
	for _, ev := range p.events {
		if ev.Name == name {
			return
		}
	}
	p.events = append(p.events, &FrameEvent{Name: name, Order: order})
	sort.Slice(p.events, func(i, j int) bool { return p.events[i].Order < p.events[j].Order })
}

func (p *Pipeline) eventNamed(name string) *FrameEvent {
	for _, ev := range p.events {
		if ev.Name == name {
			return ev
		}
	}
	return nil
}

// Attach places proc into its named event's batch list. proc.Event must
// already be registered (the three defaults always are); an unknown
// event name is a configuration error and panics.
func (p *Pipeline) Attach(proc *Processor) {
	ev := p.eventNamed(proc.Event)
	if ev == nil {
		panic("ecdb: pipeline has no event named " + proc.Event)
	}
	ev.attach(proc)
}

// Begin arms the pipeline and resets its cursor to the first event.
func (p *Pipeline) Begin() {
	p.armed = true
	p.cursor = 0
}

// End disarms the pipeline. The cursor position is preserved, so a
// paused pipeline may be resumed with RunThru/RunRemaining later
// (spec.md §4.8's editor pause/resume support).
func (p *Pipeline) End() {
	p.armed = false
}

// Reset moves the cursor back to the first event without changing the
// armed state.
func (p *Pipeline) Reset() {
	p.cursor = 0
}

// RunThru executes every event from the cursor up to and including
// eventName, dispatching add-component commands between each pair of
// consecutive events so a processor in one event's output is visible
// to the next.
func (p *Pipeline) RunThru(w *World, eventName string) error {
	for p.cursor < len(p.events) {
		ev := p.events[p.cursor]
		if err := ev.run(w); err != nil {
			return err
		}
		p.cursor++
		done := ev.Name == eventName
		if p.cursor < len(p.events) {
			w.dispatchAdds()
		}
		if done {
			return nil
		}
	}
	return nil
}

// RunRemaining runs every event from the cursor to the end.
func (p *Pipeline) RunRemaining(w *World) error {
	if len(p.events) == 0 {
		return nil
	}
	return p.RunThru(w, p.events[len(p.events)-1].Name)
}

// Prefilter rebuilds (force=true) or incrementally trusts (force=false)
// every processor's cached matching-table list.
func (p *Pipeline) Prefilter(db *Database, force bool) {
	for _, ev := range p.events {
		for _, b := range ev.batches {
			for _, proc := range b.processors {
				if force || !proc.cacheFull {
					proc.cached = proc.cached[:0]
					db.ForEachTable(func(t *Table) {
						if proc.matches(t.Signature()) {
							proc.cached = append(proc.cached, t.ID())
						}
					})
					proc.cacheFull = true
				}
			}
		}
	}
}

// CacheTable is invoked by the World whenever a genuinely new table is
// created; it appends id to every processor whose filter it matches,
// avoiding a per-frame linear scan of the whole table list.
func (p *Pipeline) CacheTable(id TableID, sig Signature) {
	for _, ev := range p.events {
		for _, b := range ev.batches {
			for _, proc := range b.processors {
				if proc.matches(sig) {
					proc.cached = append(proc.cached, id)
				}
			}
		}
	}
}
