package ecdb

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Batch is the unit of scheduling inside a Frame Event: a list of
// processors that share an order and an async flag. A sync batch runs
// its processors sequentially in insertion order; an async batch fans
// out one task per (processor, partition-view) pair and joins before
// returning (spec.md §4.8, §5).
type Batch struct {
	Order int
	Async bool

	processors []*Processor
}

// TryInsert adds p to the batch iff no existing processor write-
// conflicts with it. Returns false (and leaves the batch unchanged) on
// conflict, signalling the caller to open a new batch.
func (b *Batch) TryInsert(p *Processor) bool {
	if b.Async != p.Async {
		return false
	}
	for _, existing := range b.processors {
		if existing.writeConflicts(p) {
			return false
		}
	}
	b.processors = append(b.processors, p)
	return true
}

// run executes every processor in the batch against w's database,
// sequentially for a sync batch or fanned out across a task group for
// an async one.
func (b *Batch) run(w *World) error {
	if !b.Async {
		for _, p := range b.processors {
			ds := p.materialize(w.db)
			p.callback(w, ds)
		}
		return nil
	}

	w.asyncBatches++
	defer func() { w.asyncBatches-- }()

	g, _ := errgroup.WithContext(context.Background())
	for _, p := range b.processors {
		ds := p.materialize(w.db)
		for _, view := range ds.Views {
			p, view := p, view
			single := &Dataset{Filter: p.filter, Views: []*View{view}}
			g.Go(func() error {
				p.callback(w, single)
				return nil
			})
		}
	}
	return g.Wait()
}
