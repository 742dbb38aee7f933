package ecdb

import "sort"

// Names of the three events registered on every new Pipeline
// (spec.md §4.8).
const (
	EventOnBeginFrame = "OnBeginFrame"
	EventOnFrame      = "OnFrame"
	EventOnEndFrame   = "OnEndFrame"
)

// FrameEvent is a named scheduling point holding an ordered list of
// Batches. Events themselves are ordered within a Pipeline by Order.
type FrameEvent struct {
	Name    string
	Order   int
	batches []*Batch
}

// attach places p into an accepting existing batch at p.Order/p.Async,
// or opens a new one, keeping batches sorted by Order.
func (ev *FrameEvent) attach(p *Processor) {
	for _, b := range ev.batches {
		if b.Order == p.Order && b.Async == p.Async {
			if b.TryInsert(p) {
				return
			}
		}
	}
	nb := &Batch{Order: p.Order, Async: p.Async}
	nb.processors = append(nb.processors, p)
	ev.batches = append(ev.batches, nb)
	sort.Slice(ev.batches, func(i, j int) bool { return ev.batches[i].Order < ev.batches[j].Order })
}

func (ev *FrameEvent) run(w *World) error {
	for _, b := range ev.batches {
		if err := b.run(w); err != nil {
			return err
		}
	}
	return nil
}
