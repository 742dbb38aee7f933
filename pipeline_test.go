package ecdb

import "testing"

type pPosition struct{ X float64 }

func buildTestProcessor(name string, order int, async bool, mode AccessMode, c Component) *Processor {
	b := NewProcessorBuilder(name).OnEvent(EventOnFrame, order)
	if async {
		b = b.Async()
	}
	proj := Projection{Component: c, Mode: mode}
	return b.Including(proj).Run(func(*World, *Dataset) {}).Build()
}

func TestFrameEventAttachSplitsOnWriteConflict(t *testing.T) {
	position := FactoryNewComponent[pPosition]("pipeline-test-position")
	ev := &FrameEvent{Name: EventOnFrame, Order: 100}

	writerA := buildTestProcessor("writer-a", 50, true, Write, position)
	writerB := buildTestProcessor("writer-b", 50, true, Write, position)

	ev.attach(writerA)
	ev.attach(writerB)

	if len(ev.batches) != 2 {
		t.Fatalf("expected conflicting async writers to land in separate batches, got %d", len(ev.batches))
	}
}

func TestFrameEventAttachSharesBatchWithoutConflict(t *testing.T) {
	position := FactoryNewComponent[pPosition]("pipeline-test-position-shared")
	ev := &FrameEvent{Name: EventOnFrame, Order: 100}

	readerA := buildTestProcessor("reader-a", 50, true, Read, position)
	readerB := buildTestProcessor("reader-b", 50, true, Read, position)

	ev.attach(readerA)
	ev.attach(readerB)

	if len(ev.batches) != 1 {
		t.Fatalf("expected two non-conflicting async readers to share a batch, got %d", len(ev.batches))
	}
	if len(ev.batches[0].processors) != 2 {
		t.Fatalf("expected both readers in the shared batch, got %d processors", len(ev.batches[0].processors))
	}
}

func TestPipelineAttachUnknownEventPanics(t *testing.T) {
	p := newPipeline()
	proc := &Processor{Name: "ghost", Event: "NoSuchEvent", filter: NewFilterBuilder().Build()}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic attaching a processor to an unregistered event")
		}
	}()
	p.Attach(proc)
}

func TestPipelineRunThruStopsAtNamedEvent(t *testing.T) {
	p := newPipeline()
	var ran []string
	for _, name := range []string{EventOnBeginFrame, EventOnFrame, EventOnEndFrame} {
		name := name
		proc := NewProcessorBuilder("rec-" + name).
			OnEvent(name, 100).
			Run(func(*World, *Dataset) { ran = append(ran, name) }).
			Build()
		p.Attach(proc)
	}

	w := newWorld(1, 1)
	p.Begin()
	if err := p.RunThru(w, EventOnFrame); err != nil {
		t.Fatalf("RunThru: %v", err)
	}
	if len(ran) != 2 || ran[0] != EventOnBeginFrame || ran[1] != EventOnFrame {
		t.Fatalf("ran = %v, want [%s %s]", ran, EventOnBeginFrame, EventOnFrame)
	}

	if err := p.RunRemaining(w); err != nil {
		t.Fatalf("RunRemaining: %v", err)
	}
	if len(ran) != 3 || ran[2] != EventOnEndFrame {
		t.Fatalf("ran = %v, want a final %s", ran, EventOnEndFrame)
	}
}
