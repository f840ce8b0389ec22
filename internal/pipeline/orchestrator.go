package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
)

// RunPhase identifies the stage a generation run is in.
type RunPhase string

const (
	PhaseRefining  RunPhase = "refining-sections"
	PhaseWriting   RunPhase = "writing"
	PhaseCoherence RunPhase = "coherence"
	PhaseComplete  RunPhase = "complete"
)

// Phase progress anchors. Section writing interpolates between the writing
// anchor and the coherence anchor.
const (
	progressRefining  = 10.0
	progressWriting   = 25.0
	progressCoherence = 80.0
	progressPolishing = 85.0
	progressComplete  = 100.0
	writingSpan       = 50.0
)

// RunEvent is one update emitted by an orchestrated run. Section carries a
// snapshot when a section changes status, Writer forwards section-writer
// detail, and Document is set exactly once on the complete event.
type RunEvent struct {
	Phase    RunPhase     `json:"phase"`
	Progress float64      `json:"progress"`
	Message  string       `json:"message,omitempty"`
	Section  *Section     `json:"section,omitempty"`
	Writer   *WriterEvent `json:"writer,omitempty"`
	Document *Document    `json:"document,omitempty"`
}

// Run is a single in-flight generation. Events is closed after the complete
// event (or when the context ends).
type Run struct {
	ID      string
	Project ProjectSpec
	Events  <-chan RunEvent
}

// Orchestrator drives a project through refinement, per-section writing, and
// the final coherence pass.
type Orchestrator struct {
	Refiner   *SectionRefiner
	Writer    *SectionWriter
	Coherence *CoherenceRefiner
	Log       *log.Logger
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.Log != nil {
		o.Log.Printf(format, args...)
	}
}

// Start launches a run and returns immediately. Progress never decreases and
// reaches 100 only on the complete event. Stage failures degrade instead of
// aborting: refinement falls back to the raw outline, a failed section gets
// placeholder content, a failed coherence pass falls back to plain
// concatenation.
func (o *Orchestrator) Start(ctx context.Context, proj ProjectSpec) *Run {
	events := make(chan RunEvent, 32)
	run := &Run{ID: uuid.NewString(), Project: proj, Events: events}
	go o.execute(ctx, proj, events)
	return run
}

func (o *Orchestrator) execute(ctx context.Context, proj ProjectSpec, events chan<- RunEvent) {
	defer close(events)

	progress := 0.0
	emit := func(ev RunEvent) bool {
		// Progress is monotonic across the whole run.
		if ev.Progress < progress {
			ev.Progress = progress
		}
		progress = ev.Progress
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// Phase 1: refine the outline into section plans.
	if !emit(RunEvent{Phase: PhaseRefining, Progress: progressRefining, Message: "Refining sections with AI..."}) {
		return
	}
	specs, err := o.Refiner.Refine(ctx, proj)
	if err != nil {
		o.logf("section refinement failed, using original outline: %v", err)
		specs = FallbackSpecs(proj.Outline)
		if !emit(RunEvent{Phase: PhaseRefining, Progress: progressRefining, Message: "Error refining sections. Using original outline..."}) {
			return
		}
	}
	if len(specs) == 0 {
		emit(RunEvent{Phase: PhaseComplete, Progress: progressComplete, Message: "Nothing to write: outline is empty", Document: &Document{Title: proj.Title, ContentType: proj.ContentType}})
		return
	}

	sections := make([]Section, len(specs))
	for i, spec := range specs {
		sections[i] = Section{ID: spec.ID, Title: spec.Title, Status: StatusPending}
	}

	// Phase 2: write each section in order.
	if !emit(RunEvent{Phase: PhaseWriting, Progress: progressWriting, Message: "Preparing content generation..."}) {
		return
	}
	for i, spec := range specs {
		sections[i].Status = StatusWriting
		if !emit(RunEvent{Phase: PhaseWriting, Progress: progress, Message: "Writing: " + spec.Title, Section: snapshot(sections[i])}) {
			return
		}
		content, ok := o.writeSection(ctx, spec, proj, events, &progress)
		if !ok {
			return
		}
		if content == "" {
			content = fmt.Sprintf("This section would cover %s. Content generation failed, but the structure is in place for manual editing.", spec.Title)
		}
		sections[i].Content = content
		sections[i].Status = StatusCompleted

		done := progressWriting + float64(i+1)/float64(len(specs))*writingSpan
		if !emit(RunEvent{Phase: PhaseWriting, Progress: done, Message: "Section completed: " + spec.Title, Section: snapshot(sections[i])}) {
			return
		}
	}

	// Phase 3: unify tone and formatting across sections.
	if !emit(RunEvent{Phase: PhaseCoherence, Progress: progressCoherence, Message: "Final polish: standardizing formatting and tone..."}) {
		return
	}
	final, ok := o.refineCoherence(ctx, proj, sections, events, &progress)
	if !ok {
		return
	}

	doc := &Document{Title: proj.Title, ContentType: proj.ContentType, Content: final, Sections: sections}
	emit(RunEvent{Phase: PhaseComplete, Progress: progressComplete, Message: "Content generation completed", Document: doc})
}

// writeSection streams one section, forwarding writer events and accumulating
// the content. Returns ok=false only when the run context ended. A generation
// failure yields empty content so the caller can substitute a placeholder.
func (o *Orchestrator) writeSection(ctx context.Context, spec SectionSpec, proj ProjectSpec, events chan<- RunEvent, progress *float64) (string, bool) {
	var content string
	for ev := range o.Writer.WriteStream(ctx, spec, proj) {
		switch ev.Type {
		case EventContent:
			content += ev.Content
		case EventError:
			o.logf("section %q failed: %s", spec.Title, ev.Message)
			content = ""
		}
		ev := ev
		select {
		case events <- RunEvent{Phase: PhaseWriting, Progress: *progress, Message: ev.Message, Writer: &ev}:
		case <-ctx.Done():
			return "", false
		}
	}
	if ctx.Err() != nil {
		return "", false
	}
	return content, true
}

// refineCoherence streams the unification pass, forwarding deltas. Any
// failure, including mid-stream, falls back to the plain concatenation of the
// written sections. Returns ok=false only when the run context ended.
func (o *Orchestrator) refineCoherence(ctx context.Context, proj ProjectSpec, sections []Section, events chan<- RunEvent, progress *float64) (string, bool) {
	forward := func(ev RunEvent) bool {
		if ev.Progress < *progress {
			ev.Progress = *progress
		}
		*progress = ev.Progress
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	stream, err := o.Coherence.RefineStream(ctx, proj.Title, proj.ContentType, sections)
	if err != nil {
		o.logf("coherence refinement failed, combining sections as-is: %v", err)
		return Concat(sections), ctx.Err() == nil
	}
	defer stream.Close()

	if !forward(RunEvent{Phase: PhaseCoherence, Progress: progressPolishing, Message: "Unifying voice and structure..."}) {
		return "", false
	}

	var refined string
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			o.logf("coherence stream broke, combining sections as-is: %v", err)
			return Concat(sections), ctx.Err() == nil
		}
		refined += delta
		if !forward(RunEvent{Phase: PhaseCoherence, Progress: *progress, Writer: &WriterEvent{Type: EventContent, Content: delta}}) {
			return "", false
		}
	}
	if refined == "" {
		return Concat(sections), true
	}
	return refined, true
}

func snapshot(s Section) *Section {
	c := s
	return &c
}
