package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"writeflow/internal/llm"
	llmclient "writeflow/internal/llmclient"
	"writeflow/internal/search"
	"writeflow/internal/tester"
)

func collectEvents(ch <-chan WriterEvent) []WriterEvent {
	var events []WriterEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestWriteStream_EventOrder(t *testing.T) {
	fake := &llm.FakeClient{}
	fake.CompleteFn = func(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
		return `{"keywords":["go","channels"]}`, nil
	}
	fake.CompleteStreamFn = func(ctx context.Context, msgs []llmclient.Message) (*llmclient.Stream, error) {
		return llm.StreamOf("Hel", "lo"), nil
	}

	w := &SectionWriter{LLM: fake}
	events := collectEvents(w.WriteStream(context.Background(),
		SectionSpec{Title: "Concurrency", KeyPoints: []string{"goroutines"}},
		ProjectSpec{Title: "Go Guide", ContentType: "Tutorial"}))

	types := make([]EventType, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	tester.Eq(t, types, []EventType{
		EventProgress, EventKeywords, EventProgress,
		EventSearchResults, EventProgress, EventContent, EventContent,
	})
	tester.Eq(t, events[1].Keywords, []string{"go", "channels"})
	tester.Eq(t, events[5].Content+events[6].Content, "Hello")
}

func TestWriteStream_GenerationFailureEmitsError(t *testing.T) {
	fake := &llm.FakeClient{}
	fake.CompleteFn = func(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
		return `{"keywords":["x"]}`, nil
	}
	fake.CompleteStreamFn = func(ctx context.Context, msgs []llmclient.Message) (*llmclient.Stream, error) {
		return nil, errors.New("provider down")
	}

	w := &SectionWriter{LLM: fake}
	events := collectEvents(w.WriteStream(context.Background(), SectionSpec{Title: "S"}, ProjectSpec{}))

	last := events[len(events)-1]
	tester.Eq(t, last.Type, EventError)
	tester.Eq(t, last.Message, "Content generation failed")
}

func TestWrite_FallsBackToBasicPromptOnFailure(t *testing.T) {
	fake := &llm.FakeClient{}
	fake.CompleteFn = func(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
		if schema != nil {
			// keyword extraction
			return `{"keywords":["k"]}`, nil
		}
		if fake.Calls == 2 {
			// first generation attempt
			return "", errors.New("enhanced path down")
		}
		return "basic content", nil
	}

	w := &SectionWriter{LLM: fake}
	out, err := w.Write(context.Background(), SectionSpec{Title: "S"}, ProjectSpec{ContentType: "Report"})
	tester.NoErr(t, err)
	tester.Eq(t, out, "basic content")
	tester.Eq(t, fake.Calls, 3)
}

func TestExtractKeywords_HeuristicFallback(t *testing.T) {
	fake := &llm.FakeClient{}
	fake.CompleteFn = func(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
		return "", errors.New("down")
	}

	w := &SectionWriter{LLM: fake}
	kw := w.ExtractKeywords(context.Background(),
		SectionSpec{
			Title:     "Cloud Native Security",
			KeyPoints: []string{"zero trust architecture basics"},
		}, "")

	// Title words over 3 chars, then up to 2 words over 4 chars per point.
	tester.Eq(t, kw, []string{"Cloud", "Native", "Security", "trust", "architecture"})
}

func TestFallbackKeywords_CapsAtFive(t *testing.T) {
	kw := fallbackKeywords("Alpha Beta Gamma Delta Epsilon Zeta", []string{"something interesting happened today"})
	tester.Eq(t, len(kw), 5)
}

func TestEnrichContext_TruncatesRawContent(t *testing.T) {
	long := strings.Repeat("x", 4000)
	out := enrichContext("base", []string{"kw"}, []search.Result{
		{Title: "T", URL: "http://u", Content: "snippet", RawContent: long},
	})
	tester.True(t, strings.Contains(out, "## Search Result 1: T"), "result block present")
	tester.True(t, strings.Contains(out, strings.Repeat("x", 1500)+"..."), "raw content truncated at 1500")
	tester.False(t, strings.Contains(out, strings.Repeat("x", 1501)), "no overflow past the cap")
	tester.True(t, strings.Contains(out, "## SEARCH KEYWORDS USED:\nkw"), "keywords listed")
}

func TestEnrichContext_NoResultsLeavesContextUntouched(t *testing.T) {
	tester.Eq(t, enrichContext("base", []string{"kw"}, nil), "base")
}
