package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"writeflow/internal/jsonutil"
	"writeflow/internal/llmclient"
	"writeflow/internal/search"
)

// EventType labels a WriterEvent.
type EventType string

const (
	EventProgress      EventType = "progress"
	EventKeywords      EventType = "keywords"
	EventSearchResults EventType = "search_results"
	EventContent       EventType = "content"
	EventError         EventType = "error"
)

// ResultSummary is the trimmed view of a search result sent to watchers.
type ResultSummary struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// WriterEvent is one update emitted while writing a section. Only the fields
// relevant to the event type are populated.
type WriterEvent struct {
	Type     EventType       `json:"type"`
	Message  string          `json:"message,omitempty"`
	Keywords []string        `json:"keywords,omitempty"`
	Results  []ResultSummary `json:"results,omitempty"`
	Content  string          `json:"content,omitempty"`
}

const keywordSystemPrompt = `You are an expert at extracting search keywords for research purposes. Your task is to identify 3-5 specific search terms that would help find the most relevant and current information for writing a section.

Guidelines:
1. Focus on concrete, searchable terms rather than abstract concepts
2. Include specific names, technologies, companies, or concepts mentioned
3. Consider current trends and recent developments
4. Prioritize terms that would yield factual, authoritative results
5. Avoid overly generic terms

Return only the keywords as a JSON array.`

var keywordSchema = &llmclient.ResponseSchema{
	Name: "writing_response",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"keywords": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"keywords"},
	},
}

// SectionWriter drafts one section at a time, optionally enriching the prompt
// with live search results.
type SectionWriter struct {
	LLM    llmclient.Client
	Search *search.Client
	Log    *log.Logger
}

func (w *SectionWriter) logf(format string, args ...any) {
	if w.Log != nil {
		w.Log.Printf(format, args...)
	}
}

// ExtractKeywords asks the model for search terms covering the section. On
// model failure it degrades to a word-length heuristic over the title and key
// points so the search step still has something to work with.
func (w *SectionWriter) ExtractKeywords(ctx context.Context, spec SectionSpec, projContext string) []string {
	user := fmt.Sprintf(`Extract search keywords for research to write this section:

Section Title: %s
Section Description: %s

Key Points to Cover:
%s
Project Context:
%s

Please extract 3-5 specific search keywords that would help find the most relevant current information for writing this section.`,
		spec.Title, spec.Description, numbered(spec.KeyPoints), projContext)

	msgs := []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: keywordSystemPrompt},
		{Role: llmclient.RoleUser, Content: user},
	}

	raw, err := w.LLM.Complete(ctx, msgs, keywordSchema)
	if err == nil {
		var out struct {
			Keywords []string `json:"keywords"`
		}
		if err := jsonutil.UnmarshalFlex([]byte(raw), &out); err == nil && len(out.Keywords) > 0 {
			return out.Keywords
		}
	}
	w.logf("keyword extraction failed for %q, using heuristic fallback: %v", spec.Title, err)
	return fallbackKeywords(spec.Title, spec.KeyPoints)
}

// fallbackKeywords picks the longer words from the title (>3 chars) and the
// first two long words (>4 chars) of each key point, capped at 5.
func fallbackKeywords(title string, keyPoints []string) []string {
	var kw []string
	for _, word := range strings.Fields(title) {
		if len(word) > 3 {
			kw = append(kw, word)
		}
	}
	for _, point := range keyPoints {
		taken := 0
		for _, word := range strings.Fields(point) {
			if len(word) > 4 {
				kw = append(kw, word)
				taken++
				if taken == 2 {
					break
				}
			}
		}
	}
	if len(kw) > 5 {
		kw = kw[:5]
	}
	return kw
}

const rawContentLimit = 1500

// enrichContext appends the search results and keywords to the project
// context. Raw page content is truncated so a single result cannot dominate
// the prompt.
func enrichContext(projContext string, keywords []string, results []search.Result) string {
	if len(results) == 0 {
		return projContext
	}
	blocks := make([]string, len(results))
	for i, r := range results {
		block := fmt.Sprintf("## Search Result %d: %s\nSource: %s\nContent: %s", i+1, r.Title, r.URL, r.Content)
		if r.RawContent != "" {
			block += fmt.Sprintf("\nFull Content: %s...", truncate(r.RawContent, rawContentLimit))
		}
		blocks[i] = block
	}
	return fmt.Sprintf("%s\n\n## RECENT SEARCH RESULTS AND CURRENT INFORMATION:\n%s\n\n## SEARCH KEYWORDS USED:\n%s",
		projContext, strings.Join(blocks, "\n\n"), strings.Join(keywords, ", "))
}

func (w *SectionWriter) enrichedMessages(spec SectionSpec, proj ProjectSpec, enriched string) []llmclient.Message {
	system := fmt.Sprintf(`You are a professional content writer specializing in creating high-quality %ss. Your task is to write engaging, informative, and well-structured content sections using both the provided context and recent search results.

Guidelines:
1. Write in a professional yet accessible tone
2. Use clear, concise language appropriate for the content type
3. Include relevant examples, data, or insights from both the context and search results
4. When incorporating information from search results, ensure accuracy and cite credible sources
5. Ensure smooth transitions and logical flow
6. Match the estimated length while maintaining quality
7. Make the content actionable and valuable to readers
8. Use appropriate formatting (headings, bullet points, etc.) when helpful
9. Prioritize current and factual information from search results
10. Blend the provided context with fresh search insights naturally

Important: If search results provide current information that complements or updates the provided context, integrate it seamlessly. Focus on creating comprehensive, up-to-date content.`,
		strings.ToLower(proj.ContentType))

	user := fmt.Sprintf(`Write a section for a %s titled "%s".

Section Title: %s
Section Description: %s
Target Length: Approximately %d words

Key Points to Cover:
%s
Enhanced Context with Search Results:
%s

Please write a comprehensive, well-structured section that covers all key points while incorporating relevant information from both the provided context and the search results. Ensure the content is current, accurate, and flows naturally.`,
		proj.ContentType, proj.Title, spec.Title, spec.Description,
		spec.EstimatedLength, numbered(spec.KeyPoints), enriched)

	return []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: system},
		{Role: llmclient.RoleUser, Content: user},
	}
}

func (w *SectionWriter) basicMessages(spec SectionSpec, proj ProjectSpec) []llmclient.Message {
	lower := strings.ToLower(proj.ContentType)
	system := fmt.Sprintf(`You are a professional content writer specializing in creating high-quality %ss. Your task is to write engaging, informative, and well-structured content sections.

Guidelines:
1. Write in a professional yet accessible tone
2. Use clear, concise language appropriate for the content type
3. Include relevant examples, data, or insights when appropriate
4. Ensure smooth transitions and logical flow
5. Match the estimated length while maintaining quality
6. Make the content actionable and valuable to readers
7. Use appropriate formatting (headings, bullet points, etc.) when helpful
8. Ensure accuracy and credibility in all statements

Write content that is comprehensive, engaging, and serves the purpose of the overall %s.`, lower, lower)

	user := fmt.Sprintf(`Write a section for a %s titled "%s".

Section Title: %s
Section Description: %s
Target Length: Approximately %d words

Key Points to Cover:
%s
Context and Reference Materials:
%s

Please write a comprehensive, well-structured section that covers all key points while maintaining engagement and professional quality. Use appropriate formatting and ensure the content flows naturally.`,
		proj.ContentType, proj.Title, spec.Title, spec.Description,
		spec.EstimatedLength, numbered(spec.KeyPoints), proj.SourceText)

	return []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: system},
		{Role: llmclient.RoleUser, Content: user},
	}
}

// Write produces the full section content in one buffered call. The
// search-enhanced path is attempted first; any failure there falls back to a
// plain generation without search context.
func (w *SectionWriter) Write(ctx context.Context, spec SectionSpec, proj ProjectSpec) (string, error) {
	keywords := w.ExtractKeywords(ctx, spec, proj.SourceText)
	results := w.searchMany(ctx, keywords)
	enriched := enrichContext(proj.SourceText, keywords, results)

	content, err := w.LLM.Complete(ctx, w.enrichedMessages(spec, proj, enriched), nil)
	if err == nil {
		return content, nil
	}
	w.logf("enhanced section writing failed for %q, falling back to basic approach: %v", spec.Title, err)
	return w.LLM.Complete(ctx, w.basicMessages(spec, proj), nil)
}

// WriteStream writes the section while reporting progress over a channel.
// Event order: progress, keywords, progress, search_results, progress, then
// content deltas, then either completion (channel close) or a single error
// event. The channel is always closed when the write finishes or ctx ends.
func (w *SectionWriter) WriteStream(ctx context.Context, spec SectionSpec, proj ProjectSpec) <-chan WriterEvent {
	events := make(chan WriterEvent, 16)
	go func() {
		defer close(events)

		emit := func(ev WriterEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit(WriterEvent{Type: EventProgress, Message: "Extracting search keywords for: " + spec.Title}) {
			return
		}
		keywords := w.ExtractKeywords(ctx, spec, proj.SourceText)
		if !emit(WriterEvent{
			Type:     EventKeywords,
			Keywords: keywords,
			Message:  "Keywords extracted: " + strings.Join(keywords, ", "),
		}) {
			return
		}

		if !emit(WriterEvent{Type: EventProgress, Message: "Searching for current information..."}) {
			return
		}
		results := w.searchMany(ctx, keywords)
		summaries := make([]ResultSummary, len(results))
		for i, r := range results {
			summaries[i] = ResultSummary{Title: r.Title, URL: r.URL, Content: truncate(r.Content, 200) + "..."}
		}
		if !emit(WriterEvent{
			Type:    EventSearchResults,
			Results: summaries,
			Message: fmt.Sprintf("Found %d relevant sources", len(results)),
		}) {
			return
		}

		if !emit(WriterEvent{Type: EventProgress, Message: "Starting content generation..."}) {
			return
		}

		enriched := enrichContext(proj.SourceText, keywords, results)
		stream, err := w.LLM.CompleteStream(ctx, w.enrichedMessages(spec, proj, enriched))
		if err != nil {
			w.logf("content generation failed for %q: %v", spec.Title, err)
			emit(WriterEvent{Type: EventError, Message: "Content generation failed"})
			return
		}
		defer stream.Close()

		for {
			delta, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				w.logf("content generation failed for %q: %v", spec.Title, err)
				emit(WriterEvent{Type: EventError, Message: "Content generation failed"})
				return
			}
			if !emit(WriterEvent{Type: EventContent, Content: delta}) {
				return
			}
		}
	}()
	return events
}

func (w *SectionWriter) searchMany(ctx context.Context, keywords []string) []search.Result {
	if w.Search == nil {
		return nil
	}
	return w.Search.SearchMany(ctx, keywords)
}

func numbered(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
