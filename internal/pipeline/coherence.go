package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"writeflow/internal/llmclient"
)

// ErrNoContent is returned when coherence refinement is requested but no
// section has any completed content to refine.
var ErrNoContent = errors.New("no completed sections to refine")

const coherenceSystemPrompt = `You are an expert content editor with a meticulous eye for consistency and professional writing standards. Your mission is to transform the content into a cohesive, professional piece that reads as if written by a single expert author.

CRITICAL CONSISTENCY REQUIREMENTS:

1. **Formatting & Structure Consistency:**
   - Standardize ALL numbering systems (1., 2., 3. OR i., ii., iii. - pick ONE style and apply throughout)
   - Ensure consistent heading hierarchy (# Main Headings, ## Sub-headings, ### Sub-sub-headings)
   - Standardize bullet point styles (• or - consistently)
   - Maintain uniform spacing and paragraph structure

2. **Tone & Voice Unification:**
   - Establish ONE consistent authorial voice (professional, conversational, academic, etc.)
   - Eliminate tonal shifts between sections
   - Ensure consistent level of formality throughout
   - Use consistent person (first person "we", second person "you", or third person "one")

3. **Terminology & Language Consistency:**
   - Use identical terms for the same concepts throughout (no synonym variation)
   - Maintain consistent technical vocabulary and definitions
   - Standardize abbreviations and acronyms (spell out on first use, then consistent usage)
   - Ensure consistent capitalization and punctuation styles

4. **Content Flow & Transitions:**
   - Create seamless bridges between sections that feel natural
   - Eliminate redundant information and repetitive statements
   - Ensure logical progression of ideas from simple to complex
   - Make sure each section builds upon previous content

5. **Professional Polish:**
   - Eliminate informal language inconsistencies
   - Ensure consistent sentence structures and complexity
   - Standardize citation and reference styles if applicable
   - Create a unified reading experience

The result should feel like a single expert wrote the entire piece with careful attention to detail and consistency.`

// CoherenceRefiner rewrites the concatenated sections into one consistent
// piece.
type CoherenceRefiner struct {
	LLM llmclient.Client
}

// Concat joins sections that have content into a single markdown document,
// one "## Title" block per section. Section content is included verbatim.
func Concat(sections []Section) string {
	var blocks []string
	for _, s := range sections {
		if s.Content == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("## %s\n\n%s", s.Title, s.Content))
	}
	return strings.Join(blocks, "\n\n")
}

// completedContent filters to sections that finished writing with non-empty
// content. Returns ErrNoContent when nothing qualifies.
func completedContent(sections []Section) ([]Section, error) {
	var done []Section
	for _, s := range sections {
		if s.Status == StatusCompleted && s.Content != "" {
			done = append(done, s)
		}
	}
	if len(done) == 0 {
		return nil, ErrNoContent
	}
	return done, nil
}

func coherenceMessages(title, contentType string, sections []Section) []llmclient.Message {
	user := fmt.Sprintf(`Transform this %s titled "%s" into a professionally consistent and cohesive piece. Pay special attention to creating uniformity in formatting, tone, and structure.

CONTENT TO REFINE:
%s

SPECIFIC REFINEMENT TASKS:
1. **Standardize ALL numbering and formatting** - ensure consistent numbering schemes throughout (1., 2., 3. or i., ii., iii. - choose one style)
2. **Unify the authorial voice** - make it sound like one expert wrote the entire piece with consistent tone and manner
3. **Eliminate formatting inconsistencies** - standardize headings, bullet points, spacing, and structure
4. **Smooth transitions** - create natural bridges between sections that enhance flow
5. **Remove redundancy** - eliminate repetitive content while preserving key information
6. **Consistent terminology** - use identical terms for the same concepts throughout
7. **Professional polish** - ensure consistent formality level and writing quality
8. **Coherent conclusion** - tie all sections together with a strong, unified ending

Return the complete refined content with all sections included, maintaining the original structure while achieving perfect consistency and professional quality.`,
		contentType, title, Concat(sections))

	return []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: coherenceSystemPrompt},
		{Role: llmclient.RoleUser, Content: user},
	}
}

// Refine returns the unified document content in one buffered call.
func (r *CoherenceRefiner) Refine(ctx context.Context, title, contentType string, sections []Section) (string, error) {
	done, err := completedContent(sections)
	if err != nil {
		return "", err
	}
	return r.LLM.Complete(ctx, coherenceMessages(title, contentType, done), nil)
}

// RefineStream starts the unification pass and hands the delta stream to the
// caller. The caller owns the stream and must Close it.
func (r *CoherenceRefiner) RefineStream(ctx context.Context, title, contentType string, sections []Section) (*llmclient.Stream, error) {
	done, err := completedContent(sections)
	if err != nil {
		return nil, err
	}
	return r.LLM.CompleteStream(ctx, coherenceMessages(title, contentType, done))
}
