package pipeline

import (
	"context"
	"fmt"
	"strings"

	"writeflow/internal/jsonutil"
	"writeflow/internal/llmclient"
)

const refineSystemPrompt = `You are an expert content strategist and writer. Your task is to refine and improve content sections based on the project context, content type, and source materials.

Guidelines:
1. Analyze the original sections and improve them for better structure and flow
2. Ensure sections are appropriate for the specified content type
3. Consider the context and source materials when refining sections
4. Each section should have a clear purpose and contribute to the overall narrative
5. Provide key points that should be covered in each section
6. Estimate appropriate length for each section (in words)
7. Ensure logical progression and coherent structure

Respond with a JSON object containing the refined sections.`

var refineSchema = &llmclient.ResponseSchema{
	Name: "writing_response",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sections": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":          map[string]any{"type": "string"},
						"title":       map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"keyPoints": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"estimatedLength": map[string]any{"type": "number"},
					},
					"required": []string{"id", "title", "description", "keyPoints", "estimatedLength"},
				},
			},
		},
		"required": []string{"sections"},
	},
}

// SectionRefiner turns a raw outline into structured section plans.
type SectionRefiner struct {
	LLM llmclient.Client
}

// Refine asks the model to restructure the outline into SectionSpecs.
// Callers that want a run to survive a refinement failure should fall back
// to FallbackSpecs.
func (r *SectionRefiner) Refine(ctx context.Context, proj ProjectSpec) ([]SectionSpec, error) {
	var outline strings.Builder
	for i, title := range proj.Outline {
		fmt.Fprintf(&outline, "%d. %s\n", i+1, title)
	}

	user := fmt.Sprintf(`Please refine these content sections for a %s titled "%s".

Original Sections:
%s
Context and Source Materials:
%s

Requirements:
- Ensure sections flow logically and build upon each other
- Make titles specific and compelling
- Provide 3-5 key points for each section
- Estimate word count for each section (typically 200-600 words per section)
- Consider the target audience and purpose of this %s
- Ensure comprehensive coverage of the topic while maintaining focus`,
		proj.ContentType, proj.Title, outline.String(), proj.SourceText,
		strings.ToLower(proj.ContentType))

	msgs := []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: refineSystemPrompt},
		{Role: llmclient.RoleUser, Content: user},
	}

	raw, err := r.LLM.Complete(ctx, msgs, refineSchema)
	if err != nil {
		return nil, err
	}

	var out struct {
		Sections []SectionSpec `json:"sections"`
	}
	if err := jsonutil.UnmarshalFlex([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("section refinement: %w: %v", llmclient.ErrInvalidJSON, err)
	}
	if len(out.Sections) == 0 {
		return nil, fmt.Errorf("section refinement returned no sections")
	}
	return out.Sections, nil
}

// FallbackSpecs builds one generic spec per outline entry. Used when the
// model-backed refinement fails so the run can still proceed.
func FallbackSpecs(outline []string) []SectionSpec {
	specs := make([]SectionSpec, 0, len(outline))
	for i, title := range outline {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		specs = append(specs, SectionSpec{
			ID:              fmt.Sprintf("section-%d", i),
			Title:           title,
			Description:     fmt.Sprintf("Content for %s", title),
			KeyPoints:       []string{fmt.Sprintf("Key point for %s", title)},
			EstimatedLength: 300,
		})
	}
	return specs
}
