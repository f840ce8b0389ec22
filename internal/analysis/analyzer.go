package analysis

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"writeflow/internal/jsonutil"
	"writeflow/internal/llmclient"
)

// RiskFinding is one risk located during the identification pass.
type RiskFinding struct {
	Title        string `json:"title"`
	Severity     string `json:"severity"`
	OriginalText string `json:"originalText"`
	RiskType     string `json:"riskType"`
	Location     string `json:"location"`
}

// Recommendation is one suggested action for addressing a risk.
type Recommendation struct {
	Action   string `json:"action"`
	Priority string `json:"priority"`
	Effort   string `json:"effort"`
}

// DetailedRisk is a finding enriched with the per-risk analysis pass.
type DetailedRisk struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Severity         string           `json:"severity"`
	Description      string           `json:"description"`
	OriginalText     string           `json:"originalText"`
	BusinessImpact   string           `json:"businessImpact"`
	LegalRisks       []string         `json:"legalRisks"`
	Recommendations  []Recommendation `json:"recommendations"`
	SuggestedNewText string           `json:"suggestedNewText"`
	Location         string           `json:"location"`
}

// Report is the full analysis result for one contract.
type Report struct {
	TotalRisks       int            `json:"totalRisks"`
	Risks            []DetailedRisk `json:"risks"`
	Summary          string         `json:"summary"`
	AnalysisComplete bool           `json:"analysisComplete"`
}

const identifySystemPrompt = `You are an expert legal contract analyst specializing in identifying potential risks and problematic clauses in contracts. Your task is to carefully read the contract and identify specific risks with their exact text from the document.

Guidelines:
1. Focus on identifying actual risks and unfavorable terms, not general observations
2. Extract the EXACT text from the contract that contains the risk (word-for-word quotes)
3. Classify each risk by severity: high (immediate legal/financial danger), medium (potentially problematic), low (minor concerns)
4. Identify the type of risk (e.g., liability, termination, payment, indemnification, etc.)
5. Specify the location/section where the risk was found
6. Only include risks that could genuinely impact the signing party negatively

Respond with a JSON object containing the identified risks and a brief summary.`

var identifySchema = &llmclient.ResponseSchema{
	Name: "contract_analysis",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"risks": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":        map[string]any{"type": "string"},
						"severity":     map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}},
						"originalText": map[string]any{"type": "string"},
						"riskType":     map[string]any{"type": "string"},
						"location":     map[string]any{"type": "string"},
					},
					"required": []string{"title", "severity", "originalText", "riskType", "location"},
				},
			},
			"summary": map[string]any{"type": "string"},
		},
		"required": []string{"risks", "summary"},
	},
}

const detailSystemPrompt = `You are a senior legal counsel specializing in contract risk assessment and negotiation. Your task is to provide detailed analysis of a specific contract risk and actionable recommendations for addressing it.

Provide comprehensive analysis including:
1. Detailed explanation of why this is problematic
2. Potential business and legal impacts
3. Specific legal risks that could materialize
4. Prioritized recommendations for addressing the issue
5. Suggested alternative text that would be more favorable

Be practical, specific, and business-focused in your analysis. IMPORTANT: Always write the suggested replacement text in the same language as the original problematic text provided by the user.`

// Analyzer runs the two-pass contract risk analysis.
type Analyzer struct {
	LLM llmclient.Client
	Log *log.Logger
}

func (a *Analyzer) logf(format string, args ...any) {
	if a.Log != nil {
		a.Log.Printf(format, args...)
	}
}

// Analyze identifies risks in the contract, then enriches each finding with a
// detail pass fanned out concurrently. If identification itself fails the
// canned fallback report is returned so callers always get a usable result.
func (a *Analyzer) Analyze(ctx context.Context, contractText string) *Report {
	findings, summary, err := a.identify(ctx, contractText)
	if err != nil {
		a.logf("risk identification failed, serving fallback analysis: %v", err)
		return fallbackReport()
	}
	if len(findings) == 0 {
		if summary == "" {
			summary = "No significant risks identified in this contract."
		}
		return &Report{TotalRisks: 0, Risks: []DetailedRisk{}, Summary: summary, AnalysisComplete: true}
	}

	detailed := make([]DetailedRisk, len(findings))
	var wg sync.WaitGroup
	for i, finding := range findings {
		wg.Add(1)
		go func(i int, finding RiskFinding) {
			defer wg.Done()
			detailed[i] = a.detail(ctx, finding, contractText)
		}(i, finding)
	}
	wg.Wait()

	return &Report{
		TotalRisks:       len(detailed),
		Risks:            detailed,
		Summary:          summary,
		AnalysisComplete: true,
	}
}

func (a *Analyzer) identify(ctx context.Context, contractText string) ([]RiskFinding, string, error) {
	user := fmt.Sprintf(`Please analyze this contract and identify specific legal risks with their exact text from the document:

%s

Focus on finding:
- Unlimited liability clauses
- Unfair termination conditions
- Problematic payment terms
- Broad indemnification requirements
- Unclear or missing protections
- Automatic renewal terms
- Dispute resolution limitations
- Intellectual property concerns
- Confidentiality overreach
- Performance guarantees or penalties

For each risk, provide the exact text from the contract that creates the risk.`, contractText)

	msgs := []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: identifySystemPrompt},
		{Role: llmclient.RoleUser, Content: user},
	}

	raw, err := a.LLM.Complete(ctx, msgs, identifySchema)
	if err != nil {
		return nil, "", err
	}
	var out struct {
		Risks   []RiskFinding `json:"risks"`
		Summary string        `json:"summary"`
	}
	if err := jsonutil.UnmarshalFlex([]byte(raw), &out); err != nil {
		return nil, "", fmt.Errorf("risk identification: %w: %v", llmclient.ErrInvalidJSON, err)
	}
	return out.Risks, out.Summary, nil
}

// detail enriches one finding. The detail call uses no response schema, so a
// malformed reply degrades to a review-with-counsel placeholder that keeps
// the raw model text as the explanation.
func (a *Analyzer) detail(ctx context.Context, finding RiskFinding, contractText string) DetailedRisk {
	user := fmt.Sprintf(`Please provide a detailed analysis of this contract risk:

**Risk Title:** %s
**Severity:** %s
**Risk Type:** %s
**Location:** %s
**Original Problematic Text:**
"%s"

**Full Contract Context:**
%s

Please provide:
1. A detailed explanation of why this clause is problematic
2. Potential business impact (financial, operational, reputational)
3. Specific legal risks that could arise
4. Prioritized recommendations to address this issue
5. Suggested replacement text that would be more balanced and fair (MUST be in the same language as the original text)

Format your response as a JSON object with the following structure:
{
  "detailedExplanation": "...",
  "businessImpact": "...",
  "legalRisks": ["risk1", "risk2", "..."],
  "recommendations": [
    {
      "action": "...",
      "priority": "high|medium|low",
      "effort": "low|medium|high"
    }
  ],
  "suggestedNewText": "..."
}`,
		finding.Title, finding.Severity, finding.RiskType, finding.Location,
		finding.OriginalText, contractText)

	msgs := []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: detailSystemPrompt},
		{Role: llmclient.RoleUser, Content: user},
	}

	base := DetailedRisk{
		ID:           "risk_" + uuid.NewString(),
		Title:        finding.Title,
		Severity:     finding.Severity,
		Description:  fmt.Sprintf("%s risk identified in %s", finding.RiskType, finding.Location),
		OriginalText: finding.OriginalText,
		Location:     finding.Location,
	}

	raw, err := a.LLM.Complete(ctx, msgs, nil)
	if err != nil {
		a.logf("detail analysis failed for %q: %v", finding.Title, err)
		return placeholderDetail(base, "Detailed analysis was not available.")
	}

	var parsed struct {
		DetailedExplanation string           `json:"detailedExplanation"`
		BusinessImpact      string           `json:"businessImpact"`
		LegalRisks          []string         `json:"legalRisks"`
		Recommendations     []Recommendation `json:"recommendations"`
		SuggestedNewText    string           `json:"suggestedNewText"`
	}
	if err := jsonutil.UnmarshalFlex([]byte(raw), &parsed); err != nil {
		return placeholderDetail(base, raw)
	}

	base.Description = parsed.DetailedExplanation
	base.BusinessImpact = parsed.BusinessImpact
	base.LegalRisks = parsed.LegalRisks
	if base.LegalRisks == nil {
		base.LegalRisks = []string{}
	}
	base.Recommendations = parsed.Recommendations
	if base.Recommendations == nil {
		base.Recommendations = []Recommendation{}
	}
	base.SuggestedNewText = parsed.SuggestedNewText
	return base
}

func placeholderDetail(base DetailedRisk, explanation string) DetailedRisk {
	base.Description = explanation
	base.BusinessImpact = "Analysis of business impact was not available in structured format."
	base.LegalRisks = []string{"Legal analysis was not available in structured format"}
	base.Recommendations = []Recommendation{{
		Action:   "Review this clause with legal counsel",
		Priority: "medium",
		Effort:   "medium",
	}}
	base.SuggestedNewText = "Please consult with legal counsel for appropriate replacement text."
	return base
}
