package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"writeflow/internal/llm"
	llmclient "writeflow/internal/llmclient"
	"writeflow/internal/tester"
)

const identifiedRisks = `{
	"risks": [
		{"title":"Unlimited Liability","severity":"high","originalText":"liable for all damages","riskType":"liability","location":"Section 8"},
		{"title":"Auto Renewal","severity":"medium","originalText":"shall automatically renew","riskType":"termination","location":"Section 3"}
	],
	"summary":"two issues found"
}`

const detailJSON = `{
	"detailedExplanation":"this clause is one-sided",
	"businessImpact":"unbounded exposure",
	"legalRisks":["punitive damages"],
	"recommendations":[{"action":"cap liability","priority":"high","effort":"low"}],
	"suggestedNewText":"liability shall be capped"
}`

func TestAnalyze_TwoPassEnrichment(t *testing.T) {
	fake := &llm.FakeClient{}
	fake.CompleteFn = func(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
		if schema != nil {
			tester.Eq(t, schema.Name, "contract_analysis")
			return identifiedRisks, nil
		}
		return detailJSON, nil
	}

	a := &Analyzer{LLM: fake}
	report := a.Analyze(context.Background(), "the contract text")

	tester.Eq(t, report.TotalRisks, 2)
	tester.Eq(t, report.Summary, "two issues found")
	tester.True(t, report.AnalysisComplete, "analysis marked complete")

	for _, r := range report.Risks {
		tester.True(t, strings.HasPrefix(r.ID, "risk_"), "detail ids are generated")
		tester.Eq(t, r.Description, "this clause is one-sided")
		tester.Eq(t, r.SuggestedNewText, "liability shall be capped")
		tester.Eq(t, len(r.Recommendations), 1)
		tester.Eq(t, r.Recommendations[0].Priority, "high")
	}
	// One identify call plus one detail call per finding.
	tester.Eq(t, fake.Calls, 3)
}

func TestAnalyze_UnstructuredDetailDegradesToPlaceholder(t *testing.T) {
	fake := &llm.FakeClient{}
	fake.CompleteFn = func(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
		if schema != nil {
			return identifiedRisks, nil
		}
		return "free-form prose, not JSON", nil
	}

	a := &Analyzer{LLM: fake}
	report := a.Analyze(context.Background(), "the contract text")

	tester.Eq(t, report.TotalRisks, 2)
	r := report.Risks[0]
	tester.Eq(t, r.Description, "free-form prose, not JSON")
	tester.Eq(t, r.Recommendations[0].Action, "Review this clause with legal counsel")
	tester.Eq(t, r.SuggestedNewText, "Please consult with legal counsel for appropriate replacement text.")
}

func TestAnalyze_IdentifyFailureServesFallbackReport(t *testing.T) {
	fake := &llm.FakeClient{}
	fake.CompleteFn = func(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
		return "", errors.New("provider down")
	}

	a := &Analyzer{LLM: fake}
	report := a.Analyze(context.Background(), "the contract text")

	tester.Eq(t, report.TotalRisks, 3)
	tester.Eq(t, report.Risks[0].ID, "fallback_1")
	tester.Eq(t, report.Risks[0].Severity, "high")
	tester.True(t, report.AnalysisComplete, "fallback still reads as complete")
}

func TestAnalyze_NoRisksYieldsEmptyReport(t *testing.T) {
	fake := &llm.FakeClient{}
	fake.CompleteFn = func(ctx context.Context, msgs []llmclient.Message, schema *llmclient.ResponseSchema) (string, error) {
		return `{"risks":[],"summary":""}`, nil
	}

	a := &Analyzer{LLM: fake}
	report := a.Analyze(context.Background(), "clean contract")

	tester.Eq(t, report.TotalRisks, 0)
	tester.Eq(t, len(report.Risks), 0)
	tester.Eq(t, report.Summary, "No significant risks identified in this contract.")
}
