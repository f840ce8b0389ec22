package config

import (
	"testing"
	"time"

	"writeflow/internal/tester"
)

func TestResolveLLMRate_DisabledByDefault(t *testing.T) {
	t.Setenv("LLM_RPS", "")
	t.Setenv("LLM_BURST", "")

	rps, burst := resolveLLMRate()
	tester.Eq(t, rps, 0.0)
	tester.Eq(t, burst, 0)
}

func TestResolveLLMRate_ParsesRateAndBurst(t *testing.T) {
	t.Setenv("LLM_RPS", "2.5")
	t.Setenv("LLM_BURST", "4")

	rps, burst := resolveLLMRate()
	tester.Eq(t, rps, 2.5)
	tester.Eq(t, burst, 4)
}

func TestResolveLLMRate_BurstDefaultsToOne(t *testing.T) {
	t.Setenv("LLM_RPS", "1")
	t.Setenv("LLM_BURST", "")

	rps, burst := resolveLLMRate()
	tester.Eq(t, rps, 1.0)
	tester.Eq(t, burst, 1)
}

func TestResolveLLMRate_RejectsGarbage(t *testing.T) {
	t.Setenv("LLM_RPS", "fast")
	t.Setenv("LLM_BURST", "4")

	rps, burst := resolveLLMRate()
	tester.Eq(t, rps, 0.0)
	tester.Eq(t, burst, 0)
}

func TestResolveLLMTimeout(t *testing.T) {
	t.Setenv("LLM_TIMEOUT_SECONDS", "45")
	tester.Eq(t, resolveLLMTimeout(), 45*time.Second)

	t.Setenv("LLM_TIMEOUT_SECONDS", "-3")
	tester.Eq(t, resolveLLMTimeout(), time.Duration(0))

	t.Setenv("LLM_TIMEOUT_SECONDS", "")
	tester.Eq(t, resolveLLMTimeout(), time.Duration(0))
}
