package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"writeflow/internal/llmclient"
	"writeflow/internal/parse"
	"writeflow/internal/scrape"
	"writeflow/internal/search"
)

type Config struct {
	Port   string
	Env    string
	LLM    llmclient.Config
	Search search.Config
	Parse  parse.Config
	Scrape scrape.Config

	// Client-side LLM rate limit. Disabled unless LLM_RPS is set.
	LLMRPS   float64
	LLMBurst int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	rps, burst := resolveLLMRate()

	return &Config{
		Port:     *port,
		Env:      env,
		LLM:      loadLLMConfig(),
		Search:   loadSearchConfig(),
		Parse:    loadParseConfig(),
		Scrape:   loadScrapeConfig(),
		LLMRPS:   rps,
		LLMBurst: burst,
	}, nil
}

func loadLLMConfig() llmclient.Config {
	return llmclient.Config{
		APIKey:  strings.TrimSpace(os.Getenv("UPSTAGE_API_KEY")),
		Model:   strings.TrimSpace(os.Getenv("UPSTAGE_MODEL_NAME")),
		BaseURL: strings.TrimSpace(os.Getenv("UPSTAGE_BASE_URL")),
		Timeout: resolveLLMTimeout(),
	}
}

func resolveLLMTimeout() time.Duration {
	raw := strings.TrimSpace(os.Getenv("LLM_TIMEOUT_SECONDS"))
	if raw == "" {
		return 0
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// resolveLLMRate reads LLM_RPS and LLM_BURST. Unset or invalid values leave
// the limiter disabled (rps 0). Burst defaults to 1 when a rate is set.
func resolveLLMRate() (float64, int) {
	raw := strings.TrimSpace(os.Getenv("LLM_RPS"))
	if raw == "" {
		return 0, 0
	}
	rps, err := strconv.ParseFloat(raw, 64)
	if err != nil || rps <= 0 {
		return 0, 0
	}
	burst := 1
	if rawBurst := strings.TrimSpace(os.Getenv("LLM_BURST")); rawBurst != "" {
		if b, err := strconv.Atoi(rawBurst); err == nil && b > 0 {
			burst = b
		}
	}
	return rps, burst
}

func loadSearchConfig() search.Config {
	return search.Config{
		APIKey:  strings.TrimSpace(os.Getenv("TAVILY_API_KEY")),
		BaseURL: strings.TrimSpace(os.Getenv("TAVILY_BASE_URL")),
	}
}

func loadParseConfig() parse.Config {
	return parse.Config{
		APIKey:  strings.TrimSpace(os.Getenv("UPSTAGE_API_KEY")),
		BaseURL: strings.TrimSpace(os.Getenv("UPSTAGE_DOCUMENT_AI_URL")),
	}
}

func loadScrapeConfig() scrape.Config {
	return scrape.Config{
		APIKey:  strings.TrimSpace(os.Getenv("FIRECRAWL_API_KEY")),
		BaseURL: strings.TrimSpace(os.Getenv("FIRECRAWL_BASE_URL")),
	}
}
