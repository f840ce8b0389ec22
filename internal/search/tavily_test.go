package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"writeflow/internal/tester"
)

func TestSearch_NoCredential_ReturnsNothing(t *testing.T) {
	cli := NewClient(Config{}, nil)
	results, err := cli.Search(context.Background(), "anything")
	tester.NoErr(t, err)
	tester.Eq(t, len(results), 0)
	tester.Eq(t, len(cli.SearchMany(context.Background(), []string{"a", "b"})), 0)
}

func TestSearch_SendsAdvancedQueryWithExclusions(t *testing.T) {
	var gotReq searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tester.Eq(t, r.URL.Path, "/search")
		tester.Eq(t, r.Header.Get("Authorization"), "Bearer tvly-key")
		tester.NoErr(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{"results":[{"title":"t","url":"u","content":"c","score":0.5}]}`))
	}))
	defer srv.Close()

	cli := NewClient(Config{APIKey: "tvly-key", BaseURL: srv.URL}, nil)
	results, err := cli.Search(context.Background(), "go concurrency")
	tester.NoErr(t, err)
	tester.Eq(t, len(results), 1)
	tester.Eq(t, gotReq.Query, "go concurrency")
	tester.Eq(t, gotReq.SearchDepth, "advanced")
	tester.True(t, gotReq.IncludeRawContent, "raw content requested")
	tester.Eq(t, gotReq.MaxResults, 3)
	tester.Eq(t, gotReq.ExcludeDomains, excludedDomains)
}

func TestSearchMany_FailedKeywordIsSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		tester.NoErr(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Query == "bad" {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"results":[
			{"title":"a","url":"u1","content":"c1","score":0.4},
			{"title":"b","url":"u2","content":"c2","score":0.9}
		]}`))
	}))
	defer srv.Close()

	cli := NewClient(Config{APIKey: "tvly-key", BaseURL: srv.URL}, nil)
	results := cli.SearchMany(context.Background(), []string{"bad", "good"})
	tester.Eq(t, len(results), 2)
	// Sorted descending by score.
	tester.Eq(t, results[0].URL, "u2")
	tester.Eq(t, results[1].URL, "u1")
}

func TestAggregate_DedupesByURLFirstWins(t *testing.T) {
	out := aggregate([]Result{
		{Title: "first", URL: "same", Score: 0.3},
		{Title: "second", URL: "same", Score: 0.9},
		{Title: "other", URL: "diff", Score: 0.5},
	})
	tester.Eq(t, len(out), 2)
	tester.Eq(t, out[0].URL, "diff")
	tester.Eq(t, out[1].Title, "first")
}

func TestAggregate_CapsAtEight(t *testing.T) {
	var all []Result
	for i := 0; i < 12; i++ {
		all = append(all, Result{URL: fmt.Sprintf("u%d", i), Score: float64(i)})
	}
	out := aggregate(all)
	tester.Eq(t, len(out), 8)
	// Highest scores survive the cap.
	tester.Eq(t, out[0].URL, "u11")
	tester.Eq(t, out[7].URL, "u4")
}
