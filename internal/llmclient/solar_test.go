package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"writeflow/internal/tester"
)

func newTestClient(srv *httptest.Server) *SolarClient {
	return NewSolarClient(Config{APIKey: "test-key", BaseURL: srv.URL})
}

func TestComplete_ReturnsAssistantContent(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tester.Eq(t, r.URL.Path, "/chat/completions")
		tester.Eq(t, r.Header.Get("Authorization"), "Bearer test-key")
		tester.NoErr(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`))
	}))
	defer srv.Close()

	cli := newTestClient(srv)
	out, err := cli.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	tester.NoErr(t, err)
	tester.Eq(t, out, "hello there")
	tester.Eq(t, gotReq.Temperature, 0.7)
	tester.Eq(t, gotReq.MaxTokens, 4000)
	tester.Eq(t, gotReq.TopP, 0.9)
	tester.True(t, gotReq.ResponseFormat == nil, "no schema requested")
}

func TestComplete_SchemaSetsStrictJSONResponseFormat(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tester.NoErr(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer srv.Close()

	schema := &ResponseSchema{Name: "writing_response", Schema: map[string]any{"type": "object"}}
	cli := newTestClient(srv)
	_, err := cli.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, schema)
	tester.NoErr(t, err)
	tester.True(t, gotReq.ResponseFormat != nil, "response_format present")
	tester.Eq(t, gotReq.ResponseFormat.Type, "json_schema")
	tester.Eq(t, gotReq.ResponseFormat.JSONSchema.Name, "writing_response")
	tester.True(t, gotReq.ResponseFormat.JSONSchema.Strict, "strict schema")
}

func TestComplete_EmptyChoices_ErrEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	cli := newTestClient(srv)
	_, err := cli.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	tester.True(t, errors.Is(err, ErrEmptyCompletion), "expected ErrEmptyCompletion")
}

func TestComplete_ServerError_IsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cli := newTestClient(srv)
	_, err := cli.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	tester.Err(t, err)
	var pErr *PermanentError
	tester.False(t, errors.As(err, &pErr), "5xx must not be permanent")
}

func TestComplete_ContextLengthExceeded_IsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"context_length_exceeded","message":"too long"}}`))
	}))
	defer srv.Close()

	cli := newTestClient(srv)
	_, err := cli.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	var pErr *PermanentError
	tester.True(t, errors.As(err, &pErr), "context overflow is permanent")
}

func TestCompleteStream_SetsStreamFlag(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tester.NoErr(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\ndata: [DONE]\n\n"))
	}))
	defer srv.Close()

	cli := newTestClient(srv)
	stream, err := cli.CompleteStream(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	tester.NoErr(t, err)
	out, err := stream.Drain()
	tester.NoErr(t, err)
	tester.Eq(t, out, "ok")
	tester.True(t, gotReq.Stream, "stream flag on")
}
