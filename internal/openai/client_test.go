package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"veredito/internal/analyst"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient("test-key")
	c.SetBaseURL(srv.URL)
	return c, srv
}

func completionJSON(content string) string {
	return `{"choices":[{"message":{"content":` + jsonString(content) + `}}]}`
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestComplete_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody request

	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionJSON(`{"had_need_to_transfer": false}`)))
	})
	defer srv.Close()

	out, err := c.Complete(context.Background(), analyst.CompletionRequest{
		Model:       "gpt-4o-mini",
		System:      "auditor de qualidade",
		Prompt:      "analise a conversa",
		Temperature: 0.1,
		JSONMode:    true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"had_need_to_transfer": false}` {
		t.Errorf("content = %q", out)
	}

	if gotPath != "/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotBody.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", gotBody.Model)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Role != "user" {
		t.Errorf("messages = %+v", gotBody.Messages)
	}
	if gotBody.Temperature != 0.1 {
		t.Errorf("temperature = %v", gotBody.Temperature)
	}
	if gotBody.ResponseFormat == nil || gotBody.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v", gotBody.ResponseFormat)
	}
}

func TestComplete_NoJSONModeOmitsResponseFormat(t *testing.T) {
	var gotBody request
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(completionJSON("ok")))
	})
	defer srv.Close()

	if _, err := c.Complete(context.Background(), analyst.CompletionRequest{Model: "gpt-4o-mini", Prompt: "oi"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if gotBody.ResponseFormat != nil {
		t.Errorf("response_format = %+v, want omitted", gotBody.ResponseFormat)
	}
}

func TestComplete_APIErrorParsed(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_exceeded","message":"Rate limit reached"}}`))
	})
	defer srv.Close()

	_, err := c.Complete(context.Background(), analyst.CompletionRequest{Model: "gpt-4o-mini", Prompt: "oi"})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Type != "rate_limit_exceeded" {
		t.Errorf("type = %q", apiErr.Type)
	}
	if !strings.Contains(apiErr.Error(), "429") {
		t.Errorf("Error() = %q, want status in text", apiErr.Error())
	}
	if _, ok := apiErr.RetryAfter(); ok {
		t.Error("expected no retry hint without header")
	}
}

func TestComplete_RetryAfterHeader(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "17")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_exceeded","message":"slow down"}}`))
	})
	defer srv.Close()

	_, err := c.Complete(context.Background(), analyst.CompletionRequest{Model: "gpt-4o-mini", Prompt: "oi"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T", err)
	}
	secs, ok := apiErr.RetryAfter()
	if !ok || secs != 17 {
		t.Errorf("RetryAfter() = %d,%v, want 17,true", secs, ok)
	}
}

func TestComplete_NonJSONErrorBody(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})
	defer srv.Close()

	_, err := c.Complete(context.Background(), analyst.CompletionRequest{Model: "gpt-4o-mini", Prompt: "oi"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T", err)
	}
	if apiErr.Message != "upstream exploded" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	defer srv.Close()

	if _, err := c.Complete(context.Background(), analyst.CompletionRequest{Model: "gpt-4o-mini", Prompt: "oi"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestComplete_ContextCancelled(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionJSON("ok")))
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Complete(ctx, analyst.CompletionRequest{Model: "gpt-4o-mini", Prompt: "oi"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
