package summarize_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"scribe/internal/services/summarize"
)

func newTestClient(t *testing.T, serverURL string, opts ...summarize.Option) *summarize.Client {
	t.Helper()
	cfg := summarize.Config{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Model:   "deepseek/deepseek-r1",
	}
	opts = append(opts, summarize.WithSleeper(func(time.Duration) {}))
	return summarize.NewClient(cfg, opts...)
}

func completionBody(content string) string {
	return `{"choices":[{"message":{"content":` + mustJSON(content) + `}}]}`
}

func mustJSON(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func TestSummarizeSendsPromptAndParsesContent(t *testing.T) {
	var captured struct {
		Model       string `json:"model"`
		MaxTokens   int    `json:"max_tokens"`
		Temperature float64
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("  ## Summary\nresult  ")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	summary, err := client.Summarize(context.Background(), "transcript text", summarize.StyleBrief, "en")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "## Summary\nresult" {
		t.Fatalf("unexpected summary %q", summary)
	}
	if captured.Model != "deepseek/deepseek-r1" {
		t.Fatalf("unexpected model %q", captured.Model)
	}
	if captured.MaxTokens != 2000 {
		t.Fatalf("unexpected max_tokens %d", captured.MaxTokens)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %#v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[0].Content, "transcript text") {
		t.Fatal("prompt does not embed the transcript")
	}
}

func TestSummarizeUsesChinesePromptForZH(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if len(payload.Messages) == 1 {
			prompt = payload.Messages[0].Content
		}
		_, _ = w.Write([]byte(completionBody("总结")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.Summarize(context.Background(), "文字稿", summarize.StyleDetailed, "zh"); err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if !strings.Contains(prompt, "请详细总结") {
		t.Fatalf("expected Chinese detailed prompt, got %q", prompt)
	}
}

func TestSummarizeRetriesOnRateLimit(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(completionBody("ok")))
	}))
	defer server.Close()

	var slept []time.Duration
	client := newTestClient(t, server.URL, summarize.WithSleeper(func(d time.Duration) {
		slept = append(slept, d)
	}))
	summary, err := client.Summarize(context.Background(), "text", summarize.StyleBrief, "en")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "ok" {
		t.Fatalf("unexpected summary %q", summary)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected one 1s sleep honoring Retry-After, got %v", slept)
	}
}

func TestSummarizeDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Summarize(context.Background(), "text", summarize.StyleBrief, "en")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestSummarizeGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, summarize.WithRetryMaxAttempts(3))
	_, err := client.Summarize(context.Background(), "text", summarize.StyleBrief, "en")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestSummarizeFailsOnEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Summarize(context.Background(), "text", summarize.StyleBrief, "en")
	if err == nil || !strings.Contains(err.Error(), "empty choices") {
		t.Fatalf("expected empty choices error, got %v", err)
	}
}

func TestSummarizeReportsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"model unavailable"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Summarize(context.Background(), "text", summarize.StyleBrief, "en")
	if err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestSummarizeRequiresAPIKey(t *testing.T) {
	client := summarize.NewClient(summarize.Config{Model: "m"})
	_, err := client.Summarize(context.Background(), "text", summarize.StyleBrief, "en")
	if err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestSummarizeRequiresTranscript(t *testing.T) {
	client := summarize.NewClient(summarize.Config{APIKey: "k"})
	_, err := client.Summarize(context.Background(), "   ", summarize.StyleBrief, "en")
	if err == nil || !strings.Contains(err.Error(), "transcript") {
		t.Fatalf("expected transcript error, got %v", err)
	}
}
