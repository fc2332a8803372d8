package nlq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGroqClientComplete(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "  {\"intent\":\"Historical\"}  "}},
			},
		})
	}))
	defer server.Close()

	client, err := NewGroqClient(GroqConfig{BaseURL: server.URL, APIKey: "test-key", Model: "test-model"})
	if err != nil {
		t.Fatalf("NewGroqClient() error = %v", err)
	}

	reply, err := client.Complete(context.Background(), "system prompt", "user prompt", 0.2)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != `{"intent":"Historical"}` {
		t.Fatalf("reply = %q", reply)
	}
	if captured["model"] != "test-model" {
		t.Fatalf("model = %v", captured["model"])
	}
	if captured["temperature"] != 0.2 {
		t.Fatalf("temperature = %v", captured["temperature"])
	}
}

func TestGroqClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewGroqClient(GroqConfig{BaseURL: server.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewGroqClient() error = %v", err)
	}
	if _, err := client.Complete(context.Background(), "s", "u", 0); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestGroqClientEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client, err := NewGroqClient(GroqConfig{BaseURL: server.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewGroqClient() error = %v", err)
	}
	if _, err := client.Complete(context.Background(), "s", "u", 0); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestGroqClientRequiresConfig(t *testing.T) {
	if _, err := NewGroqClient(GroqConfig{APIKey: "k"}); err == nil {
		t.Fatal("expected error for missing base URL")
	}
	if _, err := NewGroqClient(GroqConfig{BaseURL: "https://api.groq.com/openai"}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestGroqClientDefaults(t *testing.T) {
	client, err := NewGroqClient(GroqConfig{BaseURL: "https://api.groq.com/openai/", APIKey: "k"})
	if err != nil {
		t.Fatalf("NewGroqClient() error = %v", err)
	}
	if client.baseURL != "https://api.groq.com/openai" {
		t.Fatalf("baseURL = %q", client.baseURL)
	}
	if client.model != "llama-3.1-8b-instant" {
		t.Fatalf("model = %q", client.model)
	}
	if client.client.Timeout != 15*time.Second {
		t.Fatalf("timeout = %v", client.client.Timeout)
	}
}
