package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMistralClientGenerate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer test-key", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  grounded answer  "}},
			},
		})
	}))
	defer srv.Close()

	client := NewMistralClient(srv.URL, "test-key", "mistral-large-latest", 5*time.Second)
	text, err := client.Generate(context.Background(), []ChatMessage{
		{Role: "system", Content: "ground"},
		{Role: "user", Content: "hi"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "grounded answer" {
		t.Fatalf("Generate = %q, want trimmed content", text)
	}
	if got.Model != "mistral-large-latest" {
		t.Fatalf("request model = %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("unexpected request messages: %+v", got.Messages)
	}
}

func TestMistralClientGenerateErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "rate limited"}})
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			client := NewMistralClient(srv.URL, "", "m", 5*time.Second)
			if _, err := client.Generate(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
