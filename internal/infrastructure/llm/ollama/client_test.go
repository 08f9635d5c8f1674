package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEmbedSendsBatchAndParsesVectors(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode embed request: %v", err)
		}
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2],[0.3,0.4]]}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen-model", "embed-model"))
	vectors, err := embedder.Embed(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 2 || vectors[1][0] != 0.3 {
		t.Fatalf("unexpected vectors: %#v", vectors)
	}
	if captured["model"] != "embed-model" {
		t.Fatalf("expected embed model, got %v", captured["model"])
	}
}

func TestEmbedEmptyInputSkipsRequest(t *testing.T) {
	embedder := NewEmbedder(New("http://unreachable.invalid", "g", "e"))
	vectors, err := embedder.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if vectors != nil {
		t.Fatalf("expected no vectors, got %#v", vectors)
	}
}

func TestGenerateUsesCustomPrompt(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode generate request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"  the answer \n"}`))
	}))
	defer server.Close()

	generator := NewGenerator(New(server.URL, "gen-model", "embed-model"))
	answer, err := generator.Generate(context.Background(), "what is it", []string{"context chunk"}, "answer in one word")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if answer != "the answer" {
		t.Fatalf("expected trimmed answer, got %q", answer)
	}
	if captured["system"] != "answer in one word" {
		t.Fatalf("custom prompt must replace system prompt, got %v", captured["system"])
	}
	prompt, _ := captured["prompt"].(string)
	if !strings.Contains(prompt, "context chunk") || !strings.Contains(prompt, "what is it") {
		t.Fatalf("prompt must carry context and question, got %q", prompt)
	}
	if captured["stream"] != false {
		t.Fatalf("streaming must be disabled, got %v", captured["stream"])
	}
}

func TestGenerateIncludesResponseBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	generator := NewGenerator(New(server.URL, "gen-model", "embed-model"))
	_, err := generator.Generate(context.Background(), "q", nil, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected body in error, got %v", err)
	}
}

func TestSystemPromptFallsBackToDefault(t *testing.T) {
	if got := systemPrompt("   "); got != defaultSystemPrompt {
		t.Fatalf("blank custom prompt must fall back to the default")
	}
	if got := systemPrompt("custom"); got != "custom" {
		t.Fatalf("expected custom prompt, got %q", got)
	}
}

func TestBuildUserPromptWithoutContext(t *testing.T) {
	prompt := buildUserPrompt("anything relevant?", nil)
	if !strings.Contains(prompt, "No relevant context found.") {
		t.Fatalf("expected empty-context marker, got %q", prompt)
	}
}
