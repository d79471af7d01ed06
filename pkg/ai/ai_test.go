package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaimeStill/caduceus/pkg/ai"
)

func TestOpenAICompatGenerate(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s, want /v1/chat/completions", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Monitor temperature.  "}}]}`))
	}))
	defer srv.Close()

	g := ai.NewOpenAICompat(srv.URL+"/v1/", "secret", "test-model", time.Second)
	text, err := g.Generate(context.Background(), "system", "fever for 3 days")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if text != "Monitor temperature." {
		t.Errorf("text = %q, want trimmed response", text)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Errorf("model = %v, want test-model", gotBody["model"])
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Errorf("messages = %d, want 2", len(msgs))
	}
}

func TestOpenAICompatErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error message", http.StatusBadRequest, `{"error":{"message":"bad model"}}`},
		{"server error", http.StatusInternalServerError, ``},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g := ai.NewOpenAICompat(srv.URL, "", "m", time.Second)
			_, err := g.Generate(context.Background(), "", "q")
			if !errors.Is(err, ai.ErrUnavailable) {
				t.Errorf("err = %v, want ErrUnavailable", err)
			}
		})
	}
}

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s, want /api/chat", r.URL.Path)
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["stream"] != false {
			t.Errorf("stream = %v, want false", req["stream"])
		}
		w.Write([]byte(`{"message":{"role":"assistant","content":"{\"category\":\"cardiology\"}"}}`))
	}))
	defer srv.Close()

	g := ai.NewOllama(srv.URL, "llama3", time.Second)
	text, err := g.Generate(context.Background(), "sys", "chest pain")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != `{"category":"cardiology"}` {
		t.Errorf("text = %q", text)
	}
}

func TestOllamaStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	g := ai.NewOllama(srv.URL, "missing", time.Second)
	if _, err := g.Generate(context.Background(), "", "q"); !errors.Is(err, ai.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestGenerateHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	g := ai.NewOpenAICompat(srv.URL, "", "m", time.Minute)
	if _, err := g.Generate(ctx, "", "q"); err == nil {
		t.Fatal("expected error after context deadline")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ai.Config
		wantErr  bool
		disabled bool
	}{
		{"openai", ai.Config{Provider: ai.ProviderOpenAI, BaseURL: "http://x/v1", Model: "m"}, false, false},
		{"ollama", ai.Config{Provider: ai.ProviderOllama, Model: "m"}, false, false},
		{"gemini", ai.Config{Provider: ai.ProviderGemini, APIKey: "k", Model: "gemini-2.0-flash"}, false, false},
		{"none", ai.Config{Provider: ai.ProviderNone}, false, true},
		{"unknown", ai.Config{Provider: "anthropic"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ai.New(&tt.cfg)
			if tt.wantErr {
				if !errors.Is(err, ai.ErrInvalidProvider) {
					t.Errorf("err = %v, want ErrInvalidProvider", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if tt.disabled {
				if _, err := g.Generate(context.Background(), "", "q"); !errors.Is(err, ai.ErrUnavailable) {
					t.Errorf("disabled generator err = %v", err)
				}
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	env := &ai.Env{Provider: "TEST_AI_PROVIDER", Model: "TEST_AI_MODEL"}

	t.Run("defaults to disabled", func(t *testing.T) {
		var cfg ai.Config
		if err := cfg.Finalize(env); err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if cfg.Provider != ai.ProviderNone {
			t.Errorf("provider = %s, want none", cfg.Provider)
		}
		if cfg.RequestTimeoutDuration() != 2*time.Minute {
			t.Errorf("timeout = %v, want 2m", cfg.RequestTimeoutDuration())
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_AI_PROVIDER", "ollama")
		t.Setenv("TEST_AI_MODEL", "llama3")
		var cfg ai.Config
		if err := cfg.Finalize(env); err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if cfg.Provider != "ollama" || cfg.Model != "llama3" {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("gemini needs a key", func(t *testing.T) {
		cfg := ai.Config{Provider: ai.ProviderGemini, Model: "gemini-2.0-flash"}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("model required", func(t *testing.T) {
		cfg := ai.Config{Provider: ai.ProviderOllama}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestGeminiGenerate(t *testing.T) {
	var gotKey, gotPath string
	var gotBody struct {
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		SystemInstruction *struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"systemInstruction"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Rest and "},{"text":"hydrate."}]}}]}`))
	}))
	defer srv.Close()

	g := ai.NewGemini(srv.URL, "key-123", "models/gemini-2.0-flash", time.Second)
	text, err := g.Generate(context.Background(), "You are a triage assistant.", "sore throat")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if text != "Rest and hydrate." {
		t.Errorf("text = %q, want joined parts", text)
	}
	if gotPath != "/models/gemini-2.0-flash:generateContent" {
		t.Errorf("path = %s", gotPath)
	}
	if gotKey != "key-123" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotBody.SystemInstruction == nil || gotBody.SystemInstruction.Parts[0].Text != "You are a triage assistant." {
		t.Error("system prompt not sent as systemInstruction")
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Role != "user" || gotBody.Contents[0].Parts[0].Text != "sore throat" {
		t.Errorf("contents = %+v", gotBody.Contents)
	}
}

func TestGeminiErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error message", http.StatusForbidden, `{"error":{"message":"API key not valid"}}`},
		{"no candidates", http.StatusOK, `{"candidates":[]}`},
		{"blank text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":" "}]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g := ai.NewGemini(srv.URL, "k", "m", time.Second)
			if _, err := g.Generate(context.Background(), "", "q"); !errors.Is(err, ai.ErrUnavailable) {
				t.Errorf("err = %v, want ErrUnavailable", err)
			}
		})
	}
}
