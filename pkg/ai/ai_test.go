package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubGenerator struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	i := s.calls
	s.calls++
	var resp string
	var err error
	if i < len(s.responses) {
		resp = s.responses[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return resp, err
}

func TestOllamaService_GenerateText(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"response":"{\"isWork\":true}","done":true}`))
	}))
	defer srv.Close()

	svc := NewOllamaService(srv.URL+"/", "mistral")
	out, err := svc.GenerateText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"isWork":true}` {
		t.Errorf("unexpected response %q", out)
	}
	if got["model"] != "mistral" || got["prompt"] != "hello" || got["stream"] != false {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestOllamaService_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaService(srv.URL, "").GenerateText(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestFallbackService_GeminiSucceeds(t *testing.T) {
	g := &stubGenerator{responses: []string{"gemini"}}
	o := &stubGenerator{responses: []string{"ollama"}}

	out, err := NewFallbackService(g, o, nil).GenerateText(context.Background(), "p")
	if err != nil || out != "gemini" {
		t.Fatalf("expected gemini result, got %q, %v", out, err)
	}
	if o.calls != 0 {
		t.Errorf("ollama should not be called, got %d calls", o.calls)
	}
}

func TestFallbackService_FallsBackToOllama(t *testing.T) {
	g := &stubGenerator{errs: []error{errors.New("Gemini API error: 500")}}
	o := &stubGenerator{responses: []string{"ollama"}}

	out, err := NewFallbackService(g, o, nil).GenerateText(context.Background(), "p")
	if err != nil || out != "ollama" {
		t.Fatalf("expected ollama result, got %q, %v", out, err)
	}
}

func TestFallbackService_RetriesGeminiAfterQuotaAndOllamaDown(t *testing.T) {
	g := &stubGenerator{
		responses: []string{"", "gemini-second"},
		errs:      []error{errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED"), nil},
	}
	o := &stubGenerator{errs: []error{errors.New("dial tcp 127.0.0.1:11434: connection refused")}}

	out, err := NewFallbackService(g, o, nil).GenerateText(context.Background(), "p")
	if err != nil || out != "gemini-second" {
		t.Fatalf("expected second gemini result, got %q, %v", out, err)
	}
	if g.calls != 2 {
		t.Errorf("expected 2 gemini calls, got %d", g.calls)
	}
}

func TestFallbackService_BothFail(t *testing.T) {
	g := &stubGenerator{errs: []error{errors.New("bad request")}}
	o := &stubGenerator{errs: []error{errors.New("model crashed")}}

	if _, err := NewFallbackService(g, o, nil).GenerateText(context.Background(), "p"); err == nil {
		t.Fatal("expected error when both providers fail")
	}
}

func TestNewTextGenerator(t *testing.T) {
	gen, err := NewTextGenerator(context.Background(), Config{Provider: ProviderOllama}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gen.(*OllamaService); !ok {
		t.Errorf("expected *OllamaService, got %T", gen)
	}

	gen, err = NewTextGenerator(context.Background(), Config{Provider: ProviderAuto}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gen.(*OllamaService); !ok {
		t.Errorf("auto without gemini key should use ollama, got %T", gen)
	}

	if _, err := NewTextGenerator(context.Background(), Config{Provider: ProviderGemini}, nil); err == nil {
		t.Error("expected error for gemini without api key")
	}
	if _, err := NewTextGenerator(context.Background(), Config{Provider: "openai"}, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}
