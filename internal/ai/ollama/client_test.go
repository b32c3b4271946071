package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeneratorSendsRequestAndReturnsResponse(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != generatePath {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(`{"model":"tiny","response":" {\"ok\":true} ","done":true}`))
	}))
	defer server.Close()

	g := NewGenerator(server.URL+"/", "tiny")

	output, err := g.GenerateContent(context.Background(), "rank these", "recruiter-shortlisting")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output != `{"ok":true}` {
		t.Fatalf("unexpected output: %q", output)
	}

	if got.Model != "tiny" || got.Prompt != "rank these" || got.Stream {
		t.Fatalf("unexpected request: %+v", got)
	}
	if !strings.Contains(got.System, "recruiter-shortlisting") {
		t.Fatalf("purpose missing from system prompt: %q", got.System)
	}
}

func TestGeneratorReportsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewGenerator(server.URL, "").GenerateContent(context.Background(), "p", "")
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGeneratorRejectsMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	if _, err := NewGenerator(server.URL, "").GenerateContent(context.Background(), "p", ""); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestGeneratorRejectsEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":"   ","done":true}`))
	}))
	defer server.Close()

	if _, err := NewGenerator(server.URL, "").GenerateContent(context.Background(), "p", ""); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestNewGeneratorDefaults(t *testing.T) {
	g := NewGenerator("  ", " ")
	if g.baseURL != DefaultBaseURL {
		t.Fatalf("unexpected base url: %s", g.baseURL)
	}
	if g.Model() != defaultModel {
		t.Fatalf("unexpected model: %s", g.Model())
	}
}
