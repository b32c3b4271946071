package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spigell/talent-matcher/internal/utils"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.1"
	generatePath   = "/api/generate"
	contentType    = "application/json"
	// Max bytes of an error body kept in the returned error.
	errorBodyLimit = 300
)

// Generator talks to a self-hosted model server over its generate endpoint.
type Generator struct {
	baseURL    string
	model      string
	HTTPClient *http.Client
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Format string `json:"format,omitempty"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewGenerator returns a generator for the server at baseURL. The HTTP client has no
// timeout of its own: the gateway bounds every call through the context.
func NewGenerator(baseURL, model string) *Generator {
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Generator{
		baseURL:    baseURL,
		model:      model,
		HTTPClient: &http.Client{},
	}
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// GenerateContent posts the prompt and returns the model text. The purpose travels as the system prompt.
func (g *Generator) GenerateContent(ctx context.Context, prompt, purpose string) (string, error) {
	if g == nil || g.HTTPClient == nil {
		return "", errors.New("ollama generator is not initialized")
	}

	body, err := json.Marshal(generateRequest{
		Model:  g.model,
		Prompt: prompt,
		System: systemPrompt(purpose),
		Format: "json",
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("bad status: %s: %s", resp.Status, utils.TruncateForLog(string(data), errorBodyLimit))
	}

	var payload generateResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}

	if payload.Error != "" {
		return "", fmt.Errorf("model server error: %s", payload.Error)
	}

	output := strings.TrimSpace(payload.Response)
	if output == "" {
		return "", errors.New("model server returned empty response")
	}

	return output, nil
}

func systemPrompt(purpose string) string {
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return ""
	}
	return fmt.Sprintf("Task context: %s. Respond with JSON only.", purpose)
}
