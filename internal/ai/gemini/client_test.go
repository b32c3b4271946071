package gemini

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	mu        sync.Mutex
	responses []*genai.GenerateContentResponse
	errs      []error
	configs   []*genai.GenerateContentConfig
	models    []string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := len(f.configs)
	f.configs = append(f.configs, config)
	f.models = append(f.models, model)

	var resp *genai.GenerateContentResponse
	if call < len(f.responses) {
		resp = f.responses[call]
	}
	var err error
	if call < len(f.errs) {
		err = f.errs[call]
	}
	return resp, err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGenerateContentUsesPurposeAsSystemInstruction(t *testing.T) {
	models := &fakeModels{responses: []*genai.GenerateContentResponse{textResponse(`{"a":`, ` 1}`)}}
	g := &Generator{models: models, modelName: "gemini-test"}

	output, err := g.GenerateContent(context.Background(), "rank", "recruiter-shortlisting")
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":\n1}", output)

	require.Len(t, models.configs, 1)
	cfg := models.configs[0]
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Contains(t, cfg.SystemInstruction.Parts[0].Text, "recruiter-shortlisting")
	assert.Equal(t, []string{"gemini-test"}, models.models)
}

func TestGenerateContentReturnsAPIErrorsWithoutRetrying(t *testing.T) {
	models := &fakeModels{errs: []error{genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}}}
	g := &Generator{models: models, modelName: "gemini-test"}

	_, err := g.GenerateContent(context.Background(), "rank", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate content")
	assert.Len(t, models.configs, 1)
}

func TestGenerateContentRejectsEmptyAnswers(t *testing.T) {
	models := &fakeModels{responses: []*genai.GenerateContentResponse{textResponse("  ")}}
	g := &Generator{models: models, modelName: "gemini-test"}

	_, err := g.GenerateContent(context.Background(), "rank", "")
	require.Error(t, err)

	_, err = g.GenerateContent(context.Background(), "   ", "")
	require.Error(t, err)
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), "  ", "")
	require.Error(t, err)
}
