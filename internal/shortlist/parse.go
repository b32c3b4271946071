package shortlist

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var payloadSchemaJSON string

var payloadSchema = gojsonschema.NewStringLoader(payloadSchemaJSON)

type ParseErrorKind string

const (
	ParseNoJSON         ParseErrorKind = "no_json"
	ParseInvalidJSON    ParseErrorKind = "invalid_json"
	ParseSchemaMismatch ParseErrorKind = "schema_mismatch"
)

// ParseError is the expected failure of ParseStructuredResponse. It sends the shortlister to the fallback ranking.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse ai response: %s", e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Assessment is the model's verdict on one candidate.
type Assessment struct {
	CandidateIndex int
	Score          int
	Reasoning      string
	Strengths      []string
	Gaps           []string
	Recommendation string
}

type Payload struct {
	ShortlistedCandidates []Assessment
	BestCandidates        []int
	Summary               string
}

type rawAssessment struct {
	CandidateIndex int      `mapstructure:"candidateIndex"`
	Score          float64  `mapstructure:"score"`
	Reasoning      string   `mapstructure:"reasoning"`
	Strengths      []string `mapstructure:"strengths"`
	Gaps           []string `mapstructure:"gaps"`
	Recommendation string   `mapstructure:"recommendation"`
}

type rawPayload struct {
	ShortlistedCandidates []rawAssessment `mapstructure:"shortlistedCandidates"`
	BestCandidates        []int           `mapstructure:"bestCandidates"`
	Summary               string          `mapstructure:"summary"`
}

// ParseStructuredResponse pulls the shortlist object out of free model text.
// Any returned error is a *ParseError.
func ParseStructuredResponse(text string) (*Payload, error) {
	candidate, ok := extractJSON(text)
	if !ok {
		return nil, &ParseError{Kind: ParseNoJSON, Detail: "response holds no JSON object"}
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		return nil, &ParseError{Kind: ParseInvalidJSON, Err: err}
	}

	if err := validatePayload(doc); err != nil {
		return nil, err
	}

	var raw rawPayload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, &ParseError{Kind: ParseSchemaMismatch, Err: err}
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, &ParseError{Kind: ParseSchemaMismatch, Err: err}
	}

	payload := &Payload{
		ShortlistedCandidates: make([]Assessment, 0, len(raw.ShortlistedCandidates)),
		BestCandidates:        raw.BestCandidates,
		Summary:               strings.TrimSpace(raw.Summary),
	}
	for _, item := range raw.ShortlistedCandidates {
		payload.ShortlistedCandidates = append(payload.ShortlistedCandidates, Assessment{
			CandidateIndex: item.CandidateIndex,
			Score:          clampScore(item.Score),
			Reasoning:      strings.TrimSpace(item.Reasoning),
			Strengths:      cleanList(item.Strengths),
			Gaps:           cleanList(item.Gaps),
			Recommendation: strings.TrimSpace(item.Recommendation),
		})
	}

	return payload, nil
}

func validatePayload(doc map[string]any) error {
	result, err := gojsonschema.Validate(payloadSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ParseError{Kind: ParseSchemaMismatch, Detail: "schema validation could not run", Err: err}
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		problems = append(problems, fmt.Sprintf("%s: %s", field, desc.Description()))
	}

	return &ParseError{Kind: ParseSchemaMismatch, Detail: strings.Join(problems, "; ")}
}

// extractJSON strips markdown fences, then takes the first '{' through the last '}'.
func extractJSON(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

func clampScore(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	rounded := math.Round(score)
	switch {
	case rounded < 0:
		return 0
	case rounded > 100:
		return 100
	default:
		return int(rounded)
	}
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
