package shortlist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStructuredResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind ParseErrorKind
		check    func(t *testing.T, p *Payload)
	}{
		{
			name:  "bare object",
			input: `{"shortlistedCandidates":[{"candidateIndex":1,"score":75,"reasoning":" ok ","strengths":["a"," "],"gaps":[],"recommendation":"Interview"}],"bestCandidates":[1],"summary":" fine "}`,
			check: func(t *testing.T, p *Payload) {
				require.Len(t, p.ShortlistedCandidates, 1)
				got := p.ShortlistedCandidates[0]
				assert.Equal(t, 1, got.CandidateIndex)
				assert.Equal(t, 75, got.Score)
				assert.Equal(t, "ok", got.Reasoning)
				assert.Equal(t, []string{"a"}, got.Strengths)
				assert.Equal(t, []int{1}, p.BestCandidates)
				assert.Equal(t, "fine", p.Summary)
			},
		},
		{
			name:  "markdown fence",
			input: "```json\n{\"shortlistedCandidates\":[]}\n```",
			check: func(t *testing.T, p *Payload) {
				assert.Empty(t, p.ShortlistedCandidates)
				assert.Empty(t, p.BestCandidates)
			},
		},
		{
			name:  "wrapped in prose",
			input: `Sure! {"shortlistedCandidates":[{"candidateIndex":2,"score":140}]} Hope this helps.`,
			check: func(t *testing.T, p *Payload) {
				require.Len(t, p.ShortlistedCandidates, 1)
				assert.Equal(t, 100, p.ShortlistedCandidates[0].Score)
			},
		},
		{
			name:  "negative and null fields",
			input: `{"shortlistedCandidates":[{"candidateIndex":3,"score":-4,"reasoning":null,"gaps":null}],"bestCandidates":null}`,
			check: func(t *testing.T, p *Payload) {
				got := p.ShortlistedCandidates[0]
				assert.Equal(t, 0, got.Score)
				assert.Empty(t, got.Reasoning)
				assert.NotNil(t, got.Gaps)
			},
		},
		{name: "empty text", input: "", wantKind: ParseNoJSON},
		{name: "no braces", input: "candidate 2 is best", wantKind: ParseNoJSON},
		{name: "reversed braces", input: "} nothing {", wantKind: ParseNoJSON},
		{name: "truncated", input: `{"shortlistedCandidates": [{"candidateIndex": 1}`, wantKind: ParseInvalidJSON},
		{name: "two objects", input: `{"a":1} and {"b":2}`, wantKind: ParseInvalidJSON},
		{name: "missing list", input: `{"summary":"none"}`, wantKind: ParseSchemaMismatch},
		{name: "missing score", input: `{"shortlistedCandidates":[{"candidateIndex":1}]}`, wantKind: ParseSchemaMismatch},
		{name: "object score", input: `{"shortlistedCandidates":[{"candidateIndex":1,"score":{"v":1}}]}`, wantKind: ParseSchemaMismatch},
		{name: "non numeric score", input: `{"shortlistedCandidates":[{"candidateIndex":1,"score":"high"}]}`, wantKind: ParseSchemaMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := ParseStructuredResponse(tt.input)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Nil(t, payload)

				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, tt.wantKind, parseErr.Kind)
				assert.Contains(t, err.Error(), string(tt.wantKind))
				return
			}

			require.NoError(t, err)
			require.NotNil(t, payload)
			tt.check(t, payload)
		})
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-1))
	assert.Equal(t, 50, clampScore(49.5))
	assert.Equal(t, 49, clampScore(49.4))
	assert.Equal(t, 100, clampScore(100.4))
	assert.Equal(t, 100, clampScore(1e9))
}
