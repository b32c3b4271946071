// Package shortlist ranks the applications for one job. It asks the model for a
// structured verdict and falls back to heuristic match scores whenever the model
// is unavailable or its answer cannot be parsed.
package shortlist

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/ai"
	"github.com/spigell/talent-matcher/internal/logger"
	"github.com/spigell/talent-matcher/internal/metrics"
	"github.com/spigell/talent-matcher/internal/scoring"
	"github.com/spigell/talent-matcher/internal/talent"
)

const (
	DefaultTopN = 5
	// FallbackRecommendation marks entries ranked by heuristic score only.
	FallbackRecommendation = "To be reviewed"
)

// Entry is an application annotated with its shortlisting verdict.
type Entry struct {
	Application    *talent.Application `json:"application"`
	AIScore        int                 `json:"aiScore"`
	AIReasoning    string              `json:"aiReasoning"`
	AIStrengths    []string            `json:"aiStrengths"`
	AIGaps         []string            `json:"aiGaps"`
	Recommendation string              `json:"recommendation"`
	IsShortlisted  bool                `json:"isShortlisted"`
}

type Shortlister struct {
	gateway       ai.Gateway
	calculator    *scoring.Calculator
	logger        *zap.Logger
	maxFieldRunes int
}

type Option func(*Shortlister)

// WithMaxFieldRunes bounds free-text fields in the prompt. Non-positive values keep the default.
func WithMaxFieldRunes(n int) Option {
	return func(s *Shortlister) {
		if n > 0 {
			s.maxFieldRunes = n
		}
	}
}

// NewShortlister wires the gateway and calculator. A nil gateway means every run uses the fallback ranking.
func NewShortlister(gateway ai.Gateway, calculator *scoring.Calculator, log *zap.Logger, opts ...Option) *Shortlister {
	if log == nil {
		log = zap.NewNop()
	}
	if gateway == nil {
		gateway = ai.Disabled("no ai gateway configured")
	}
	if calculator == nil {
		calculator = scoring.NewCalculator(log)
	}

	s := &Shortlister{
		gateway:       gateway,
		calculator:    calculator,
		logger:        log,
		maxFieldRunes: DefaultMaxFieldRunes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AIShortlistCandidates returns at most topN entries, best first. It makes at most one gateway call
// and never fails: any problem on the AI path yields the score-based ranking instead.
func (s *Shortlister) AIShortlistCandidates(ctx context.Context, applications []*talent.Application, job *talent.JobPosting, topN int) (entries []Entry) {
	if len(applications) == 0 {
		metrics.ShortlistRuns.WithLabelValues(metrics.PathEmpty).Inc()
		return []Entry{}
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	log := logger.WithRun(s.logger, uuid.NewString(), jobID(job))
	log.Info("shortlisting candidates",
		zap.Int("applications", len(applications)),
		zap.Int("top_n", topN),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("shortlisting panicked, using score-based ranking", zap.Any("panic", r))
			entries = s.fallback(log, applications, job, topN)
		}
	}()

	payload, err := s.askModel(ctx, log, applications, job)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			log.Warn("ai response could not be parsed, using score-based ranking",
				zap.String("kind", string(parseErr.Kind)),
				zap.Error(err),
			)
		} else {
			log.Info("ai unavailable, using score-based ranking", zap.Error(err))
		}
		return s.fallback(log, applications, job, topN)
	}

	entries = s.merge(applications, job, payload)
	metrics.ShortlistRuns.WithLabelValues(metrics.PathAI).Inc()

	if payload.Summary != "" {
		log.Info("ai shortlist summary", zap.String("summary", payload.Summary))
	}
	log.Info("shortlist ranked by ai",
		zap.Int("assessed", len(payload.ShortlistedCandidates)),
		zap.Ints("best_candidates", payload.BestCandidates),
	)

	return rank(entries, topN)
}

func (s *Shortlister) askModel(ctx context.Context, log *zap.Logger, applications []*talent.Application, job *talent.JobPosting) (*Payload, error) {
	if job == nil {
		return nil, errors.New("job is required for ai shortlisting")
	}

	prompt := buildPrompt(applications, job, s.maxFieldRunes)
	log.Debug("shortlist prompt built", zap.Int("prompt_length", len(prompt)))

	completion := s.gateway.Complete(ctx, prompt, Purpose)
	if !completion.Success {
		return nil, fmt.Errorf("ai gateway: %s", completion.Error)
	}

	return ParseStructuredResponse(completion.Response)
}

// merge walks the applications in input order. Candidates the model skipped get their heuristic score.
func (s *Shortlister) merge(applications []*talent.Application, job *talent.JobPosting, payload *Payload) []Entry {
	byIndex := make(map[int]Assessment, len(payload.ShortlistedCandidates))
	for _, assessment := range payload.ShortlistedCandidates {
		if _, seen := byIndex[assessment.CandidateIndex]; !seen {
			byIndex[assessment.CandidateIndex] = assessment
		}
	}

	best := make(map[int]struct{}, len(payload.BestCandidates))
	for _, idx := range payload.BestCandidates {
		best[idx] = struct{}{}
	}

	entries := make([]Entry, 0, len(applications))
	for i, application := range applications {
		position := i + 1

		var entry Entry
		if assessment, ok := byIndex[position]; ok {
			entry = Entry{
				Application:    application,
				AIScore:        assessment.Score,
				AIReasoning:    assessment.Reasoning,
				AIStrengths:    assessment.Strengths,
				AIGaps:         assessment.Gaps,
				Recommendation: assessment.Recommendation,
			}
		} else {
			entry = s.scoreOnly(application, job)
		}

		_, entry.IsShortlisted = best[position]
		entries = append(entries, entry)
	}

	return entries
}

func (s *Shortlister) fallback(log *zap.Logger, applications []*talent.Application, job *talent.JobPosting, topN int) []Entry {
	entries := make([]Entry, 0, len(applications))
	for _, application := range applications {
		entries = append(entries, s.scoreOnly(application, job))
	}

	metrics.ShortlistRuns.WithLabelValues(metrics.PathFallback).Inc()
	log.Info("shortlist ranked by match score", zap.Int("candidates", len(entries)))

	return rank(entries, topN)
}

func (s *Shortlister) scoreOnly(application *talent.Application, job *talent.JobPosting) Entry {
	var resume *talent.ResumeProfile
	if application != nil {
		resume = application.Resume
	}

	return Entry{
		Application:    application,
		AIScore:        s.calculator.CalculateMatchScore(resume, job).TotalScore,
		AIStrengths:    []string{},
		AIGaps:         []string{},
		Recommendation: FallbackRecommendation,
	}
}

func rank(entries []Entry, topN int) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AIScore > entries[j].AIScore
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}

func jobID(job *talent.JobPosting) string {
	if job == nil {
		return ""
	}
	return job.ID
}
