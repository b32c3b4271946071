package scoring

import (
	"sort"

	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/metrics"
	"github.com/spigell/talent-matcher/internal/talent"
)

// MinRecommendationScore is the floor below which a job is never recommended.
const MinRecommendationScore = 40

type Recommendation struct {
	Job   *talent.JobPosting `json:"job"`
	Match MatchResult        `json:"matchData"`
}

type Recommender struct {
	calculator *Calculator
	logger     *zap.Logger
}

func NewRecommender(calculator *Calculator, logger *zap.Logger) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calculator == nil {
		calculator = NewCalculator(logger)
	}
	return &Recommender{calculator: calculator, logger: logger}
}

// GetRecommendedJobs scores every job, drops those under MinRecommendationScore and
// returns the rest best first. Equal scores keep their input order.
// Jobs that cannot be scored are logged and skipped.
func (r *Recommender) GetRecommendedJobs(resume *talent.ResumeProfile, jobs []*talent.JobPosting) []Recommendation {
	recommendations := make([]Recommendation, 0, len(jobs))

	for idx, job := range jobs {
		match, err := r.calculator.calculate(resume, job)
		if err != nil {
			fields := []zap.Field{zap.Int("position", idx), zap.Error(err)}
			if job != nil {
				fields = append(fields, zap.String("job_id", job.ID))
			}
			r.logger.Warn("skipping job that could not be scored", fields...)
			continue
		}

		if match.TotalScore < MinRecommendationScore {
			r.logger.Debug("job below recommendation floor",
				zap.String("job_id", job.ID),
				zap.Int("score", match.TotalScore),
			)
			continue
		}

		recommendations = append(recommendations, Recommendation{Job: job, Match: match})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Match.TotalScore > recommendations[j].Match.TotalScore
	})

	metrics.Recommendations.Add(float64(len(recommendations)))

	r.logger.Debug("recommendations computed",
		zap.Int("jobs", len(jobs)),
		zap.Int("recommended", len(recommendations)),
	)

	return recommendations
}
