// Package scoring computes deterministic résumé-to-job compatibility scores
// and ranks open jobs for a candidate.
package scoring

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/talent"
)

// Component weights in percent. The buffer stands in for factors the engine does not model
// (education, certifications): a fixed score of 75 at 10% weight, i.e. +7.5 on every total.
const (
	SkillWeight      = 40
	ExperienceWeight = 30
	LocationWeight   = 20
	BufferWeight     = 10
	BufferScore      = 75
)

// Location scores.
const (
	locationExact       = 100
	locationUnspecified = 80
	locationHybrid      = 70
	locationMismatch    = 40
)

type Breakdown struct {
	Skills     int `json:"skills"`
	Experience int `json:"experience"`
	Location   int `json:"location"`
}

// MatchResult is the outcome of scoring one résumé against one job.
type MatchResult struct {
	TotalScore    int       `json:"totalScore"`
	Breakdown     Breakdown `json:"breakdown"`
	MatchedSkills []string  `json:"matchedSkills"`
	MissingSkills []string  `json:"missingSkills"`
}

func zeroResult() MatchResult {
	return MatchResult{MatchedSkills: []string{}, MissingSkills: []string{}}
}

// Calculator is stateless and safe for concurrent use.
type Calculator struct {
	logger *zap.Logger
}

func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger}
}

// CalculateMatchScore never fails: malformed input yields a zeroed result.
func (c *Calculator) CalculateMatchScore(resume *talent.ResumeProfile, job *talent.JobPosting) MatchResult {
	result, err := c.calculate(resume, job)
	if err != nil {
		c.logger.Warn("match score calculation failed, returning zero score", zap.Error(err))
		return zeroResult()
	}
	return result
}

func (c *Calculator) calculate(resume *talent.ResumeProfile, job *talent.JobPosting) (result MatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()

	if resume == nil {
		return zeroResult(), fmt.Errorf("resume is required")
	}
	if job == nil {
		return zeroResult(), fmt.Errorf("job is required")
	}

	skills := matchSkills(resume.Skills, job.RequiredSkills)
	experience := ExperienceMatch(resume.YearsOfExperience(), job.ExperienceLevel.RequiredYears())
	location := LocationMatch(resume.Location, job.Location, job.LocationType)

	return MatchResult{
		TotalScore: Total(skills.score(), experience, location),
		Breakdown: Breakdown{
			Skills:     skills.score(),
			Experience: experience,
			Location:   location,
		},
		MatchedSkills: skills.matched,
		MissingSkills: skills.missing,
	}, nil
}

// Total combines the component scores with the fixed weights and the buffer term.
func Total(skills, experience, location int) int {
	weighted := skills*SkillWeight + experience*ExperienceWeight + location*LocationWeight + BufferScore*BufferWeight
	return roundRatio(weighted, 100)
}

type skillMatch struct {
	required int
	matched  []string
	missing  []string
}

func (m skillMatch) score() int {
	if m.required == 0 {
		return 100
	}
	return roundRatio(len(m.matched)*100, m.required)
}

// matchSkills runs the containment rule once; the score and both lists derive from it.
// Blank tags are ignored on both sides.
func matchSkills(candidate, required talent.SkillSet) skillMatch {
	have := candidate.Normalized()
	m := skillMatch{matched: []string{}, missing: []string{}}

	for _, skill := range required {
		needle := talent.FoldSkill(skill)
		if needle == "" {
			continue
		}
		m.required++

		if containsEither(needle, have) {
			m.matched = append(m.matched, skill)
		} else {
			m.missing = append(m.missing, skill)
		}
	}

	return m
}

// containsEither reports whether required contains one of the candidate skills or the other way round.
// This admits abbreviations ("react" vs "reactjs") and also false positives ("c" vs "c++").
func containsEither(required string, candidate []string) bool {
	for _, skill := range candidate {
		if strings.Contains(required, skill) || strings.Contains(skill, required) {
			return true
		}
	}
	return false
}

// SkillMatch returns the share of required skills covered by the candidate, 0-100.
// No requirements means full credit.
func SkillMatch(candidate, required talent.SkillSet) int {
	return matchSkills(candidate, required).score()
}

// ExperienceMatch gives linear partial credit below the required years.
func ExperienceMatch(candidateYears, requiredYears int) int {
	switch {
	case requiredYears <= 0:
		return 100
	case candidateYears >= requiredYears:
		return 100
	case candidateYears <= 0:
		return 0
	default:
		return roundRatio(candidateYears*100, requiredYears)
	}
}

func LocationMatch(candidate, job string, locationType talent.LocationType) int {
	candidate = strings.TrimSpace(candidate)
	job = strings.TrimSpace(job)
	kind := locationType.Normalize()

	switch {
	case kind == talent.Remote:
		return 100
	case job == "":
		return locationUnspecified
	case strings.EqualFold(candidate, job):
		return locationExact
	case kind == talent.Hybrid:
		return locationHybrid
	default:
		return locationMismatch
	}
}

// roundRatio rounds num/den half up. Both arguments are non-negative.
func roundRatio(num, den int) int {
	if den <= 0 {
		return 0
	}
	return (2*num + den) / (2 * den)
}
