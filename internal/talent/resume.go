package talent

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// SkillSet is a list of free-text skill tags. Comparison is case-insensitive and order does not matter.
type SkillSet []string

// FoldSkill trims a tag and applies Unicode case folding, so "STRASSE" and "Straße" compare equal.
// A Caser is stateful, hence one per call.
func FoldSkill(skill string) string {
	return cases.Fold().String(strings.TrimSpace(skill))
}

// Normalized returns the folded, non-blank tags in their original order.
func (s SkillSet) Normalized() []string {
	out := make([]string, 0, len(s))
	for _, skill := range s {
		skill = FoldSkill(skill)
		if skill == "" {
			continue
		}
		out = append(out, skill)
	}
	return out
}

type ExperienceEntry struct {
	Title   string `json:"title,omitempty" mapstructure:"title"`
	Company string `json:"company,omitempty" mapstructure:"company"`
}

func (e ExperienceEntry) String() string {
	switch {
	case e.Title != "" && e.Company != "":
		return fmt.Sprintf("%s at %s", e.Title, e.Company)
	case e.Title != "":
		return e.Title
	default:
		return e.Company
	}
}

type EducationEntry struct {
	Degree string `json:"degree,omitempty" mapstructure:"degree"`
	Field  string `json:"field,omitempty" mapstructure:"field"`
}

func (e EducationEntry) String() string {
	switch {
	case e.Degree != "" && e.Field != "":
		return fmt.Sprintf("%s in %s", e.Degree, e.Field)
	case e.Degree != "":
		return e.Degree
	default:
		return e.Field
	}
}

type ResumeProfile struct {
	Skills     SkillSet          `json:"skills,omitempty" mapstructure:"skills"`
	Experience []ExperienceEntry `json:"experience,omitempty" mapstructure:"experience"`
	Education  []EducationEntry  `json:"education,omitempty" mapstructure:"education"`
	Location   string            `json:"location,omitempty" mapstructure:"location"`
	Summary    string            `json:"summary,omitempty" mapstructure:"summary"`
}

// YearsOfExperience uses the number of work entries as a proxy for years.
func (r *ResumeProfile) YearsOfExperience() int {
	if r == nil {
		return 0
	}
	return len(r.Experience)
}

type Application struct {
	ID            string         `json:"id" mapstructure:"id" validate:"required"`
	CandidateName string         `json:"candidateName,omitempty" mapstructure:"candidateName"`
	Resume        *ResumeProfile `json:"resume,omitempty" mapstructure:"resume"`
}
