package shortlist

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/talent-matcher/internal/talent"
	"github.com/spigell/talent-matcher/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

// Purpose is passed to the gateway with every shortlisting prompt.
const Purpose = "recruiter-shortlisting"

// DefaultMaxFieldRunes caps free-text fields (descriptions, summaries) in the prompt.
const DefaultMaxFieldRunes = 1500

func buildPrompt(applications []*talent.Application, job *talent.JobPosting, maxFieldRunes int) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job:\n{{JOB}}\n\nCandidates:\n{{CANDIDATES}}\n\nJSON Response:"
	}

	prompt := strings.ReplaceAll(template, "{{JOB}}", describeJob(job, maxFieldRunes))
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE_COUNT}}", strconv.Itoa(len(applications)))
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATES}}", describeCandidates(applications, maxFieldRunes))
	return prompt
}

func describeJob(job *talent.JobPosting, maxFieldRunes int) string {
	var b strings.Builder
	line(&b, "Title", job.Title)
	line(&b, "Company", job.Company)
	line(&b, "Description", utils.TruncateRunes(strings.TrimSpace(job.Description), maxFieldRunes))
	line(&b, "Required skills", strings.Join(job.RequiredSkills, ", "))
	line(&b, "Experience level", string(job.ExperienceLevel))

	location := strings.TrimSpace(job.Location)
	if kind := job.LocationType.Normalize(); kind != "" {
		if location == "" {
			location = string(kind)
		} else {
			location = fmt.Sprintf("%s (%s)", location, kind)
		}
	}
	line(&b, "Location", location)

	return strings.TrimRight(b.String(), "\n")
}

func describeCandidates(applications []*talent.Application, maxFieldRunes int) string {
	var b strings.Builder
	for idx, application := range applications {
		if idx > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Candidate %d:\n", idx+1)

		if application == nil {
			b.WriteString("- No application data\n")
			continue
		}

		line(&b, "Name", application.CandidateName)

		resume := application.Resume
		if resume == nil {
			b.WriteString("- No resume provided\n")
			continue
		}

		line(&b, "Skills", strings.Join(resume.Skills, ", "))
		line(&b, "Experience", joinEntries(resume.Experience))
		line(&b, "Education", joinEntries(resume.Education))
		line(&b, "Location", resume.Location)
		line(&b, "Summary", utils.TruncateRunes(strings.TrimSpace(resume.Summary), maxFieldRunes))
	}
	return strings.TrimRight(b.String(), "\n")
}

func joinEntries[T fmt.Stringer](entries []T) string {
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if s := strings.TrimSpace(entry.String()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "; ")
}

func line(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = "not specified"
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}
