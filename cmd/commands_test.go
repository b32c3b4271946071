package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/ai"
	"github.com/spigell/talent-matcher/internal/scoring"
	"github.com/spigell/talent-matcher/internal/shortlist"
	"github.com/spigell/talent-matcher/internal/talent"
)

const jobsJSON = `[
  {"id": "j1", "title": "Backend Engineer", "company": "Acme", "requiredSkills": ["Python", "Docker"],
   "experienceLevel": "mid-level", "location": "Berlin", "locationType": "on-site"},
  {"id": "j2", "title": "Data Engineer", "company": "Globex", "requiredSkills": ["SQL"],
   "experienceLevel": "entry-level", "locationType": "remote"},
  {"id": "j3", "title": "Lead Architect", "company": "Initech", "requiredSkills": ["Rust", "Kubernetes"],
   "experienceLevel": "lead", "location": "Tokyo", "locationType": "on-site"},
  {"id": "j4", "title": "Old Posting", "company": "Hooli", "requiredSkills": ["Python"], "status": "closed"}
]`

const resumeJSON = `{
  "skills": ["Python", "SQL"],
  "experience": [{"title": "Dev", "company": "A"}, {"title": "Dev", "company": "B"}, {"title": "Dev", "company": "C"}],
  "location": "Berlin"
}`

const applicationsJSON = `{"items": [
  {"id": "app-1", "candidateName": "Ann", "resume": {"skills": ["SQL"], "location": "Munich"}},
  {"id": "app-2", "candidateName": "Bob", "resume": ` + resumeJSON + `}
]}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunScore(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.json", resumeJSON)
	jobs := writeFile(t, dir, "jobs.json", jobsJSON)

	var out bytes.Buffer
	require.NoError(t, runScore(zap.NewNop(), resume, jobs, "j1", &out))

	var result scoring.MatchResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, 78, result.TotalScore)
	assert.Equal(t, []string{"Python"}, result.MatchedSkills)
	assert.Equal(t, []string{"Docker"}, result.MissingSkills)

	assert.Error(t, runScore(zap.NewNop(), resume, jobs, "", &out), "ambiguous catalog needs a job id")
	assert.Error(t, runScore(zap.NewNop(), resume, jobs, "nope", &out))
}

func TestRunRecommendFiltersAndRemembers(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.json", resumeJSON)
	jobs := writeFile(t, dir, "jobs.json", jobsJSON)
	excludeFile := filepath.Join(dir, "excluded.json")

	cfg := &RecommendConfig{ExcludeFile: excludeFile, Concurrency: 2}
	opts := recommendOptions{resumes: []string{resume, resume}, jobsPath: jobs, remember: true}

	var out bytes.Buffer
	require.NoError(t, runRecommend(context.Background(), zap.NewNop(), cfg, opts, &out))

	var results []resumeRecommendations
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 2)

	ids := func(recs []scoring.Recommendation) []string {
		out := make([]string, 0, len(recs))
		for _, rec := range recs {
			out = append(out, rec.Job.ID)
		}
		return out
	}
	assert.Equal(t, []string{"j2", "j1"}, ids(results[0].Recommendations))
	assert.Equal(t, ids(results[0].Recommendations), ids(results[1].Recommendations))

	excluded, err := talent.GetExcludedJobsFromFile(excludeFile)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"j1", "j2"}, excluded.JobIDs())

	out.Reset()
	require.NoError(t, runRecommend(context.Background(), zap.NewNop(), cfg, recommendOptions{resumes: []string{resume}, jobsPath: jobs}, &out))
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	assert.Empty(t, results[0].Recommendations, "remembered jobs are excluded on the next run")
}

func TestRunRecommendRememberNeedsExcludeFile(t *testing.T) {
	dir := t.TempDir()
	opts := recommendOptions{
		resumes:  []string{writeFile(t, dir, "resume.json", resumeJSON)},
		jobsPath: writeFile(t, dir, "jobs.json", jobsJSON),
		remember: true,
	}

	var out bytes.Buffer
	assert.Error(t, runRecommend(context.Background(), zap.NewNop(), nil, opts, &out))
}

func TestRunRecommendMissingResume(t *testing.T) {
	dir := t.TempDir()
	opts := recommendOptions{
		resumes:  []string{filepath.Join(dir, "absent.json")},
		jobsPath: writeFile(t, dir, "jobs.json", jobsJSON),
	}

	var out bytes.Buffer
	assert.Error(t, runRecommend(context.Background(), zap.NewNop(), &RecommendConfig{Concurrency: 1}, opts, &out))
}

func TestRunShortlistWithoutAI(t *testing.T) {
	dir := t.TempDir()
	applications := writeFile(t, dir, "applications.json", applicationsJSON)
	jobs, err := talent.LoadJobs(writeFile(t, dir, "jobs.json", jobsJSON))
	require.NoError(t, err)

	job, err := chooseJob(jobs, "j1", false)
	require.NoError(t, err)

	shortlister := shortlist.NewShortlister(ai.Disabled("off"), nil, zap.NewNop())

	var out bytes.Buffer
	require.NoError(t, runShortlist(context.Background(), zap.NewNop(), shortlister, applications, job, 1, &out))

	var entries []shortlist.Entry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "app-2", entries[0].Application.ID)
	assert.Equal(t, 78, entries[0].AIScore)
	assert.Equal(t, shortlist.FallbackRecommendation, entries[0].Recommendation)
}

func TestChooseJob(t *testing.T) {
	jobs := &talent.Jobs{Items: []*talent.JobPosting{{ID: "a"}, {ID: "b"}}}

	job, err := chooseJob(jobs, "", true)
	require.NoError(t, err)
	assert.Equal(t, "a", job.ID)

	job, err = chooseJob(jobs, "b", false)
	require.NoError(t, err)
	assert.Equal(t, "b", job.ID)

	single := &talent.Jobs{Items: []*talent.JobPosting{{ID: "only"}}}
	job, err = chooseJob(single, "", false)
	require.NoError(t, err)
	assert.Equal(t, "only", job.ID)

	_, err = chooseJob(&talent.Jobs{}, "", false)
	assert.Error(t, err)
}
