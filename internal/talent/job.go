package talent

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

const (
	JobIDField      = "ID"
	JobCompanyField = "Company"
)

// ExperienceLevel is the seniority a job asks for.
type ExperienceLevel string

const (
	LevelEntry  ExperienceLevel = "entry-level"
	LevelMid    ExperienceLevel = "mid-level"
	LevelSenior ExperienceLevel = "senior"
	LevelLead   ExperienceLevel = "lead"
)

var requiredYears = map[ExperienceLevel]int{
	LevelEntry:  0,
	LevelMid:    2,
	LevelSenior: 5,
	LevelLead:   8,
}

// RequiredYears maps the level to the years-of-experience threshold.
// Unknown or empty levels require nothing.
func (l ExperienceLevel) RequiredYears() int {
	return requiredYears[ExperienceLevel(strings.ToLower(strings.TrimSpace(string(l))))]
}

// LocationType describes where the work happens.
type LocationType string

const (
	OnSite LocationType = "on-site"
	Remote LocationType = "remote"
	Hybrid LocationType = "hybrid"
)

// Normalize folds the spellings seen in job feeds into the canonical values.
func (t LocationType) Normalize() LocationType {
	switch strings.ToLower(strings.TrimSpace(string(t))) {
	case "remote":
		return Remote
	case "hybrid":
		return Hybrid
	case "on-site", "onsite", "on_site", "office":
		return OnSite
	default:
		return LocationType(strings.ToLower(strings.TrimSpace(string(t))))
	}
}

type JobPosting struct {
	ID              string          `json:"id" mapstructure:"id" validate:"required"`
	Title           string          `json:"title,omitempty" mapstructure:"title"`
	Company         string          `json:"company,omitempty" mapstructure:"company"`
	Description     string          `json:"description,omitempty" mapstructure:"description"`
	RequiredSkills  SkillSet        `json:"requiredSkills,omitempty" mapstructure:"requiredSkills"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel,omitempty" mapstructure:"experienceLevel"`
	Location        string          `json:"location,omitempty" mapstructure:"location"`
	LocationType    LocationType    `json:"locationType,omitempty" mapstructure:"locationType"`
	Status          string          `json:"status,omitempty" mapstructure:"status"`
}

// IsOpen reports whether the job still accepts candidates. Jobs without a status are open.
func (j *JobPosting) IsOpen() bool {
	switch strings.ToLower(strings.TrimSpace(j.Status)) {
	case "closed", "archived", "filled":
		return false
	default:
		return true
	}
}

func (j *JobPosting) GetStringField(name string) string {
	switch name {
	case JobIDField:
		return j.ID
	case JobCompanyField:
		return j.Company
	default:
		return ""
	}
}

type Jobs struct {
	Items []*JobPosting
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *JobPosting {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (j *Jobs) Titles() []string {
	titles := make([]string, 0, len(j.Items))
	for _, job := range j.Items {
		titles = append(titles, job.Title)
	}
	return titles
}

// Exclude removes jobs whose field matches one of targets (case-insensitive)
// and returns the removed job ids. The order of the remaining jobs is preserved.
func (j *Jobs) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		set[strings.ToLower(strings.TrimSpace(target))] = struct{}{}
	}

	return j.RemoveFunc(func(job *JobPosting) bool {
		_, found := set[strings.ToLower(strings.TrimSpace(job.GetStringField(name)))]
		return found
	})
}

// RemoveFunc drops every job for which drop returns true, keeping order.
func (j *Jobs) RemoveFunc(drop func(*JobPosting) bool) []string {
	var removed []string
	kept := j.Items[:0]
	for _, job := range j.Items {
		if job == nil || drop(job) {
			if job != nil {
				removed = append(removed, job.ID)
			}
			continue
		}
		kept = append(kept, job)
	}
	j.Items = kept
	return removed
}

const (
	ExcludeActorUser   = "user"
	ExcludeActorFilter = "filter"
)

type ExcludedJobs struct {
	Items []*ExcludedJob
}

type ExcludedJob struct {
	ID         string
	Company    string
	Actor      string `json:",omitempty"`
	Reason     string `json:",omitempty"`
	ExcludedAt time.Time
}

func (j *Jobs) ToExcluded(actor, reason string) *ExcludedJobs {
	excluded := &ExcludedJobs{}
	for _, job := range j.Items {
		excluded.Items = append(excluded.Items, &ExcludedJob{
			ID:         job.ID,
			Company:    job.Company,
			Actor:      actor,
			Reason:     reason,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// GetExcludedJobsFromFile reads the exclude list. A missing or empty file is an empty list.
func GetExcludedJobsFromFile(path string) (*ExcludedJobs, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExcludedJobs{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedJobs{}, nil
	}

	var excluded ExcludedJobs
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedJobs) Append(s *ExcludedJobs) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedJobs) JobIDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, job := range e.Items {
		ids = append(ids, job.ID)
	}
	return ids
}

func (e *ExcludedJobs) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
