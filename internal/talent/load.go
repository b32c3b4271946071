package talent

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New()

// LoadJobs reads a job catalog. The file holds either a JSON array of jobs or an object with an "items" array.
func LoadJobs(path string) (*Jobs, error) {
	items, err := readItems(path)
	if err != nil {
		return nil, err
	}

	var jobs []*JobPosting
	if err := decode(items, &jobs); err != nil {
		return nil, fmt.Errorf("decode jobs from %s: %w", path, err)
	}

	for idx, job := range jobs {
		if job == nil {
			return nil, fmt.Errorf("job #%d in %s is empty", idx+1, path)
		}
		if err := validate.Struct(job); err != nil {
			return nil, fmt.Errorf("job #%d in %s: %w", idx+1, path, err)
		}
	}

	return &Jobs{Items: jobs}, nil
}

// LoadApplications reads the applications submitted for a job.
func LoadApplications(path string) ([]*Application, error) {
	items, err := readItems(path)
	if err != nil {
		return nil, err
	}

	var applications []*Application
	if err := decode(items, &applications); err != nil {
		return nil, fmt.Errorf("decode applications from %s: %w", path, err)
	}

	for idx, application := range applications {
		if application == nil {
			return nil, fmt.Errorf("application #%d in %s is empty", idx+1, path)
		}
		if err := validate.Struct(application); err != nil {
			return nil, fmt.Errorf("application #%d in %s: %w", idx+1, path, err)
		}
	}

	return applications, nil
}

// LoadResume reads a single resume profile.
func LoadResume(path string) (*ResumeProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse resume %s: %w", path, err)
	}

	var resume ResumeProfile
	if err := decode(raw, &resume); err != nil {
		return nil, fmt.Errorf("decode resume %s: %w", path, err)
	}

	return &resume, nil
}

func readItems(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	switch typed := raw.(type) {
	case []any:
		return typed, nil
	case map[string]any:
		if items, ok := typed["items"].([]any); ok {
			return items, nil
		}
		return nil, fmt.Errorf("%s: object without an items array", path)
	default:
		return nil, fmt.Errorf("%s: expected an array or an object with items", path)
	}
}

func decode(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
