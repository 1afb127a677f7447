package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/kova98/notegrep/models"
)

// LoadJobs reads the jobs file, a JSON array of job objects.
func LoadJobs(path string) ([]models.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read jobs file")
	}

	var jobs []models.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, errors.Wrap(err, "jobs file must be a JSON array of jobs")
	}

	return jobs, nil
}
