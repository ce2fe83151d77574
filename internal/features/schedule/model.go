package schedule

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go-league/internal/features/export"
	"go-league/internal/features/report"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidJob = errors.New("invalid scheduled export")
	ErrJobUnknown = errors.New("scheduled export not found")
)

// Job is one scheduled export as declared in the schedule file.
type Job struct {
	Name       string            `yaml:"name" json:"name"`
	Cron       string            `yaml:"cron" json:"cron"`
	ReportType report.ReportType `yaml:"report_type" json:"report_type"`
	SeasonID   string            `yaml:"season_id,omitempty" json:"season_id,omitempty"`
	OrgID      string            `yaml:"org_id" json:"org_id"`
	OrgName    string            `yaml:"org_name" json:"org_name"`
	ScopeLabel string            `yaml:"scope_label,omitempty" json:"scope_label,omitempty"`
	PresetID   string            `yaml:"preset_id,omitempty" json:"preset_id,omitempty"`
	Filters    report.Filters    `yaml:"filters,omitempty" json:"filters"`
	Format     string            `yaml:"format,omitempty" json:"format"`
	EmailTo    []string          `yaml:"email_to,omitempty" json:"email_to,omitempty"`
}

type File struct {
	Jobs []Job `yaml:"jobs"`
}

// JobStatus is a job plus its scheduler bookkeeping.
type JobStatus struct {
	Job
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// LoadFile reads and validates a schedule file. A missing file means no jobs.
func LoadFile(path string) ([]Job, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a schedule document and validates every job.
func Parse(data []byte) ([]Job, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse schedule file: %w", err)
	}

	seen := make(map[string]bool, len(f.Jobs))
	for i := range f.Jobs {
		job := &f.Jobs[i]
		if err := job.validate(); err != nil {
			return nil, err
		}
		if seen[job.Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidJob, job.Name)
		}
		seen[job.Name] = true
	}
	return f.Jobs, nil
}

func (j *Job) validate() error {
	j.Name = strings.TrimSpace(j.Name)
	if j.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidJob)
	}
	if _, err := cron.ParseStandard(j.Cron); err != nil {
		return fmt.Errorf("%w: %s: invalid cron expression: %v", ErrInvalidJob, j.Name, err)
	}
	if _, err := report.Lookup(j.ReportType); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidJob, j.Name, err)
	}
	format, err := export.ParseFormat(j.Format)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidJob, j.Name, err)
	}
	if format == export.FormatEmail {
		return fmt.Errorf("%w: %s: email is a delivery, set email_to instead", ErrInvalidJob, j.Name)
	}
	j.Format = string(format)
	if j.OrgID == "" {
		return fmt.Errorf("%w: %s: org_id is required", ErrInvalidJob, j.Name)
	}
	return nil
}
