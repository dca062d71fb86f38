package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/cutplan/internal/model"
)

// ErrUnknownFormat is returned for job files whose extension has no codec.
var ErrUnknownFormat = errors.New("unknown job file format")

// Job is a cutting job: one or more materials, each packed on its own stock.
type Job struct {
	Title     string     `json:"title" yaml:"title" toml:"title"`
	Client    string     `json:"client,omitempty" yaml:"client,omitempty" toml:"client,omitempty"`
	Notes     string     `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes,omitempty"`
	Materials []Material `json:"materials" yaml:"materials" toml:"materials"`
}

// Material is one stock material and the pieces cut from it.
type Material struct {
	Name   string           `json:"name" yaml:"name" toml:"name"`
	Code   string           `json:"code,omitempty" yaml:"code,omitempty" toml:"code,omitempty"`
	Config model.PackConfig `json:"config" yaml:"config" toml:"config"`

	// Explicit marks the settings the job file states. LoadJob fills it;
	// settings it leaves unmarked take the application defaults.
	Explicit model.ConfigField `json:"-" yaml:"-" toml:"-"`
}

// settingKeys maps the optional config keys of a job file to their flags.
var settingKeys = map[string]model.ConfigField{
	"margin":          model.FieldMargin,
	"pieceSpacing":    model.FieldPieceSpacing,
	"orientation":     model.FieldGrain,
	"wastePercentage": model.FieldWaste,
}

// jobKeys is a second view of a job file that records which config keys each
// material states.
type jobKeys struct {
	Materials []struct {
		Config map[string]any `json:"config" yaml:"config" toml:"config"`
	} `json:"materials" yaml:"materials" toml:"materials"`
}

func (k jobKeys) mark(job *Job) {
	for i := range job.Materials {
		if i >= len(k.Materials) {
			return
		}
		var f model.ConfigField
		for key := range k.Materials[i].Config {
			f |= settingKeys[key]
		}
		job.Materials[i].Explicit = f
	}
}

// Validate checks every material configuration. The returned error names the
// material and still matches model.ErrInvalidConfig.
func (j Job) Validate() error {
	if len(j.Materials) == 0 {
		return fmt.Errorf("job %q has no materials", j.Title)
	}
	for i, m := range j.Materials {
		if err := m.Config.Validate(); err != nil {
			return fmt.Errorf("material %d (%s): %w", i+1, m.Name, err)
		}
	}
	return nil
}

// PieceCount returns the number of pieces across all materials.
func (j Job) PieceCount() int {
	n := 0
	for _, m := range j.Materials {
		n += len(m.Config.Items)
	}
	return n
}

// ApplyDefaults fills unset material values from the application config.
func (j *Job) ApplyDefaults(config model.AppConfig) {
	for i := range j.Materials {
		m := &j.Materials[i]
		config.ApplyToConfig(&m.Config, m.Explicit)
	}
}

type jobFormat int

const (
	formatJSON jobFormat = iota
	formatYAML
	formatTOML
)

func formatFor(path string) (jobFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".toml":
		return formatTOML, nil
	default:
		return 0, fmt.Errorf("%w: %q (want .json, .yaml or .toml)", ErrUnknownFormat, filepath.Ext(path))
	}
}

// LoadJob reads a job file, choosing the codec from the file extension.
func LoadJob(path string) (Job, error) {
	format, err := formatFor(path)
	if err != nil {
		return Job{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("failed to read job file: %w", err)
	}

	var (
		job  Job
		keys jobKeys
	)
	if err := decode(format, data, &job); err != nil {
		return Job{}, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}
	if err := decode(format, data, &keys); err != nil {
		return Job{}, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}
	keys.mark(&job)
	if job.Title == "" {
		job.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return job, nil
}

func decode(format jobFormat, data []byte, v any) error {
	switch format {
	case formatYAML:
		return yaml.Unmarshal(data, v)
	case formatTOML:
		_, err := toml.Decode(string(data), v)
		return err
	default:
		return json.Unmarshal(data, v)
	}
}

// SaveJob writes a job file, choosing the codec from the file extension.
// It creates any missing parent directories automatically.
func SaveJob(path string, job Job) error {
	format, err := formatFor(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case formatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(job)
	case formatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(job)
		if err == nil {
			err = enc.Close()
		}
	case formatTOML:
		err = toml.NewEncoder(&buf).Encode(job)
	}
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write job file: %w", err)
	}
	return nil
}
