package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/cutplan/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string          `json:"version"`
	CreatedAt string          `json:"created_at"`
	Config    model.AppConfig `json:"config"`
	Jobs      []Job           `json:"jobs,omitempty"`
}

// ExportAllData writes the config and the given jobs to a single JSON file.
func ExportAllData(exportPath string, config model.AppConfig, jobs []Job) error {
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Jobs:      jobs,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ExportRecentJobs loads every readable job in config.RecentJobs and writes
// them together with the config, with the config defaults applied so each
// job restores to the plan it produced. Paths that no longer load are
// returned as skipped.
func ExportRecentJobs(exportPath string, config model.AppConfig) (skipped []string, err error) {
	var jobs []Job
	for _, p := range config.RecentJobs {
		job, err := LoadJob(p)
		if err != nil {
			skipped = append(skipped, p)
			continue
		}
		job.ApplyDefaults(config)
		jobs = append(jobs, job)
	}
	return skipped, ExportAllData(exportPath, config, jobs)
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying the imported config.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	// Backed-up jobs carry every setting
	for i := range backup.Jobs {
		for j := range backup.Jobs[i].Materials {
			backup.Jobs[i].Materials[j].Explicit = model.AllFields
		}
	}
	// Ensure RecentJobs is never nil
	if backup.Config.RecentJobs == nil {
		backup.Config.RecentJobs = []string{}
	}
	return backup, nil
}
