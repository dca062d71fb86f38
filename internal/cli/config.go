package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/piwi3910/cutplan/internal/model"
	"github.com/piwi3910/cutplan/internal/project"
)

func newConfigCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or manage the application config",
	}
	cmd.AddCommand(newConfigShowCmd(global))
	cmd.AddCommand(newConfigInitCmd(global))
	cmd.AddCommand(newConfigExportCmd(global))
	cmd.AddCommand(newConfigImportCmd(global))
	return cmd
}

func newConfigShowCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigInitCmd(global *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := global.configFile()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := project.SaveAppConfig(path, model.DefaultAppConfig()); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Wrote default config")
			printFile(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}

func newConfigExportCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <backup.json>",
		Short: "Back up the config and recent jobs into one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			skipped, err := project.ExportRecentJobs(args[0], cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range skipped {
				printWarning(out, "skipped unreadable job %s", p)
			}
			printSuccess(out, "Exported config and %d jobs", len(cfg.RecentJobs)-len(skipped))
			printFile(out, args[0])
			return nil
		},
	}
}

func newConfigImportCmd(global *globalOptions) *cobra.Command {
	var jobsDir string

	cmd := &cobra.Command{
		Use:   "import <backup.json>",
		Short: "Restore the config from a backup, optionally writing its jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			cfg := backup.Config
			if jobsDir != "" {
				cfg.RecentJobs = []string{}
				for i, job := range backup.Jobs {
					path := filepath.Join(jobsDir, fmt.Sprintf("%02d_%s.json", i+1, slug(job.Title)))
					if err := project.SaveJob(path, job); err != nil {
						return err
					}
					project.RememberJob(&cfg, path)
					printFile(out, path)
				}
			}

			if err := project.SaveAppConfig(global.configFile(), cfg); err != nil {
				return err
			}
			printSuccess(out, "Restored config from backup %s", backup.CreatedAt)
			return nil
		},
	}
	cmd.Flags().StringVar(&jobsDir, "jobs", "", "write the backed-up jobs into this directory")
	return cmd
}
