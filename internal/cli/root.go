package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/cutplan/internal/model"
	"github.com/piwi3910/cutplan/internal/project"
)

var (
	version = "dev" // semantic version (e.g., "v1.2.3")
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the version information displayed by --version.
// It is called by the main package with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// globalOptions holds the flags shared by every command.
type globalOptions struct {
	verbose    bool
	configPath string
}

// configFile returns the config path, falling back to ~/.cutplan/config.json.
func (o *globalOptions) configFile() string {
	if o.configPath != "" {
		return o.configPath
	}
	return project.DefaultConfigPath()
}

func (o *globalOptions) loadConfig() (model.AppConfig, error) {
	cfg, err := project.LoadAppConfig(o.configFile())
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// NewRootCommand builds the cutplan command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:          "cutplan",
		Short:        "cutplan packs rectangular pieces onto stock sheets",
		Long:         `cutplan computes cutting plans for sheet materials: it packs the pieces of a job onto as few sheets as practical, reports material utilization and renders the plan for the workshop.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if opts.verbose {
				level = log.DebugLevel
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, newLogger(cmd.ErrOrStderr(), level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("cutplan %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.cutplan/config.json)")

	root.AddCommand(newPlanCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newCompareCmd(opts))
	root.AddCommand(newConfigCmd(opts))

	return root
}

// Execute runs the cutplan CLI and returns an error if any command fails.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
