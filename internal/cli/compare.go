package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/cutplan/internal/engine"
	"github.com/piwi3910/cutplan/internal/project"
)

func newCompareCmd(global *globalOptions) *cobra.Command {
	var policyName string

	cmd := &cobra.Command{
		Use:   "compare <job>",
		Short: "Compare what-if packing scenarios for each material",
		Long: `Pack each material of a job under alternative settings (the other sheet
policy, free rotation, half spacing, no margin) and show which one uses the
fewest sheets.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			out := cmd.OutOrStdout()

			policy, ok := engine.ParsePolicy(policyName)
			if !ok {
				return fmt.Errorf("unknown policy %q (want first-fit or best-fit)", policyName)
			}
			app, err := global.loadConfig()
			if err != nil {
				return err
			}
			job, err := project.LoadJob(args[0])
			if err != nil {
				return err
			}
			job.ApplyDefaults(app)
			if err := job.Validate(); err != nil {
				return err
			}

			for _, m := range job.Materials {
				prog := newProgress(logger)
				results := engine.CompareScenarios(engine.BuildDefaultScenarios(m.Config, policy), engine.WithLogger(logger))
				prog.done(fmt.Sprintf("Compared %d scenarios for %s", len(results), m.Name))

				best := engine.BestScenario(results)
				rows := make([][]string, len(results))
				for i, r := range results {
					name := r.Scenario.Name
					if i == best {
						name = iconSuccess + " " + name
					}
					rows[i] = []string{
						name,
						fmt.Sprintf("%d", r.SheetsUsed),
						fmt.Sprintf("%.2f", r.FractionalSheets),
						formatPercent(r.Efficiency),
						fmt.Sprintf("%d", r.OversizeCount),
					}
				}

				printTitle(out, "%s", m.Name)
				fmt.Fprintln(out, renderTable([]string{"Scenario", "Sheets", "Used", "Efficiency", "Oversize"}, rows))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&policyName, "policy", engine.PolicyFirstFit.String(), "base sheet selection policy")
	return cmd
}
