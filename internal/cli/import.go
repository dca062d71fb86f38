package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/cutplan/internal/importer"
	"github.com/piwi3910/cutplan/internal/model"
	"github.com/piwi3910/cutplan/internal/project"
)

type importOptions struct {
	output      string
	title       string
	material    string
	sheet       string
	margin      float64
	spacing     float64
	orientation string
	waste       float64
}

func newImportCmd(global *globalOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <pieces.csv|pieces.xlsx>",
		Short: "Build a job file from a CSV or Excel piece list",
		Long: `Read a piece list and write a single-material job file.

Columns are matched by header (name, width, height, quantity and common
aliases); without a header they are taken in that order. Rows with a
quantity above one become that many pieces.`,
		Example: `  cutplan import pieces.csv
  cutplan import cabinet.xlsx -o cabinet.toml --sheet 275x185 --orientation H`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "job file to write (default <input>.yaml)")
	cmd.Flags().StringVar(&opts.title, "title", "", "job title (default input file name)")
	cmd.Flags().StringVar(&opts.material, "material", "Material", "material name")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "sheet size as WxH (default from config)")
	cmd.Flags().Float64Var(&opts.margin, "margin", 0, "sheet margin")
	cmd.Flags().Float64Var(&opts.spacing, "spacing", 0, "spacing between pieces")
	cmd.Flags().StringVar(&opts.orientation, "orientation", "VH", "grain orientation: H, V or VH")
	cmd.Flags().Float64Var(&opts.waste, "waste", 0, "waste percentage a sheet may leave and still count as full")

	return cmd
}

func runImport(cmd *cobra.Command, global *globalOptions, opts *importOptions, path string) error {
	logger := loggerFromContext(cmd.Context())
	out := cmd.OutOrStdout()

	var result importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		result = importer.ImportExcel(path)
	default:
		result = importer.ImportCSV(path)
	}

	for _, w := range result.Warnings {
		logger.Debug(w)
	}
	for _, e := range result.Errors {
		printWarning(out, "%s", e)
	}
	if len(result.Pieces) == 0 {
		return fmt.Errorf("no pieces imported from %s", path)
	}

	app, err := global.loadConfig()
	if err != nil {
		return err
	}

	grain, err := model.ParseGrain(opts.orientation)
	if err != nil {
		return err
	}
	cfg := model.PackConfig{
		Items:           result.Pieces,
		Margin:          opts.margin,
		PieceSpacing:    opts.spacing,
		Grain:           grain,
		WastePercentage: opts.waste,
	}
	if opts.sheet != "" {
		cfg.SheetWidth, cfg.SheetHeight, err = parseSheetSize(opts.sheet)
		if err != nil {
			return err
		}
	}
	app.ApplyToConfig(&cfg, explicitFlags(cmd))
	if err := cfg.Validate(); err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	title := opts.title
	if title == "" {
		title = base
	}
	job := project.Job{
		Title:     title,
		Materials: []project.Material{{Name: opts.material, Config: cfg}},
	}

	output := opts.output
	if output == "" {
		output = filepath.Join(filepath.Dir(path), base+".yaml")
	}
	if err := project.SaveJob(output, job); err != nil {
		return err
	}

	printSuccess(out, "Imported %d pieces from %d rows", len(result.Pieces), result.Rows)
	printFile(out, output)
	return nil
}

// explicitFlags marks the settings given on the command line; the rest come
// from the app config.
func explicitFlags(cmd *cobra.Command) model.ConfigField {
	var f model.ConfigField
	for flag, field := range map[string]model.ConfigField{
		"margin":      model.FieldMargin,
		"spacing":     model.FieldPieceSpacing,
		"orientation": model.FieldGrain,
		"waste":       model.FieldWaste,
	} {
		if cmd.Flags().Changed(flag) {
			f |= field
		}
	}
	return f
}

// parseSheetSize parses "275x185" (also "275X185" or "275*185").
func parseSheetSize(s string) (float64, float64, error) {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return r == 'x' || r == '*' })
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("invalid sheet size %q (want WxH)", s)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid sheet width in %q: %w", s, err)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid sheet height in %q: %w", s, err)
	}
	return w, h, nil
}
