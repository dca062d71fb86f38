package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/cutplan/internal/engine"
	"github.com/piwi3910/cutplan/internal/export"
	"github.com/piwi3910/cutplan/internal/gcode"
	"github.com/piwi3910/cutplan/internal/model"
	"github.com/piwi3910/cutplan/internal/project"
	"github.com/piwi3910/cutplan/internal/render"
)

// planOptions holds the flags of the plan command.
type planOptions struct {
	imagesDir string
	pdfPath   string
	labels    string
	dxfDir    string
	gcodeDir  string
	profile   string
	jsonPath  string
	seed      int64
	policy    string
	unit      string
}

func newPlanCmd(global *globalOptions) *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan <job>",
		Short: "Pack a job file and write the cutting plan",
		Long: `Pack every material of a job file onto sheets and print the utilization summary.

The job format is chosen by extension (.json, .yaml, .yml, .toml).`,
		Example: `  cutplan plan kitchen.yaml
  cutplan plan kitchen.yaml --pdf plan.pdf --labels labels.pdf
  cutplan plan kitchen.yaml --images out/ --dxf out/ --seed 7
  cutplan plan kitchen.yaml --gcode nc/ --gcode-profile Grbl
  cutplan plan kitchen.yaml --json - --policy best-fit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.imagesDir, "images", "", "write one PNG per sheet into this directory")
	cmd.Flags().StringVar(&opts.pdfPath, "pdf", "", "write the cutting-plan PDF to this path")
	cmd.Flags().StringVar(&opts.labels, "labels", "", "write QR piece labels to this PDF path")
	cmd.Flags().StringVar(&opts.dxfDir, "dxf", "", "write one DXF layout per sheet into this directory")
	cmd.Flags().StringVar(&opts.gcodeDir, "gcode", "", "write one router program per sheet into this directory")
	cmd.Flags().StringVar(&opts.profile, "gcode-profile", "", fmt.Sprintf("G-code dialect %v (default from config)", gcode.ProfileNames()))
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "write the JSON report to this path (- for stdout)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "seed for the wood-grain texture (random when unset)")
	cmd.Flags().StringVar(&opts.policy, "policy", engine.PolicyFirstFit.String(), "sheet selection policy: first-fit or best-fit")
	cmd.Flags().StringVar(&opts.unit, "unit", "", "dimension unit printed on images and documents (default from config)")

	return cmd
}

// packedMaterial is one packed material of a job.
type packedMaterial struct {
	Material project.Material
	Plan     *engine.Plan
	Result   model.Result
}

func (m packedMaterial) section() export.MaterialSection {
	return export.MaterialSection{
		Name:   m.Material.Name,
		Code:   m.Material.Code,
		Config: m.Plan.Config(),
		Sheets: m.Plan.Sheets(),
		Result: m.Result,
	}
}

// packJob packs every material concurrently and computes the reports.
func packJob(job project.Job, policy engine.Policy, renderer engine.Renderer, images bool, logger *log.Logger) []packedMaterial {
	cfgs := make([]model.PackConfig, len(job.Materials))
	for i, m := range job.Materials {
		cfgs[i] = m.Config
	}

	prog := newProgress(logger)
	plans := engine.PackAll(cfgs, engine.WithLogger(logger), engine.WithPolicy(policy))
	prog.done(fmt.Sprintf("Packed %d materials", len(plans)))

	packed := make([]packedMaterial, len(plans))
	for i, p := range plans {
		packed[i] = packedMaterial{
			Material: job.Materials[i],
			Plan:     p,
			Result:   p.Calculate(engine.CalculateOptions{IncludeImages: images, Renderer: renderer}),
		}
	}
	return packed
}

func runPlan(cmd *cobra.Command, global *globalOptions, opts *planOptions, path string) error {
	logger := loggerFromContext(cmd.Context())
	out := cmd.OutOrStdout()

	app, err := global.loadConfig()
	if err != nil {
		return err
	}
	job, err := project.LoadJob(path)
	if err != nil {
		return err
	}
	job.ApplyDefaults(app)
	if err := job.Validate(); err != nil {
		return err
	}

	policy, ok := engine.ParsePolicy(opts.policy)
	if !ok {
		return fmt.Errorf("unknown policy %q (want first-fit or best-fit)", opts.policy)
	}

	unit := app.Unit
	if opts.unit != "" {
		unit = opts.unit
	}
	renderOpts := []render.Option{
		render.WithLogger(logger),
		render.WithUnit(unit),
		render.WithWidth(app.ImageWidth),
	}
	if cmd.Flags().Changed("seed") {
		renderOpts = append(renderOpts, render.WithSeed(opts.seed))
	}
	renderer := render.New(renderOpts...)

	wantImages := opts.imagesDir != "" || opts.pdfPath != ""
	packed := packJob(job, policy, renderer, wantImages, logger)

	// The report goes to stdout untouched when requested there.
	if opts.jsonPath != "-" {
		printPlanSummary(out, job, packed, app.PricePerSheet)
	}

	if err := writePlanOutputs(out, job, packed, opts, unit, app); err != nil {
		return err
	}

	project.RememberJob(&app, path)
	if err := project.SaveAppConfig(global.configFile(), app); err != nil {
		logger.Debug("cannot update recent jobs", "err", err)
	}
	return nil
}

func writePlanOutputs(out io.Writer, job project.Job, packed []packedMaterial, opts *planOptions, unit string, app model.AppConfig) error {
	var written []string

	if opts.imagesDir != "" {
		files, err := writeSheetImages(opts.imagesDir, packed)
		if err != nil {
			return err
		}
		written = append(written, files...)
	}

	sections := make([]export.MaterialSection, len(packed))
	for i, m := range packed {
		sections[i] = m.section()
	}

	if opts.pdfPath != "" {
		doc := export.PlanDocument{
			Title:       job.Title,
			Client:      job.Client,
			PlanCode:    jobCode(job),
			GeneratedAt: time.Now(),
			Unit:        unit,
			Locale:      app.Locale,
			Notes:       job.Notes,
			Materials:   sections,
		}
		if err := export.ExportPlanPDF(opts.pdfPath, doc); err != nil {
			return fmt.Errorf("write PDF: %w", err)
		}
		written = append(written, opts.pdfPath)
	}

	if opts.labels != "" {
		if err := export.ExportLabels(opts.labels, sections); err != nil {
			return fmt.Errorf("write labels: %w", err)
		}
		written = append(written, opts.labels)
	}

	if opts.dxfDir != "" {
		for i, m := range packed {
			prefix := fmt.Sprintf("%02d_%s", i+1, slug(m.Material.Name))
			files, err := export.ExportDXFDir(opts.dxfDir, prefix, sections[i].Sheets, m.Plan.Config().Margin)
			if err != nil {
				return fmt.Errorf("write DXF: %w", err)
			}
			written = append(written, files...)
		}
	}

	if opts.gcodeDir != "" {
		files, err := writeGCode(out, opts, packed, app.Machine)
		if err != nil {
			return err
		}
		written = append(written, files...)
	}

	if opts.jsonPath != "" {
		if err := writeJSONReport(out, opts.jsonPath, buildReport(job, packed, app.PricePerSheet)); err != nil {
			return err
		}
		if opts.jsonPath != "-" {
			written = append(written, opts.jsonPath)
		}
	}

	if len(written) > 0 && opts.jsonPath != "-" {
		printSuccess(out, "Wrote %d files", len(written))
		for _, f := range written {
			printFile(out, f)
		}
	}
	return nil
}

// writeSheetImages decodes the rendered data URLs into PNG files. Sheets the
// renderer could not draw are skipped.
func writeSheetImages(dir string, packed []packedMaterial) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}
	var files []string
	for i, m := range packed {
		for j, url := range m.Result.Base64Images {
			if url == "" {
				continue
			}
			img, err := render.DecodeDataURL(url)
			if err != nil {
				return files, fmt.Errorf("decode sheet image: %w", err)
			}
			path := filepath.Join(dir, fmt.Sprintf("%02d_%s_sheet_%02d.png", i+1, slug(m.Material.Name), j+1))
			if err := render.SavePNG(path, img); err != nil {
				return files, fmt.Errorf("write sheet image: %w", err)
			}
			files = append(files, path)
		}
	}
	return files, nil
}

// writeGCode writes router programs for every material and prints the
// estimated machining time.
func writeGCode(out io.Writer, opts *planOptions, packed []packedMaterial, machine model.MachineSettings) ([]string, error) {
	if opts.profile != "" {
		machine.Profile = opts.profile
	}
	var (
		files []string
		total gcode.Stats
	)
	for i, m := range packed {
		gen, err := gcode.New(machine, m.Plan.Config())
		if err != nil {
			return files, fmt.Errorf("G-code settings: %w", err)
		}
		sheets := m.Plan.Sheets()
		paths, err := gen.WriteDir(opts.gcodeDir, fmt.Sprintf("%02d_%s", i+1, slug(m.Material.Name)), sheets)
		if err != nil {
			return files, err
		}
		files = append(files, paths...)
		for _, code := range gen.GenerateAll(sheets) {
			total.Add(gcode.EstimateProgram(code))
		}
	}
	if opts.jsonPath != "-" {
		printKeyValue(out, "Machining", fmt.Sprintf("%s, %.1f m cut, %d plunges",
			total.Duration.Round(time.Second), total.CutLength/1000, total.Plunges))
	}
	return files, nil
}

// planReport is the JSON form of a packed job.
type planReport struct {
	Title     string           `json:"title"`
	Client    string           `json:"client,omitempty"`
	PlanCode  string           `json:"planCode"`
	Materials []materialReport `json:"materials"`
}

type materialReport struct {
	Name     string                 `json:"name"`
	Code     string                 `json:"code,omitempty"`
	PlanCode string                 `json:"planCode"`
	Policy   string                 `json:"policy"`
	Result   model.Result           `json:"result"`
	Estimate model.PurchaseEstimate `json:"estimate"`
	Sheets   []model.Sheet          `json:"sheets"`
	Offcuts  []model.Offcut         `json:"offcuts,omitempty"`
}

func buildReport(job project.Job, packed []packedMaterial, pricePerSheet float64) planReport {
	report := planReport{
		Title:     job.Title,
		Client:    job.Client,
		PlanCode:  jobCode(job),
		Materials: make([]materialReport, len(packed)),
	}
	for i, m := range packed {
		sheets := m.Plan.Sheets()
		report.Materials[i] = materialReport{
			Name:     m.Material.Name,
			Code:     m.Material.Code,
			PlanCode: model.PlanCode(m.Plan.Config()),
			Policy:   m.Plan.Policy().String(),
			Result:   m.Result,
			Estimate: model.CalculatePurchaseEstimate(m.Result, pricePerSheet),
			Sheets:   sheets,
			Offcuts:  model.DetectAllOffcuts(sheets, model.MinOffcutDimension, model.MinOffcutArea),
		}
	}
	return report
}

func writeJSONReport(out io.Writer, path string, report planReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = out.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func jobCode(job project.Job) string {
	cfgs := make([]model.PackConfig, len(job.Materials))
	for i, m := range job.Materials {
		cfgs[i] = m.Config
	}
	return model.JobCode(cfgs...)
}
