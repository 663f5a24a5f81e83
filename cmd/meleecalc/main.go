// Package main provides the CLI entrypoint for meleecalc.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/meleecalc/internal/config"
	"github.com/verte-zerg/meleecalc/internal/engine"
	"github.com/verte-zerg/meleecalc/internal/estimate"
	"github.com/verte-zerg/meleecalc/internal/model"
	"github.com/verte-zerg/meleecalc/internal/progression"
	"github.com/verte-zerg/meleecalc/internal/report"
	"github.com/verte-zerg/meleecalc/internal/tui"
)

const (
	defaultSkill        = 102
	defaultPercentLeft  = 19.0
	defaultLoyalty      = 5.0
	defaultMethod       = "online"
	defaultPlanOnline   = 7.0
	defaultPlanOffline  = 42.0
	defaultPlanDummy    = 0.0
	defaultCurveFrom    = model.MinLevel
	defaultCurveTo      = model.MaxLevel
	defaultCurveHeight  = 12
	configFileName      = "config.toml"
	defaultEditorBinary = "vi"
)

var (
	calcSkill       int
	calcPercentLeft float64
	calcTarget      string
	calcLoyalty     float64
	calcMethod      string
	calcPreset      string
	planOnline      float64
	planOffline     float64
	planDummy       float64

	calcJSON bool
	calcYAML bool

	curveFrom   int
	curveTo     int
	curveWidth  int
	curveHeight int
	curveColor  bool
	curveXLSX   string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "meleecalc",
		Short:         "Melee skill progress and training time calculator",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runFormCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&calcSkill, "skill", defaultSkill, "current melee skill level (10-200)")
	flags.Float64Var(&calcPercentLeft, "percent-left", defaultPercentLeft, "% left to next level (0-100)")
	flags.StringVar(&calcTarget, "target", "", "target level (default: next level)")
	flags.Float64Var(&calcLoyalty, "loyalty", defaultLoyalty, "loyalty bonus % (0-50)")
	flags.StringVar(&calcMethod, "method", defaultMethod, "training method: online, offline or dummy")
	flags.StringVar(&calcPreset, "preset", estimate.DefaultPreset, "hit rate preset")
	flags.Float64Var(&planOnline, "plan-online", defaultPlanOnline, "online training hours per week")
	flags.Float64Var(&planOffline, "plan-offline", defaultPlanOffline, "offline training hours per week")
	flags.Float64Var(&planDummy, "plan-dummy", defaultPlanDummy, "dummy training hours per week")

	rootCmd.AddCommand(newCalcCmd())
	rootCmd.AddCommand(newCurveCmd())
	rootCmd.AddCommand(newPresetsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runFormCmd(cmd *cobra.Command, _ []string) error {
	eng, in, err := setup(cmd)
	if err != nil {
		return err
	}
	program := tea.NewProgram(tui.NewModel(eng, in), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newCalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute progress and training time once",
		Args:  cobra.NoArgs,
		RunE:  runCalcCmd,
	}
	cmd.Flags().BoolVar(&calcJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&calcYAML, "yaml", false, "print the result as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
	return cmd
}

func runCalcCmd(cmd *cobra.Command, _ []string) error {
	eng, in, err := setup(cmd)
	if err != nil {
		return err
	}
	out, err := eng.Compute(in)
	if err != nil {
		return flagError(err, in)
	}
	switch {
	case calcJSON:
		err = report.RenderJSON(os.Stdout, out)
	case calcYAML:
		err = report.RenderYAML(os.Stdout, out)
	default:
		err = report.RenderResult(os.Stdout, out)
	}
	if err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

func newCurveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Plot the skill cost curve",
		Args:  cobra.NoArgs,
		RunE:  runCurveCmd,
	}
	cmd.Flags().IntVar(&curveFrom, "from", defaultCurveFrom, "first level")
	cmd.Flags().IntVar(&curveTo, "to", defaultCurveTo, "last level")
	cmd.Flags().IntVar(&curveWidth, "width", 0, "plot width in cells (default: terminal width)")
	cmd.Flags().IntVar(&curveHeight, "height", defaultCurveHeight, "plot height in rows")
	cmd.Flags().BoolVar(&curveColor, "color", false, "force colored output")
	cmd.Flags().StringVar(&curveXLSX, "xlsx", "", "write the curve table to an xlsx file instead of plotting")
	return cmd
}

func runCurveCmd(_ *cobra.Command, _ []string) error {
	if err := validateCurveRange(curveFrom, curveTo); err != nil {
		return err
	}
	if curveHeight <= 0 {
		return fmt.Errorf("--height must be > 0")
	}
	if curveWidth < 0 {
		return fmt.Errorf("--width must be >= 0")
	}
	m := progression.New(model.DefaultCurve())
	if curveXLSX != "" {
		return writeCurveFile(curveXLSX, m)
	}
	if err := report.PlotCurve(os.Stdout, m, curveFrom, curveTo, curveWidth, curveHeight, curveColor); err != nil {
		return fmt.Errorf("failed to plot curve: %w", err)
	}
	return nil
}

func writeCurveFile(path string, m progression.Model) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if err := report.WriteCurveSheet(file, m, curveFrom, curveTo); err != nil {
		return fmt.Errorf("failed to export curve: %w", err)
	}
	logErrf("wrote %s\n", path)
	return nil
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List hit rate presets",
		Args:  cobra.NoArgs,
		RunE:  runPresetsCmd,
	}
}

func runPresetsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "preset", &calcPreset, fileCfg.Calc.Preset)
	catalog, err := fileCfg.Catalog()
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}
	active, err := lookupPreset(catalog, calcPreset)
	if err != nil {
		return err
	}
	if err := report.RenderPresets(os.Stdout, catalog.Tables(), active.Name); err != nil {
		return fmt.Errorf("failed to write presets: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		logErrf("created %s\n", path)
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = defaultEditorBinary
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// setup merges config file values into unset flags and builds the engine and input.
func setup(cmd *cobra.Command) (*engine.Engine, engine.Input, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, engine.Input{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "skill", &calcSkill, fileCfg.Calc.Skill)
	applyFloatConfig(cmd, "percent-left", &calcPercentLeft, fileCfg.Calc.PercentLeft)
	applyStringConfig(cmd, "target", &calcTarget, fileCfg.Calc.Target)
	applyFloatConfig(cmd, "loyalty", &calcLoyalty, fileCfg.Calc.Loyalty)
	applyStringConfig(cmd, "method", &calcMethod, fileCfg.Calc.Method)
	applyStringConfig(cmd, "preset", &calcPreset, fileCfg.Calc.Preset)
	applyFloatConfig(cmd, "plan-online", &planOnline, fileCfg.Plan.Online)
	applyFloatConfig(cmd, "plan-offline", &planOffline, fileCfg.Plan.Offline)
	applyFloatConfig(cmd, "plan-dummy", &planDummy, fileCfg.Plan.Dummy)

	method, err := model.ParseMethod(calcMethod)
	if err != nil {
		return nil, engine.Input{}, fmt.Errorf("--method must be online, offline or dummy")
	}

	catalog, err := fileCfg.Catalog()
	if err != nil {
		return nil, engine.Input{}, fmt.Errorf("failed to load presets: %w", err)
	}
	rates, err := lookupPreset(catalog, calcPreset)
	if err != nil {
		return nil, engine.Input{}, err
	}

	eng := engine.New(engine.Config{Curve: model.DefaultCurve(), Rates: rates})
	in := buildInput(method)
	if err := eng.Validate(in); err != nil {
		return nil, engine.Input{}, flagError(err, in)
	}
	return eng, in, nil
}

func lookupPreset(catalog *estimate.Catalog, name string) (estimate.RateTable, error) {
	table, err := catalog.Lookup(name)
	if err != nil {
		return estimate.RateTable{}, fmt.Errorf("--preset: %w", err)
	}
	return table, nil
}

func buildInput(method model.TrainingMethod) engine.Input {
	in := engine.Input{
		SkillLevel:      calcSkill,
		PercentLeft:     calcPercentLeft,
		TargetRaw:       calcTarget,
		LoyaltyBonusPct: calcLoyalty,
		Method:          method,
	}
	plan := []model.TrainingAllocation{
		{Method: model.MethodOnline, HoursPerWeek: planOnline},
		{Method: model.MethodOffline, HoursPerWeek: planOffline},
		{Method: model.MethodDummy, HoursPerWeek: planDummy},
	}
	for _, a := range plan {
		if a.HoursPerWeek != 0 {
			in.Allocations = append(in.Allocations, a)
		}
	}
	return in
}

var fieldFlags = map[string]string{
	"skillLevel":        "--skill",
	"percentLeftToNext": "--percent-left",
	"loyaltyBonusPct":   "--loyalty",
	"trainingMethod":    "--method",
}

var planFlags = map[model.TrainingMethod]string{
	model.MethodOnline:  "--plan-online",
	model.MethodOffline: "--plan-offline",
	model.MethodDummy:   "--plan-dummy",
}

// flagError rewrites validation failures in terms of CLI flags.
func flagError(err error, in engine.Input) error {
	var verr *engine.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) == 0 {
		return err
	}
	msgs := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		msgs = append(msgs, flagNameFor(f.Field, in)+" "+f.Message)
	}
	return errors.New(strings.Join(msgs, "; "))
}

func flagNameFor(field string, in engine.Input) string {
	if name, ok := fieldFlags[field]; ok {
		return name
	}
	var idx int
	if _, err := fmt.Sscanf(field, "weeklyAllocations[%d]", &idx); err == nil && idx >= 0 && idx < len(in.Allocations) {
		if name, ok := planFlags[in.Allocations[idx].Method]; ok {
			return name
		}
	}
	return field
}

func validateCurveRange(from, to int) error {
	if from < model.MinLevel || from > model.MaxLevel {
		return fmt.Errorf("--from must be between %d and %d", model.MinLevel, model.MaxLevel)
	}
	if to < model.MinLevel || to > model.MaxLevel {
		return fmt.Errorf("--to must be between %d and %d", model.MinLevel, model.MaxLevel)
	}
	if to <= from {
		return fmt.Errorf("--to must be > --from")
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# meleecalc configuration (%s)
# Uncomment a value to enable it. CLI flags override config values.

[calc]
# skill = %d              # Current melee skill level (10-200)
# percent-left = %.0f     # %% left to next level (0-100)
# target = ""             # Target level, blank means next level
# loyalty = %.0f            # Loyalty bonus %% (0-50)
# method = %q       # online, offline or dummy
# preset = %q       # Hit rate preset name

[plan]
# online = %.0f             # Online training hours per week
# offline = %.0f           # Offline training hours per week
# dummy = %.0f              # Dummy training hours per week

# Custom hit rate presets. Missing rates are taken from %q.
# [presets.myserver]
# online = 3600
# offline = 3000
# dummy = 2400
# fallback = 2000
`,
		configFileName,
		defaultSkill,
		defaultPercentLeft,
		defaultLoyalty,
		defaultMethod,
		estimate.DefaultPreset,
		defaultPlanOnline,
		defaultPlanOffline,
		defaultPlanDummy,
		estimate.DefaultPreset,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
