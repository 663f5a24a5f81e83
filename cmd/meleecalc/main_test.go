package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/meleecalc/internal/config"
	"github.com/verte-zerg/meleecalc/internal/engine"
	"github.com/verte-zerg/meleecalc/internal/estimate"
	"github.com/verte-zerg/meleecalc/internal/model"
)

func TestFlagErrorUsesFlagNames(t *testing.T) {
	eng := engine.New(engine.DefaultConfig())
	in := engine.Input{
		SkillLevel:      250,
		PercentLeft:     50,
		LoyaltyBonusPct: 60,
		Method:          model.MethodOffline,
		Allocations: []model.TrainingAllocation{
			{Method: model.MethodOnline, HoursPerWeek: 7},
			{Method: model.MethodDummy, HoursPerWeek: -1},
		},
	}
	_, err := eng.Compute(in)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := flagError(err, in).Error()
	for _, want := range []string{"--skill must be <= 200", "--loyalty must be <= 50", "--plan-dummy must be >= 0"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestBuildInputSkipsEmptyPlan(t *testing.T) {
	calcSkill, calcPercentLeft, calcTarget, calcLoyalty = 102, 19, "150", 5
	planOnline, planOffline, planDummy = 7, 0, 3
	in := buildInput(model.MethodDummy)
	if in.SkillLevel != 102 || in.TargetRaw != "150" || in.Method != model.MethodDummy {
		t.Fatalf("unexpected input: %+v", in)
	}
	if len(in.Allocations) != 2 {
		t.Fatalf("expected 2 allocations, got %+v", in.Allocations)
	}
	if in.Allocations[0].Method != model.MethodOnline || in.Allocations[1].Method != model.MethodDummy {
		t.Fatalf("unexpected allocation order: %+v", in.Allocations)
	}
}

func TestValidateCurveRange(t *testing.T) {
	cases := []struct {
		from, to int
		want     string
	}{
		{from: 10, to: 200},
		{from: 9, to: 50, want: "--from"},
		{from: 10, to: 201, want: "--to must be between"},
		{from: 50, to: 50, want: "--to must be > --from"},
	}
	for _, tc := range cases {
		err := validateCurveRange(tc.from, tc.to)
		if tc.want == "" {
			if err != nil {
				t.Fatalf("unexpected error for %d..%d: %v", tc.from, tc.to, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("expected %q for %d..%d, got %v", tc.want, tc.from, tc.to, err)
		}
	}
}

func TestDefaultConfigTemplateLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Calc.Skill != nil || cfg.Plan.Online != nil || len(cfg.Presets) != 0 {
		t.Fatalf("expected commented template to set nothing: %+v", cfg)
	}
}

func TestLookupPresetRejectsUnknown(t *testing.T) {
	catalog := estimate.NewCatalog()
	if _, err := lookupPreset(catalog, "nosuch"); err == nil || !strings.Contains(err.Error(), "--preset") {
		t.Fatalf("expected --preset error, got %v", err)
	}
	table, err := lookupPreset(catalog, "Classic")
	if err != nil {
		t.Fatalf("lookup classic: %v", err)
	}
	if table.Name != estimate.PresetClassic {
		t.Fatalf("expected classic, got %q", table.Name)
	}
}

func TestPresetsCommandFailsOnUnknownPreset(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := newRootCmd()
	root.SetArgs([]string{"presets", "--preset", "nosuch"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.Execute(); err == nil {
		t.Fatalf("expected unknown preset to fail")
	}
	calcPreset = estimate.DefaultPreset
}

func TestRootFlagDefaults(t *testing.T) {
	flags := newRootCmd().PersistentFlags()
	want := map[string]string{
		"skill":        "102",
		"percent-left": "19",
		"loyalty":      "5",
		"method":       "online",
		"preset":       estimate.DefaultPreset,
	}
	for name, def := range want {
		flag := flags.Lookup(name)
		if flag == nil {
			t.Fatalf("missing flag --%s", name)
		}
		if flag.DefValue != def {
			t.Fatalf("--%s default = %q, want %q", name, flag.DefValue, def)
		}
	}
}
