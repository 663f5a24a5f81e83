package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/verte-zerg/meleecalc/internal/estimate"
	"github.com/verte-zerg/meleecalc/internal/model"
)

func approxEqual(a, b, relTol float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= relTol*scale
}

func scenarioInput() Input {
	return Input{
		SkillLevel:      102,
		PercentLeft:     19.0,
		LoyaltyBonusPct: 5.0,
		Method:          model.MethodOffline,
		Allocations: []model.TrainingAllocation{
			{Method: model.MethodOnline, HoursPerWeek: 7},
			{Method: model.MethodOffline, HoursPerWeek: 42},
		},
	}
}

func TestComputeScenario(t *testing.T) {
	e := New(DefaultConfig())
	out, err := e.Compute(scenarioInput())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	pNext := 50 * math.Pow(1.1, 92)
	tpCurrent := 50 * (math.Pow(1.1, 92) - 1) / 0.1
	deficit := pNext * 0.19

	if !approxEqual(out.ProgressDonePct, 81, 1e-12) {
		t.Fatalf("expected 81%% done, got %v", out.ProgressDonePct)
	}
	if !approxEqual(out.PointsForNextLevel, pNext, 1e-12) {
		t.Fatalf("expected P_next %v, got %v", pNext, out.PointsForNextLevel)
	}
	if !approxEqual(out.PointsInCurrentLevel, pNext*0.81, 1e-12) {
		t.Fatalf("expected points done %v, got %v", pNext*0.81, out.PointsInCurrentLevel)
	}
	if !approxEqual(out.TotalPointsSoFar, tpCurrent+pNext*0.81, 1e-12) {
		t.Fatalf("unexpected total points %v", out.TotalPointsSoFar)
	}
	if out.ResolvedTargetLevel != 103 {
		t.Fatalf("expected target 103, got %d", out.ResolvedTargetLevel)
	}
	if !approxEqual(out.PointsRemaining, deficit, 1e-9) {
		t.Fatalf("expected deficit %v, got %v", deficit, out.PointsRemaining)
	}
	if out.HitsPerHour != 3000 {
		t.Fatalf("expected 3000 hits/hour, got %v", out.HitsPerHour)
	}
	if !approxEqual(out.HoursSingleMethod, deficit/3000, 1e-9) {
		t.Fatalf("expected %v hours, got %v", deficit/3000, out.HoursSingleMethod)
	}
	if out.WeeklyHits != 138600 {
		t.Fatalf("expected 138600 weekly hits, got %v", out.WeeklyHits)
	}
	if !approxEqual(out.WeeksBlended, deficit/138600, 1e-9) {
		t.Fatalf("expected %v weeks, got %v", deficit/138600, out.WeeksBlended)
	}
	if !approxEqual(out.DaysBlended, out.WeeksBlended*7, 1e-12) {
		t.Fatalf("expected days = weeks*7, got %v", out.DaysBlended)
	}
	if !approxEqual(out.Loyalty.AdjustedPointsRemaining, deficit*0.95, 1e-9) {
		t.Fatalf("expected adjusted %v, got %v", deficit*0.95, out.Loyalty.AdjustedPointsRemaining)
	}
	if !approxEqual(out.Loyalty.Hours, deficit*0.95/3000, 1e-9) {
		t.Fatalf("expected loyalty hours %v, got %v", deficit*0.95/3000, out.Loyalty.Hours)
	}
}

func TestLoyaltyDoesNotChangeTargetPath(t *testing.T) {
	e := New(DefaultConfig())
	in := scenarioInput()
	in.LoyaltyBonusPct = 0
	base, err := e.Compute(in)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	in.LoyaltyBonusPct = 50
	discounted, err := e.Compute(in)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if base.PointsRemaining != discounted.PointsRemaining || base.HoursSingleMethod != discounted.HoursSingleMethod {
		t.Fatalf("loyalty bonus leaked into target path: %+v vs %+v", base, discounted)
	}
	if discounted.Loyalty.AdjustedPointsRemaining >= base.Loyalty.AdjustedPointsRemaining {
		t.Fatalf("expected loyalty path to be discounted")
	}
}

func TestComputeTargetLevel(t *testing.T) {
	e := New(DefaultConfig())
	in := scenarioInput()
	in.TargetRaw = "150"
	out, err := e.Compute(in)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if out.ResolvedTargetLevel != 150 {
		t.Fatalf("expected target 150, got %d", out.ResolvedTargetLevel)
	}
	if out.PointsRemaining <= out.Loyalty.RawPointsRemaining {
		t.Fatalf("expected multi-level deficit to exceed current-level remainder")
	}

	in.TargetRaw = "not a level"
	out, err = e.Compute(in)
	if err != nil {
		t.Fatalf("malformed target must not fail: %v", err)
	}
	if out.ResolvedTargetLevel != 103 {
		t.Fatalf("expected fallback target 103, got %d", out.ResolvedTargetLevel)
	}
}

func TestComputeClassicPreset(t *testing.T) {
	rates, err := estimate.NewCatalog().Lookup(estimate.PresetClassic)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	e := New(Config{Curve: model.DefaultCurve(), Rates: rates})
	in := scenarioInput()
	in.Method = model.MethodOnline
	out, err := e.Compute(in)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if out.Preset != estimate.PresetClassic || out.HitsPerHour != 7200 {
		t.Fatalf("unexpected preset output: %s %v", out.Preset, out.HitsPerHour)
	}
	if out.WeeklyHits != 7*7200+42*3000 {
		t.Fatalf("unexpected weekly hits %v", out.WeeklyHits)
	}
}

func TestComputeValidation(t *testing.T) {
	e := New(DefaultConfig())
	cases := []struct {
		name  string
		edit  func(in *Input)
		field string
	}{
		{name: "skill too low", edit: func(in *Input) { in.SkillLevel = 9 }, field: "skillLevel"},
		{name: "skill too high", edit: func(in *Input) { in.SkillLevel = 201 }, field: "skillLevel"},
		{name: "percent negative", edit: func(in *Input) { in.PercentLeft = -0.5 }, field: "percentLeftToNext"},
		{name: "percent too high", edit: func(in *Input) { in.PercentLeft = 100.5 }, field: "percentLeftToNext"},
		{name: "percent NaN", edit: func(in *Input) { in.PercentLeft = math.NaN() }, field: "percentLeftToNext"},
		{name: "loyalty too high", edit: func(in *Input) { in.LoyaltyBonusPct = 51 }, field: "loyaltyBonusPct"},
		{name: "missing method", edit: func(in *Input) { in.Method = model.MethodUnknown }, field: "trainingMethod"},
		{name: "bad method", edit: func(in *Input) { in.Method = "magic" }, field: "trainingMethod"},
		{name: "negative hours", edit: func(in *Input) { in.Allocations[1].HoursPerWeek = -1 }, field: "weeklyAllocations[1].hoursPerWeek"},
		{name: "bad allocation method", edit: func(in *Input) { in.Allocations[0].Method = "x" }, field: "weeklyAllocations[0].method"},
	}
	for _, tc := range cases {
		in := scenarioInput()
		tc.edit(&in)
		_, err := e.Compute(in)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
		if !verr.Has(tc.field) {
			t.Fatalf("%s: expected field %s in %v", tc.name, tc.field, verr)
		}
	}
}

func TestComputeBoundaryValues(t *testing.T) {
	e := New(DefaultConfig())
	in := Input{SkillLevel: 200, PercentLeft: 0, LoyaltyBonusPct: 50, Method: model.MethodDummy}
	out, err := e.Compute(in)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if out.ResolvedTargetLevel != model.MaxLevel || !out.MaxLevelReached {
		t.Fatalf("expected capped target %d at max level, got %d (maxed=%v)", model.MaxLevel, out.ResolvedTargetLevel, out.MaxLevelReached)
	}
	if out.PointsRemaining != 0 || out.HoursSingleMethod != 0 || out.Loyalty.AdjustedPointsRemaining != 0 {
		t.Fatalf("expected nothing remaining at max level, got %+v", out)
	}
	if out.WeeksBlended != 0 || out.DaysBlended != 0 {
		t.Fatalf("expected zero blended estimate without allocations, got %+v", out)
	}
	in = Input{SkillLevel: 10, PercentLeft: 100, Method: model.MethodOnline}
	out, err = e.Compute(in)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if out.TotalPointsSoFar != 0 || !approxEqual(out.PointsRemaining, 50, 1e-12) {
		t.Fatalf("unexpected baseline output: %+v", out)
	}
}

func TestComputeNeverNegativeAtFullProgress(t *testing.T) {
	e := New(DefaultConfig())
	for level := model.MinLevel; level <= model.MaxLevel; level++ {
		for _, pct := range []float64{0, 1.1e-13, 1e-9} {
			out, err := e.Compute(Input{
				SkillLevel:  level,
				PercentLeft: pct,
				Method:      model.MethodOnline,
				Allocations: []model.TrainingAllocation{{Method: model.MethodOffline, HoursPerWeek: 10}},
			})
			if err != nil {
				t.Fatalf("compute level %d: %v", level, err)
			}
			if out.PointsRemaining < 0 || out.HoursSingleMethod < 0 || out.WeeksBlended < 0 || out.Loyalty.RawPointsRemaining < 0 {
				t.Fatalf("negative figures at level %d, %v%% left: %+v", level, pct, out)
			}
		}
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	e := New(DefaultConfig())
	in := scenarioInput()
	in.TargetRaw = "120"
	first, err := e.Compute(in)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	second, err := e.Compute(in)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("expected identical output:\n%s\n%s", a, b)
	}
}
