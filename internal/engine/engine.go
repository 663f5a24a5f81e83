// Package engine validates a calculation request and runs the progression
// model followed by the time estimator.
package engine

import (
	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/meleecalc/internal/estimate"
	"github.com/verte-zerg/meleecalc/internal/model"
	"github.com/verte-zerg/meleecalc/internal/progression"
)

// Config is the immutable configuration shared by every computation.
type Config struct {
	Curve model.Curve
	Rates estimate.RateTable
}

// DefaultConfig uses the melee curve and the default rate preset.
func DefaultConfig() Config {
	rates, _ := estimate.NewCatalog().Lookup(estimate.DefaultPreset)
	return Config{Curve: model.DefaultCurve(), Rates: rates}
}

// Input is a calculation request.
type Input struct {
	SkillLevel      int                        `json:"skillLevel" validate:"gte=10,lte=200"`
	PercentLeft     float64                    `json:"percentLeftToNext" validate:"gte=0,lte=100"`
	TargetRaw       string                     `json:"targetLevel,omitempty"`
	LoyaltyBonusPct float64                    `json:"loyaltyBonusPct" validate:"gte=0,lte=50"`
	Method          model.TrainingMethod       `json:"trainingMethod" validate:"method"`
	Allocations     []model.TrainingAllocation `json:"weeklyAllocations,omitempty" validate:"dive"`
}

// LoyaltyOutput is the current-level deficit with the loyalty bonus applied.
// It does not affect the target-based figures.
type LoyaltyOutput struct {
	BonusPct                float64 `json:"bonusPct" yaml:"bonusPct"`
	RawPointsRemaining      float64 `json:"rawPointsRemaining" yaml:"rawPointsRemaining"`
	Discount                float64 `json:"discount" yaml:"discount"`
	AdjustedPointsRemaining float64 `json:"adjustedPointsRemaining" yaml:"adjustedPointsRemaining"`
	Hours                   float64 `json:"hours" yaml:"hours"`
}

// Output is the result of one computation.
type Output struct {
	Level                int                  `json:"level" yaml:"level"`
	ProgressDonePct      float64              `json:"progressDonePct" yaml:"progressDonePct"`
	PointsInCurrentLevel float64              `json:"pointsInCurrentLevel" yaml:"pointsInCurrentLevel"`
	TotalPointsSoFar     float64              `json:"totalPointsSoFar" yaml:"totalPointsSoFar"`
	PointsForNextLevel   float64              `json:"pointsForNextLevel" yaml:"pointsForNextLevel"`
	PointsForTargetLevel float64              `json:"pointsForTargetLevel" yaml:"pointsForTargetLevel"`
	PointsRemaining      float64              `json:"pointsRemaining" yaml:"pointsRemaining"`
	ResolvedTargetLevel  int                  `json:"resolvedTargetLevel" yaml:"resolvedTargetLevel"`
	MaxLevelReached      bool                 `json:"maxLevelReached" yaml:"maxLevelReached"`
	Method               model.TrainingMethod `json:"trainingMethod" yaml:"trainingMethod"`
	Preset               string               `json:"preset" yaml:"preset"`
	HitsPerHour          float64              `json:"hitsPerHour" yaml:"hitsPerHour"`
	HoursSingleMethod    float64              `json:"hoursSingleMethod" yaml:"hoursSingleMethod"`
	WeeklyHours          float64              `json:"weeklyHours" yaml:"weeklyHours"`
	WeeklyHits           float64              `json:"weeklyHits" yaml:"weeklyHits"`
	WeeksBlended         float64              `json:"weeksBlended" yaml:"weeksBlended"`
	DaysBlended          float64              `json:"daysBlended" yaml:"daysBlended"`
	Loyalty              LoyaltyOutput        `json:"loyalty" yaml:"loyalty"`
}

// Engine runs calculations. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg         Config
	progression progression.Model
	estimator   estimate.Estimator
	validate    *validator.Validate
}

// New returns an Engine for cfg.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:         cfg,
		progression: progression.New(cfg.Curve),
		estimator:   estimate.New(cfg.Rates),
		validate:    newValidator(),
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Validate checks in without computing anything.
func (e *Engine) Validate(in Input) error {
	return validateInput(e.validate, in)
}

// Compute validates in and returns the progression and time figures.
func (e *Engine) Compute(in Input) (Output, error) {
	if err := e.Validate(in); err != nil {
		return Output{}, err
	}

	state := model.StateFromPercentLeft(in.SkillLevel, in.PercentLeft)
	target := progression.ResolveTargetLevel(in.SkillLevel, in.TargetRaw)
	prog := e.progression.Progress(state, target)
	est := e.estimator.Estimate(prog.PointsRemaining, in.Method, in.Allocations)

	maxed := in.SkillLevel >= model.MaxLevel
	raw := e.progression.RawPointsToNextLevel(state)
	if maxed {
		raw = 0
	}
	loyalty := progression.ApplyLoyalty(raw, in.LoyaltyBonusPct)

	return Output{
		Level:                in.SkillLevel,
		ProgressDonePct:      state.ProgressFraction * 100,
		PointsInCurrentLevel: e.progression.PointsInCurrentLevel(state),
		TotalPointsSoFar:     prog.TotalPointsSoFar,
		PointsForNextLevel:   e.progression.PointsForLevel(in.SkillLevel),
		PointsForTargetLevel: prog.PointsForTarget,
		PointsRemaining:      prog.PointsRemaining,
		ResolvedTargetLevel:  prog.TargetLevel,
		MaxLevelReached:      maxed,
		Method:               in.Method,
		Preset:               e.cfg.Rates.Name,
		HitsPerHour:          e.cfg.Rates.RateOf(in.Method),
		HoursSingleMethod:    est.HoursSingleMethod,
		WeeklyHours:          est.WeeklyHours,
		WeeklyHits:           est.WeeklyHits,
		WeeksBlended:         est.WeeksBlended,
		DaysBlended:          est.DaysBlended,
		Loyalty: LoyaltyOutput{
			BonusPct:                loyalty.BonusPct,
			RawPointsRemaining:      loyalty.Raw,
			Discount:                loyalty.Discount,
			AdjustedPointsRemaining: loyalty.Adjusted,
			Hours:                   e.estimator.MethodHours(loyalty.Adjusted, in.Method),
		},
	}, nil
}
