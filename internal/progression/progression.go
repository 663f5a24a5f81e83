// Package progression implements the skill point cost curve.
package progression

import (
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/meleecalc/internal/model"
)

// Model converts skill levels and progress into point totals.
type Model struct {
	curve model.Curve
}

// New returns a Model for the given curve.
func New(curve model.Curve) Model {
	return Model{curve: curve}
}

// Curve returns the curve constants.
func (m Model) Curve() model.Curve {
	return m.curve
}

// CumulativePoints returns the points needed to reach level from the baseline.
func (m Model) CumulativePoints(level int) float64 {
	c := m.curve
	return c.A * (math.Pow(c.B, float64(level)-c.C) - 1) / (c.B - 1)
}

// PointsForLevel returns the points needed to advance from level to level+1.
func (m Model) PointsForLevel(level int) float64 {
	c := m.curve
	return c.A * math.Pow(c.B, float64(level)-c.C)
}

// PointsInCurrentLevel returns the points already earned inside the current level.
func (m Model) PointsInCurrentLevel(state model.SkillState) float64 {
	return m.PointsForLevel(state.Level) * state.ProgressFraction
}

// TotalPointsSoFar returns the cumulative points including partial progress.
func (m Model) TotalPointsSoFar(state model.SkillState) float64 {
	return m.CumulativePoints(state.Level) + m.PointsInCurrentLevel(state)
}

// PointsRemaining returns the deficit to targetLevel. It is 0 when targetLevel
// is not above state.Level and never negative otherwise.
func (m Model) PointsRemaining(state model.SkillState, targetLevel int) float64 {
	if targetLevel <= state.Level {
		return 0
	}
	// Rest of the current level plus the whole levels up to the target.
	whole := m.CumulativePoints(targetLevel) - m.CumulativePoints(state.Level+1)
	return math.Max(0, m.RawPointsToNextLevel(state)+whole)
}

// Progress computes the target-based figures for state.
func (m Model) Progress(state model.SkillState, targetLevel int) model.ProgressionResult {
	return model.ProgressionResult{
		TotalPointsSoFar: m.TotalPointsSoFar(state),
		PointsForTarget:  m.CumulativePoints(targetLevel),
		PointsRemaining:  m.PointsRemaining(state, targetLevel),
		TargetLevel:      targetLevel,
	}
}

// RawPointsToNextLevel returns the remainder within the current level only.
func (m Model) RawPointsToNextLevel(state model.SkillState) float64 {
	return math.Max(0, m.PointsForLevel(state.Level)*(1-state.ProgressFraction))
}

// ApplyLoyalty discounts raw by bonusPct percent.
func ApplyLoyalty(raw, bonusPct float64) model.LoyaltyAdjustment {
	adjusted := raw * (1 - bonusPct/100)
	return model.LoyaltyAdjustment{
		BonusPct: bonusPct,
		Raw:      raw,
		Discount: raw - adjusted,
		Adjusted: adjusted,
	}
}

// ParseOptionalTarget parses a free-text target level. It reports false for
// blank input, anything that is not an integer, and levels outside the
// supported range.
func ParseOptionalTarget(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	level, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	if level < model.MinLevel || level > model.MaxLevel {
		return 0, false
	}
	return level, true
}

// ResolveTargetLevel picks the target level for current. Missing, invalid or
// non-increasing targets fall back to the next level, capped at MaxLevel.
func ResolveTargetLevel(current int, raw string) int {
	target, ok := ParseOptionalTarget(raw)
	if !ok || target <= current {
		return min(current+1, model.MaxLevel)
	}
	return target
}
