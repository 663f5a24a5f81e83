// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
)

// Supported skill level range.
const (
	MinLevel = 10
	MaxLevel = 200
)

// Curve holds the constants of the exponential skill cost curve.
type Curve struct {
	A float64 // base scale
	B float64 // growth base
	C float64 // level offset
}

// DefaultCurve returns the melee curve (A=50, b=1.1, c=10).
func DefaultCurve() Curve {
	return Curve{A: 50, B: 1.1, C: 10}
}

// SkillState is a skill level plus the fraction of the current level already done.
type SkillState struct {
	Level            int
	ProgressFraction float64
}

// StateFromPercentLeft builds a SkillState from the "% left to next level" value.
func StateFromPercentLeft(level int, percentLeft float64) SkillState {
	return SkillState{Level: level, ProgressFraction: 1 - percentLeft/100}
}

// TrainingMethod identifies an in-game activity that generates skill points.
type TrainingMethod string

// Known training methods.
const (
	MethodUnknown TrainingMethod = ""
	MethodOnline  TrainingMethod = "online"
	MethodOffline TrainingMethod = "offline"
	MethodDummy   TrainingMethod = "dummy"
)

// Methods lists the known methods in display order.
var Methods = []TrainingMethod{MethodOnline, MethodOffline, MethodDummy}

// ParseMethod accepts a method name case-insensitively.
func ParseMethod(s string) (TrainingMethod, error) {
	switch TrainingMethod(strings.ToLower(strings.TrimSpace(s))) {
	case MethodOnline:
		return MethodOnline, nil
	case MethodOffline:
		return MethodOffline, nil
	case MethodDummy:
		return MethodDummy, nil
	}
	return MethodUnknown, fmt.Errorf("unknown training method %q (use online, offline or dummy)", s)
}

// Label returns the long human-readable name.
func (m TrainingMethod) Label() string {
	switch m {
	case MethodOnline:
		return "Online Training (monster combat)"
	case MethodOffline:
		return "Offline Training (stamina bed)"
	case MethodDummy:
		return "Dummy Training (training weapon at dummy)"
	default:
		return "Unknown"
	}
}

// TrainingAllocation is the weekly time spent on one method.
type TrainingAllocation struct {
	Method       TrainingMethod `json:"method" validate:"oneof=online offline dummy"`
	HoursPerWeek float64        `json:"hoursPerWeek" validate:"gte=0,lte=168"`
}

// ProgressionResult holds the target-based point figures.
type ProgressionResult struct {
	TotalPointsSoFar float64
	PointsForTarget  float64
	PointsRemaining  float64
	TargetLevel      int
}

// TimeEstimate holds elapsed-time figures for a point deficit.
type TimeEstimate struct {
	HoursSingleMethod float64
	WeeklyHours       float64
	WeeklyHits        float64
	WeeksBlended      float64
	DaysBlended       float64
}

// LoyaltyAdjustment is the raw current-level deficit with the loyalty discount applied.
type LoyaltyAdjustment struct {
	BonusPct float64
	Raw      float64
	Discount float64
	Adjusted float64
}
