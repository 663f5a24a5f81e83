// Package estimate converts point deficits into training time.
//
// All estimates assume a constant hit rate: no diminishing returns, no
// session-length effects and no downtime.
package estimate

import "github.com/verte-zerg/meleecalc/internal/model"

const daysPerWeek = 7

// Estimator computes training time under a fixed rate table.
type Estimator struct {
	rates RateTable
}

// New returns an Estimator for rates.
func New(rates RateTable) Estimator {
	return Estimator{rates: rates}
}

// Rates returns the rate table in use.
func (e Estimator) Rates() RateTable {
	return e.rates
}

// SingleMethodHours returns points/rate, or 0 when rate is not positive.
func SingleMethodHours(points, rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return points / rate
}

// MethodHours returns the hours needed using only method.
func (e Estimator) MethodHours(points float64, method model.TrainingMethod) float64 {
	return SingleMethodHours(points, e.rates.RateOf(method))
}

// BlendedPlan estimates weeks and days under a weekly allocation plan.
// Only methods listed in allocations contribute hits.
func (e Estimator) BlendedPlan(points float64, allocations []model.TrainingAllocation) model.TimeEstimate {
	var est model.TimeEstimate
	for _, a := range allocations {
		est.WeeklyHits += a.HoursPerWeek * e.rates.RateOf(a.Method)
		est.WeeklyHours += a.HoursPerWeek
	}
	if est.WeeklyHits > 0 {
		est.WeeksBlended = points / est.WeeklyHits
	}
	est.DaysBlended = est.WeeksBlended * daysPerWeek
	return est
}

// Estimate combines the single-method and blended estimates.
func (e Estimator) Estimate(points float64, method model.TrainingMethod, allocations []model.TrainingAllocation) model.TimeEstimate {
	est := e.BlendedPlan(points, allocations)
	est.HoursSingleMethod = e.MethodHours(points, method)
	return est
}
