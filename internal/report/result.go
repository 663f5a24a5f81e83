// Package report renders calculation results as text.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/meleecalc/internal/engine"
	"github.com/verte-zerg/meleecalc/internal/estimate"
	"github.com/verte-zerg/meleecalc/internal/model"
)

// Section is a titled list of label/value rows.
type Section struct {
	Title string
	Rows  [][2]string
}

// Points formats a point amount with thousands separators and no decimals.
func Points(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// Hours formats an hour amount with two decimals.
func Hours(v float64) string {
	return fmt.Sprintf("%.2f hours", v)
}

// Sections groups an output into the sections shown to the user.
func Sections(out engine.Output) []Section {
	return []Section{
		{
			Title: "Progress",
			Rows: [][2]string{
				{"Skill Level", fmt.Sprintf("%d", out.Level)},
				{"Progress Done", fmt.Sprintf("%.2f%%", out.ProgressDonePct)},
				{"Points Accumulated in Current Level", Points(out.PointsInCurrentLevel)},
				{"Total Skill Points So Far", Points(out.TotalPointsSoFar)},
				{"Points Needed for Next Level", Points(out.PointsForNextLevel)},
			},
		},
		{
			Title: targetTitle(out),
			Rows: [][2]string{
				{"Total Points at Target", Points(out.PointsForTargetLevel)},
				{"Points Remaining", Points(out.PointsRemaining)},
				{"Estimated Time", Hours(out.HoursSingleMethod)},
			},
		},
		{
			Title: "Weekly Plan",
			Rows:  planRows(out),
		},
		{
			Title: "Next Level with Loyalty Bonus",
			Rows: [][2]string{
				{"Raw Points Remaining", Points(out.Loyalty.RawPointsRemaining)},
				{fmt.Sprintf("Loyalty Bonus Applied (%.1f%%)", out.Loyalty.BonusPct), "-" + Points(out.Loyalty.Discount) + " points"},
				{"Effective Points Remaining", Points(out.Loyalty.AdjustedPointsRemaining)},
				{"Estimated Time to Next Level", Hours(out.Loyalty.Hours)},
			},
		},
	}
}

func targetTitle(out engine.Output) string {
	if out.MaxLevelReached {
		return fmt.Sprintf("Target Level %d (maximum level reached)", out.ResolvedTargetLevel)
	}
	return fmt.Sprintf("Target Level %d", out.ResolvedTargetLevel)
}

func planRows(out engine.Output) [][2]string {
	if out.WeeklyHits <= 0 {
		return [][2]string{{"Training Hours per Week", fmt.Sprintf("%.1f", out.WeeklyHours)}, {"Estimate", "no weekly training planned"}}
	}
	return [][2]string{
		{"Training Hours per Week", fmt.Sprintf("%.1f", out.WeeklyHours)},
		{"Hits per Week", Points(out.WeeklyHits)},
		{"Weeks to Target", fmt.Sprintf("%.2f", out.WeeksBlended)},
		{"Days to Target", fmt.Sprintf("%.1f", out.DaysBlended)},
	}
}

// Caption describes the training method and its hit rate.
func Caption(out engine.Output) string {
	return fmt.Sprintf("Training: %s · Hits/hour: %s · Preset: %s", out.Method.Label(), Points(out.HitsPerHour), out.Preset)
}

// RenderResult prints all sections of out.
func RenderResult(w io.Writer, out engine.Output) error {
	for _, section := range Sections(out) {
		if _, err := fmt.Fprintln(w, section.Title); err != nil {
			return err
		}
		rows := make([][]string, 0, len(section.Rows))
		for _, r := range section.Rows {
			rows = append(rows, []string{"  " + r[0], r[1]})
		}
		for _, line := range formatTable(nil, rows, map[int]bool{1: true}) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, Caption(out))
	return err
}

// RenderJSON prints out as indented JSON.
func RenderJSON(w io.Writer, out engine.Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// RenderYAML prints out as a YAML document using the JSON field names.
func RenderYAML(w io.Writer, out engine.Output) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

// RenderPresets prints the hit rate tables.
func RenderPresets(w io.Writer, tables []estimate.RateTable, active string) error {
	if len(tables) == 0 {
		_, err := fmt.Fprintln(w, "No presets found.")
		return err
	}
	headers := []string{"", "Preset", "Online", "Offline", "Dummy", "Fallback"}
	rows := make([][]string, 0, len(tables))
	for _, t := range tables {
		marker := ""
		if t.Name == active {
			marker = "*"
		}
		rows = append(rows, []string{
			marker,
			t.Name,
			Points(t.RateOf(model.MethodOnline)),
			Points(t.RateOf(model.MethodOffline)),
			Points(t.RateOf(model.MethodDummy)),
			Points(t.Fallback),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true, 5: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
