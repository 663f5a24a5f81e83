package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/meleecalc/internal/model"
	"github.com/verte-zerg/meleecalc/internal/progression"
)

func TestPlotCurve(t *testing.T) {
	m := progression.New(model.DefaultCurve())
	var buf bytes.Buffer
	if err := PlotCurve(&buf, m, 10, 120, 30, 4, false); err != nil {
		t.Fatalf("PlotCurve failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "levels 10-120") {
		t.Fatalf("expected title in output: %s", out)
	}
	if !strings.Contains(out, "Legend:") || !strings.Contains(out, "Cumulative points") {
		t.Fatalf("expected legend in output: %s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes when writing to a buffer")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1+4+1+1 {
		t.Fatalf("expected 7 lines, got %d:\n%s", len(lines), out)
	}
	for _, line := range lines[1:5] {
		if !strings.Contains(line, axisSeparator) {
			t.Fatalf("expected axis separator in plot row %q", line)
		}
	}
	if !strings.HasSuffix(lines[5], "120") {
		t.Fatalf("expected level axis to end with 120: %q", lines[5])
	}
}

func TestPlotCurveRejectsEmptyRange(t *testing.T) {
	m := progression.New(model.DefaultCurve())
	var buf bytes.Buffer
	if err := PlotCurve(&buf, m, 50, 50, 20, 4, false); err == nil {
		t.Fatalf("expected error for empty range")
	}
}

func TestPlotWidthFor(t *testing.T) {
	expected := 80 - 4 - runewidth.StringWidth(axisSeparator)
	if got := PlotWidthFor(80, 4); got != expected {
		t.Fatalf("expected width %d, got %d", expected, got)
	}
	if got := PlotWidthFor(0, 4); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestCurveSeries(t *testing.T) {
	m := progression.New(model.DefaultCurve())
	series := CurveSeries(m, 10, 12)
	if len(series) != 2 || len(series[0].Values) != 3 {
		t.Fatalf("unexpected series: %+v", series)
	}
	if series[0].Values[0] != 50 || series[1].Values[0] != 0 {
		t.Fatalf("unexpected first values: %v %v", series[0].Values[0], series[1].Values[0])
	}
}
