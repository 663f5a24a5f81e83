package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/meleecalc/internal/progression"
)

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisSeparator       = " ┤ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var seriesColors = []string{
	"\x1b[36m", // cyan
	"\x1b[33m", // yellow
}

// Series is a named list of values indexed by level.
type Series struct {
	Name   string
	Values []float64
}

// CurveSeries returns points-per-level and cumulative points for levels in [from, to].
func CurveSeries(m progression.Model, from, to int) []Series {
	perLevel := make([]float64, 0, to-from+1)
	cumulative := make([]float64, 0, to-from+1)
	for level := from; level <= to; level++ {
		perLevel = append(perLevel, m.PointsForLevel(level))
		cumulative = append(cumulative, m.CumulativePoints(level))
	}
	return []Series{
		{Name: "Points for level", Values: perLevel},
		{Name: "Cumulative points", Values: cumulative},
	}
}

// PlotCurve renders the cost curve between two levels on a log10 scale.
// A width or height of zero picks a default.
func PlotCurve(w io.Writer, m progression.Model, from, to, width, height int, forceColor bool) error {
	if from >= to {
		return fmt.Errorf("level range is empty: %d..%d", from, to)
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	series := CurveSeries(m, from, to)

	lo, hi := logBounds(series)
	top := strings.TrimSpace(humanize.SIWithDigits(math.Pow(10, hi), 0, ""))
	bottom := strings.TrimSpace(humanize.SIWithDigits(math.Pow(10, lo), 0, ""))
	labelWidth := max(runewidth.StringWidth(top), runewidth.StringWidth(bottom))

	if width <= 0 {
		width = PlotWidthFor(terminalWidth(), labelWidth)
	}
	width = max(width, minPlotWidth)

	canvases := make([]*canvas, len(series))
	for i, s := range series {
		canvases[i] = newCanvas(width, height)
		canvases[i].plotLine(s.Values, lo, hi)
	}

	useColor := shouldUseColor(w, forceColor)
	if _, err := fmt.Fprintf(w, "Skill cost curve, levels %d-%d (log scale)\n", from, to); err != nil {
		return err
	}
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = top
		case height - 1:
			label = bottom
		}
		var row strings.Builder
		row.WriteString(runewidth.FillLeft(label, labelWidth))
		row.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			mask, idx := composeCell(canvases, x, y)
			ch := rune(0x2800 + int(mask))
			if useColor && idx >= 0 {
				row.WriteString(seriesColors[idx%len(seriesColors)])
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	axis := fmt.Sprintf("%*s%d%*d", labelWidth+runewidth.StringWidth(axisSeparator), "", from, width-len(fmt.Sprint(from)), to)
	if _, err := fmt.Fprintln(w, axis); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, renderLegend(series, useColor))
	return err
}

// PlotWidthFor computes a plot width that fits within totalWidth next to the axis labels.
func PlotWidthFor(totalWidth, labelWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	return max(totalWidth-labelWidth-runewidth.StringWidth(axisSeparator), minPlotWidth)
}

func logBounds(series []Series) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			l := log10Floor(v)
			lo = math.Min(lo, l)
			hi = math.Max(hi, l)
		}
	}
	lo, hi = math.Floor(lo), math.Ceil(hi)
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// log10Floor maps values below 1 (including the zero cumulative baseline) to 0.
func log10Floor(v float64) float64 {
	if v < 1 {
		return 0
	}
	return math.Log10(v)
}

type canvas struct {
	cells  [][]uint8
	width  int
	height int
}

func newCanvas(width, height int) *canvas {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return &canvas{cells: cells, width: width, height: height}
}

// plotLine maps values across the dot columns and joins consecutive dots.
func (c *canvas) plotLine(values []float64, lo, hi float64) {
	if len(values) == 0 {
		return
	}
	dotsX, dotsY := c.width*2, c.height*4
	prevX, prevY := -1, -1
	for x := 0; x < dotsX; x++ {
		pos := 0.0
		if dotsX > 1 {
			pos = float64(x) * float64(len(values)-1) / float64(dotsX-1)
		}
		idx := int(math.Floor(pos))
		v := log10Floor(values[idx])
		if idx < len(values)-1 {
			frac := pos - float64(idx)
			v = v*(1-frac) + log10Floor(values[idx+1])*frac
		}
		y := int(math.Round((1 - (v-lo)/(hi-lo)) * float64(dotsY-1)))
		y = min(max(y, 0), dotsY-1)
		if prevX >= 0 {
			drawLine(prevX, prevY, x, y, c.set)
		} else {
			c.set(x, y)
		}
		prevX, prevY = x, y
	}
}

func (c *canvas) set(x, y int) {
	cx, cy := x/2, y/4
	if x < 0 || y < 0 || cx >= c.width || cy >= c.height {
		return
	}
	c.cells[cy][cx] |= brailleDotMask(x%2, y%4)
}

func composeCell(canvases []*canvas, x, y int) (uint8, int) {
	var mask uint8
	idx := -1
	for i, c := range canvases {
		m := c.cells[y][x]
		if m == 0 {
			continue
		}
		if idx == -1 {
			idx = i
		}
		mask |= m
	}
	return mask, idx
}

// brailleDotMask returns the Unicode braille bit for a dot inside a 2x4 cell.
func brailleDotMask(x, y int) uint8 {
	left := [4]uint8{0x01, 0x02, 0x04, 0x40}
	right := [4]uint8{0x08, 0x10, 0x20, 0x80}
	if x == 0 {
		return left[y]
	}
	return right[y]
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := "⣿ " + s.Name
		if useColor {
			label = seriesColors[i%len(seriesColors)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
