// Package tui provides the Bubble Tea calculator form.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/meleecalc/internal/engine"
	"github.com/verte-zerg/meleecalc/internal/model"
	"github.com/verte-zerg/meleecalc/internal/report"
)

const (
	fieldSkill = iota
	fieldPercentLeft
	fieldTarget
	fieldLoyalty
	fieldMethod
	fieldOnline
	fieldOffline
	fieldDummy
	fieldCount
)

var planFields = map[int]model.TrainingMethod{
	fieldOnline:  model.MethodOnline,
	fieldOffline: model.MethodOffline,
	fieldDummy:   model.MethodDummy,
}

var planPrompts = map[int]string{
	fieldOnline:  "Online hours/week: ",
	fieldOffline: "Offline hours/week: ",
	fieldDummy:   "Dummy hours/week: ",
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	sectionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cardStyle     = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValue     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	formWrapStyle = lipgloss.NewStyle().Padding(1, 2)
)

// Model implements the Bubble Tea calculator UI.
type Model struct {
	engine *engine.Engine

	inputs    []textinput.Model
	focus     int
	methodIdx int
	formError string

	showResult bool
	output     engine.Output
	result     viewport.Model

	width  int
	height int
}

// NewModel constructs a form prefilled from defaults.
func NewModel(eng *engine.Engine, defaults engine.Input) *Model {
	m := &Model{
		engine: eng,
		result: viewport.New(0, 0),
	}
	m.initInputs(defaults)
	m.setFocus(fieldSkill)
	return m
}

func (m *Model) initInputs(defaults engine.Input) {
	m.inputs = make([]textinput.Model, fieldCount)
	m.inputs[fieldSkill] = newInput("Current melee skill level: ", strconv.Itoa(defaults.SkillLevel))
	m.inputs[fieldPercentLeft] = newInput("% left to next level: ", formatFloat(defaults.PercentLeft))
	m.inputs[fieldTarget] = newInput("Target level (optional): ", defaults.TargetRaw)
	m.inputs[fieldTarget].Placeholder = "next level"
	m.inputs[fieldLoyalty] = newInput("Loyalty bonus %: ", formatFloat(defaults.LoyaltyBonusPct))
	m.inputs[fieldMethod] = newInput("Training method: ", "")
	for idx := range planFields {
		m.inputs[idx] = newInput(planPrompts[idx], "")
		m.inputs[idx].Placeholder = "not planned"
	}
	for _, a := range defaults.Allocations {
		for idx, method := range planFields {
			if a.Method == method {
				m.inputs[idx].SetValue(formatFloat(a.HoursPerWeek))
			}
		}
	}
	for i, method := range model.Methods {
		if method == defaults.Method {
			m.methodIdx = i
		}
	}
}

func newInput(prompt, value string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 16
	input.Cursor.SetMode(cursor.CursorBlink)
	input.SetValue(value)
	return input
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.result.Width = msg.Width
		m.result.Height = maxInt(1, msg.Height-2)
		if m.showResult {
			m.result.SetContent(m.renderResult())
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.showResult {
			return m.updateResult(msg)
		}
		return m.updateForm(msg)
	}
	return m, nil
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace", "e":
		m.showResult = false
		return m, m.setFocus(m.focus)
	}
	var cmd tea.Cmd
	m.result, cmd = m.result.Update(msg)
	return m, cmd
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		m.submit()
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFocus(m.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFocus(m.focus - 1)
	}
	if m.focus == fieldMethod {
		switch msg.String() {
		case "left", "h":
			m.cycleMethod(-1)
		case "right", "l", " ":
			m.cycleMethod(1)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(idx int) tea.Cmd {
	if idx < 0 {
		idx = fieldCount - 1
	}
	if idx >= fieldCount {
		idx = 0
	}
	m.focus = idx
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == idx && i != fieldMethod {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) cycleMethod(delta int) {
	n := len(model.Methods)
	m.methodIdx = ((m.methodIdx+delta)%n + n) % n
}

func (m *Model) method() model.TrainingMethod {
	return model.Methods[m.methodIdx]
}

func (m *Model) submit() {
	in, err := m.buildInput()
	if err != nil {
		m.formError = err.Error()
		return
	}
	out, err := m.engine.Compute(in)
	if err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			m.formError = describeValidation(verr)
		} else {
			m.formError = err.Error()
		}
		return
	}
	m.formError = ""
	m.output = out
	m.showResult = true
	m.result.SetContent(m.renderResult())
	m.result.GotoTop()
}

// buildInput parses the form. Blank plan hours leave that method out of the plan.
func (m *Model) buildInput() (engine.Input, error) {
	skill, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldSkill].Value()))
	if err != nil {
		return engine.Input{}, fmt.Errorf("skill level must be a whole number")
	}
	percentLeft, err := parseFloat(m.inputs[fieldPercentLeft].Value())
	if err != nil {
		return engine.Input{}, fmt.Errorf("%% left must be a number")
	}
	loyalty, err := parseFloat(m.inputs[fieldLoyalty].Value())
	if err != nil {
		return engine.Input{}, fmt.Errorf("loyalty bonus must be a number")
	}
	in := engine.Input{
		SkillLevel:      skill,
		PercentLeft:     percentLeft,
		TargetRaw:       m.inputs[fieldTarget].Value(),
		LoyaltyBonusPct: loyalty,
		Method:          m.method(),
	}
	for _, idx := range []int{fieldOnline, fieldOffline, fieldDummy} {
		raw := strings.TrimSpace(m.inputs[idx].Value())
		if raw == "" {
			continue
		}
		hours, err := parseFloat(raw)
		if err != nil {
			return engine.Input{}, fmt.Errorf("%s hours must be a number", planFields[idx])
		}
		in.Allocations = append(in.Allocations, model.TrainingAllocation{Method: planFields[idx], HoursPerWeek: hours})
	}
	return in, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func describeValidation(verr *engine.ValidationError) string {
	parts := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return strings.Join(parts, "\n")
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.showResult {
		help := helpStyle.Render("Scroll: up/down/pgup/pgdn  Edit: esc  Quit: q")
		return m.result.View() + "\n" + help
	}
	return m.renderForm()
}

func (m *Model) renderForm() string {
	lines := []string{titleStyle.Render("Melee Skill Tracker"), ""}
	for i := 0; i < fieldCount; i++ {
		if i == fieldMethod {
			lines = append(lines, m.renderMethod())
			continue
		}
		lines = append(lines, m.inputs[i].View())
	}
	lines = append(lines, "", helpStyle.Render("tab/shift+tab: next field  left/right: method  enter: calculate  esc: quit"))
	if m.formError != "" {
		lines = append(lines, "", errorStyle.Render(m.formError))
	}
	return formWrapStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderMethod() string {
	label := m.method().Label()
	if m.focus == fieldMethod {
		return m.inputs[fieldMethod].Prompt + focusedStyle.Render("< "+label+" >")
	}
	return m.inputs[fieldMethod].Prompt + labelStyle.Render(label)
}

func (m *Model) renderResult() string {
	out := m.output
	cards := []string{
		metricCard("Progress", fmt.Sprintf("%.2f%%", out.ProgressDonePct)),
		metricCard(fmt.Sprintf("Points to %d", out.ResolvedTargetLevel), report.Points(out.PointsRemaining)),
		metricCard("Hours", fmt.Sprintf("%.2f", out.HoursSingleMethod)),
		metricCard("Days (plan)", fmt.Sprintf("%.1f", out.DaysBlended)),
	}
	var header string
	if m.width > 0 && m.width < 80 {
		header = strings.Join(cards, "\n")
	} else {
		header = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	var body strings.Builder
	for _, section := range report.Sections(out) {
		body.WriteString(sectionStyle.Render(section.Title))
		body.WriteString("\n")
		for _, row := range section.Rows {
			body.WriteString("  " + labelStyle.Render(row[0]+":") + " " + row[1] + "\n")
		}
		body.WriteString("\n")
	}
	return header + "\n\n" + body.String() + helpStyle.Render(report.Caption(out))
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitle.Render(label) + "\n" + cardValue.Render(value))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
