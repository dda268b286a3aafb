package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"

	"motionpanel/api"
)

const (
	fieldStream = iota
	fieldTrack
	fieldDevice
	fieldParam
	fieldRangeMin
	fieldRangeMax
	fieldSmoothing
	fieldEnabled
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"stream", "track", "device", "param", "min", "max", "smooth", "enabled",
}

// mappingForm collects the create-mapping fields. It never validates beyond
// numeric coercion; the backend decides and its message is surfaced in the
// notice line, with the field values left intact for retry.
type mappingForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
}

func newMappingForm(stream string) *mappingForm {
	f := &mappingForm{}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 32
		in.Width = 10
		f.inputs[i] = in
	}
	f.inputs[fieldStream].SetValue(stream)
	f.inputs[fieldStream].Width = 16
	f.inputs[fieldTrack].Placeholder = "0"
	f.inputs[fieldDevice].Placeholder = "0"
	f.inputs[fieldParam].Placeholder = "0"
	f.inputs[fieldRangeMin].SetValue("0")
	f.inputs[fieldRangeMax].SetValue("1")
	f.inputs[fieldSmoothing].SetValue("0")
	f.inputs[fieldEnabled].SetValue("y")
	return f
}

func (f *mappingForm) focusCmd() tui.Cmd {
	return f.inputs[f.focus].Focus()
}

func (f *mappingForm) focusNext() tui.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + 1) % fieldCount
	return f.inputs[f.focus].Focus()
}

func (f *mappingForm) focusPrev() tui.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + fieldCount - 1) % fieldCount
	return f.inputs[f.focus].Focus()
}

func (f *mappingForm) update(msg tui.Msg) tui.Cmd {
	var cmd tui.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// setTarget fills the target indices from the DAW's last-selected
// parameter.
func (f *mappingForm) setTarget(p *api.SelectedParameter) {
	f.inputs[fieldTrack].SetValue(strconv.Itoa(p.TrackIndex))
	f.inputs[fieldDevice].SetValue(strconv.Itoa(p.DeviceIndex))
	f.inputs[fieldParam].SetValue(strconv.Itoa(p.ParamIndex))
}

func (f *mappingForm) request() api.MappingRequest {
	return api.MappingRequest{
		MotionStream:   strings.TrimSpace(f.inputs[fieldStream].Value()),
		TrackIndex:     atoiOr(f.inputs[fieldTrack].Value()),
		DeviceIndex:    atoiOr(f.inputs[fieldDevice].Value()),
		ParameterIndex: atoiOr(f.inputs[fieldParam].Value()),
		RangeMin:       parseFloatOr(f.inputs[fieldRangeMin].Value()),
		RangeMax:       parseFloatOr(f.inputs[fieldRangeMax].Value()),
		Smoothing:      parseFloatOr(f.inputs[fieldSmoothing].Value()),
		Enabled:        parseEnabled(f.inputs[fieldEnabled].Value()),
	}
}

func (f *mappingForm) View() string {
	var sb strings.Builder
	sb.WriteString(borderFg.Render("NEW MAPPING"))
	labelFg := dimFg
	focusFg := styles.NewStyle().Foreground(selectedColor)
	for i := range f.inputs {
		if i == 0 || i == fieldRangeMin {
			sb.WriteString("\n  ")
		} else {
			sb.WriteString("  ")
		}
		label := fieldLabels[i]
		if i == f.focus {
			sb.WriteString(focusFg.Render(label))
		} else {
			sb.WriteString(labelFg.Render(label))
		}
		sb.WriteString(" ")
		sb.WriteString(f.inputs[i].View())
	}
	return sb.String()
}

func atoiOr(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseFloatOr(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseEnabled(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "no", "false", "0", "off":
		return false
	}
	return true
}

type formKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Grab   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Grab, k.Submit, k.Cancel}
}

func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.Grab, k.Submit, k.Cancel},
	}
}

var formKeys = formKeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev field"),
	),
	Grab: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "grab last-selected"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "create"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}
