package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"

	"motionpanel/api"
	"motionpanel/chart"
	"motionpanel/store"
)

var (
	selectedColor = styles.AdaptiveColor{Light: "0", Dark: "9"}
	borderColor   = styles.AdaptiveColor{Light: "#555", Dark: "#555"}
	noticeColor   = styles.AdaptiveColor{Light: "1", Dark: "9"}
	borderFg      = styles.NewStyle().Foreground(borderColor)
	noticeFg      = styles.NewStyle().Foreground(noticeColor)
	dimFg         = styles.NewStyle().Foreground(styles.AdaptiveColor{Light: "#999", Dark: "#777"})
	plotStyle     = styles.NewStyle().
			BorderStyle(styles.NormalBorder()).
			Foreground(borderColor).
			BorderForeground(borderColor)
)

// Lines reserved under the panes for the mapping table, notice/form area
// and help footer.
const bottomLines = 10

type model struct {
	ctx    context.Context
	client *api.Client
	panel  *store.Panel

	width, height  int
	leftPaneWidth  int
	rightPaneWidth int

	list      list.Model
	listStyle styles.Style
	help      help.Model
	plot      *plot.Canvas

	directory []string
	mappings  []api.Mapping
	series    []chart.Series

	form   *mappingForm
	notice string
}

func newModel(ctx context.Context, client *api.Client) *model {
	const (
		defaultWidth  = 80
		defaultHeight = 24
	)

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = styles.NewStyle().
		Border(styles.NormalBorder(), false, false, false, true).
		BorderForeground(borderColor).
		Foreground(selectedColor).
		Bold(false).
		Padding(0, 0, 0, 1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.
		Foreground(selectedColor)
	d.ShowDescription = true

	l := list.New(make([]list.Item, 0), d, defaultWidth/2-2, defaultHeight-bottomLines)
	l.Styles.NoItems = l.Styles.NoItems.
		Padding(0, 2)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)

	p := plot.NewCanvas(defaultWidth/2, defaultHeight-bottomLines)
	p.NumDataPoints = config.MaxPoints
	p.ShowAxis = false
	p.LineColors = make([]plot.Color, chart.PaletteSize)

	m := &model{
		ctx:    ctx,
		client: client,
		panel:  store.NewPanel(config.MaxPoints),

		list: l,
		help: help.New(),
		plot: &p,
	}
	m.leftPaneWidth, m.rightPaneWidth = computePaneWidths(defaultWidth, config.ViewSplit)
	return m
}

// Tick messages. Each loop re-arms itself from Update; none is ever
// cancelled for the lifetime of the program.

type streamTickMsg time.Time

func doStreamTick() tui.Cmd {
	return tui.Every(config.StreamPoll, func(t time.Time) tui.Msg {
		return streamTickMsg(t)
	})
}

type mappingTickMsg time.Time

func doMappingTick() tui.Cmd {
	return tui.Every(config.MappingPoll, func(t time.Time) tui.Msg {
		return mappingTickMsg(t)
	})
}

type sampleTickMsg time.Time

func doSampleTick() tui.Cmd {
	return tui.Every(config.SamplePoll, func(t time.Time) tui.Msg {
		return sampleTickMsg(t)
	})
}

// Fetch results. Directory and value polls are best-effort: a failed fetch
// yields no message at all, leaving the previous state untouched.

type streamsMsg []string

type mappingsMsg []api.Mapping

type valuesMsg struct {
	at     time.Time
	values map[string]float64
}

type commandDoneMsg struct {
	op  string // "create", "update", "delete"
	err error
}

type lastSelectedMsg struct {
	sel *api.LastSelected
	err error
}

type snapshotDoneMsg struct {
	path string
	err  error
}

func (m *model) fetchStreams() tui.Cmd {
	return func() tui.Msg {
		names, err := m.client.Streams(m.ctx)
		if err != nil {
			return nil
		}
		return streamsMsg(names)
	}
}

func (m *model) fetchMappings() tui.Cmd {
	return func() tui.Msg {
		mappings, err := m.client.Mappings(m.ctx)
		if err != nil {
			return nil
		}
		return mappingsMsg(mappings)
	}
}

// pumpCmd is one sample-pump turn. When nothing is plotted it returns nil,
// sparing the backend the round trip entirely.
func (m *model) pumpCmd() tui.Cmd {
	if m.panel.Empty() {
		return nil
	}
	return m.fetchValues()
}

func (m *model) fetchValues() tui.Cmd {
	return func() tui.Msg {
		values, err := m.client.Values(m.ctx)
		if err != nil {
			return nil
		}
		return valuesMsg{at: time.Now(), values: values}
	}
}

func (m *model) createMapping(req api.MappingRequest) tui.Cmd {
	return func() tui.Msg {
		return commandDoneMsg{op: "create", err: m.client.CreateMapping(m.ctx, req)}
	}
}

func (m *model) updateMapping(stream string, req api.MappingRequest) tui.Cmd {
	return func() tui.Msg {
		return commandDoneMsg{op: "update", err: m.client.UpdateMapping(m.ctx, stream, req)}
	}
}

func (m *model) deleteMapping(stream string) tui.Cmd {
	return func() tui.Msg {
		return commandDoneMsg{op: "delete", err: m.client.DeleteMapping(m.ctx, stream)}
	}
}

func (m *model) fetchLastSelected() tui.Cmd {
	return func() tui.Msg {
		sel, err := m.client.LastSelected(m.ctx)
		return lastSelectedMsg{sel: sel, err: err}
	}
}

func (m *model) exportSnapshot() tui.Cmd {
	series := m.series
	labels := m.panel.Labels()
	path := config.SnapshotPath
	return func() tui.Msg {
		f, err := os.Create(path)
		if err != nil {
			return snapshotDoneMsg{path: path, err: err}
		}
		defer f.Close()
		return snapshotDoneMsg{path: path, err: chart.WriteSnapshot(f, series, labels)}
	}
}

func (m *model) Init() tui.Cmd {
	return tui.Batch(
		m.fetchStreams(),
		m.fetchMappings(),
		doStreamTick(),
		doMappingTick(),
		doSampleTick(),
	)
}

func (m *model) Update(msg tui.Msg) (tui.Model, tui.Cmd) {
	switch msg := msg.(type) {
	case streamTickMsg:
		return m, tui.Batch(m.fetchStreams(), doStreamTick())

	case mappingTickMsg:
		return m, tui.Batch(m.fetchMappings(), doMappingTick())

	case sampleTickMsg:
		return m, tui.Batch(m.pumpCmd(), doSampleTick())

	case streamsMsg:
		m.directory = msg
		m.refreshList()
		return m, nil

	case mappingsMsg:
		m.mappings = msg
		m.refreshList()
		return m, nil

	case valuesMsg:
		recorded := false
		for _, name := range m.panel.Selection() {
			if v, ok := msg.values[name]; ok {
				m.panel.Record(name, v)
				recorded = true
			}
		}
		m.panel.AdvanceLabels(msg.at)
		if recorded {
			m.reconcile()
			m.refreshList()
		}
		return m, nil

	case commandDoneMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
			return m, nil
		}
		if msg.op == "create" {
			m.form = nil
		}
		m.notice = ""
		// Fresh read after write instead of waiting for the next tick.
		return m, m.fetchMappings()

	case lastSelectedMsg:
		return m, m.applyLastSelected(msg)

	case snapshotDoneMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("snapshot failed: %v", msg.err)
		} else {
			m.notice = "snapshot written to " + msg.path
		}
		return m, nil

	case tui.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.leftPaneWidth, m.rightPaneWidth = computePaneWidths(m.width, config.ViewSplit)
		available := max(1, m.height-bottomLines)
		leftW := max(1, m.leftPaneWidth)
		rightW := max(1, m.rightPaneWidth)

		m.list.SetSize(leftW, available)
		m.list.Styles.Title = styles.NewStyle()
		m.list.Styles.PaginationStyle = styles.NewStyle()
		m.list.Styles.HelpStyle = styles.NewStyle()
		m.listStyle = styles.NewStyle().Width(leftW).Height(available)

		// Plot canvas sits inside a border (2 lines) above one label line.
		plotHeight := max(1, available-3)
		plotWidth := max(1, rightW-2)
		m.resizePlot(plotWidth, plotHeight)
		m.reconcile()
		return m, nil

	case tui.KeyMsg:
		if m.form != nil {
			return m, m.updateForm(msg)
		}
		if m.list.FilterState() == list.Filtering {
			var cmd tui.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tui.Quit
		case key.Matches(msg, keys.Up):
			m.list.CursorUp()
			return m, nil
		case key.Matches(msg, keys.Down):
			m.list.CursorDown()
			return m, nil
		case key.Matches(msg, keys.Toggle):
			if name, ok := m.highlighted(); ok {
				m.panel.Toggle(name)
				m.reconcile()
				m.refreshList()
			}
			return m, nil
		case key.Matches(msg, keys.NewMapping):
			name, _ := m.highlighted()
			m.form = newMappingForm(name)
			m.notice = ""
			return m, m.form.focusCmd()
		case key.Matches(msg, keys.Delete):
			if name, ok := m.highlighted(); ok {
				return m, m.deleteMapping(name)
			}
			return m, nil
		case key.Matches(msg, keys.Enabled):
			return m, m.toggleEnabled()
		case key.Matches(msg, keys.Export):
			if len(m.series) == 0 {
				m.notice = "nothing selected to export"
				return m, nil
			}
			return m, m.exportSnapshot()
		}
	}
	var cmd tui.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) highlighted() (string, bool) {
	item := m.list.SelectedItem()
	if item == nil {
		return "", false
	}
	return item.(directoryItem).name, true
}

// toggleEnabled flips the enabled flag of the highlighted stream's mapping
// via PUT, resubmitting the mapping's own fields.
func (m *model) toggleEnabled() tui.Cmd {
	name, ok := m.highlighted()
	if !ok {
		return nil
	}
	for _, mp := range m.mappings {
		if mp.MotionStream != name {
			continue
		}
		req := api.MappingRequest{
			MotionStream:   mp.MotionStream,
			TrackIndex:     mp.Target.TrackIndex,
			DeviceIndex:    mp.Target.DeviceIndex,
			ParameterIndex: mp.Target.ParameterIndex,
			RangeMin:       mp.Range[0],
			RangeMax:       mp.Range[1],
			Smoothing:      mp.Smoothing,
			Enabled:        !mp.Enabled,
		}
		return m.updateMapping(name, req)
	}
	m.notice = "no mapping for " + name
	return nil
}

func (m *model) applyLastSelected(msg lastSelectedMsg) tui.Cmd {
	if msg.err != nil {
		m.notice = fmt.Sprintf("last-selected lookup failed: %v", msg.err)
		return nil
	}
	if m.form == nil {
		return nil
	}
	if msg.sel.Type != "parameter" || msg.sel.Data == nil {
		m.notice = "no parameter selected in the DAW"
		return nil
	}
	m.form.setTarget(msg.sel.Data)
	m.notice = fmt.Sprintf("target: %s · %s", msg.sel.Data.DeviceName, msg.sel.Data.ParamName)
	return nil
}

func (m *model) updateForm(msg tui.KeyMsg) tui.Cmd {
	switch {
	case key.Matches(msg, formKeys.Cancel):
		m.form = nil
		m.notice = ""
		return nil
	case key.Matches(msg, formKeys.Submit):
		return m.createMapping(m.form.request())
	case key.Matches(msg, formKeys.Next):
		return m.form.focusNext()
	case key.Matches(msg, formKeys.Prev):
		return m.form.focusPrev()
	case key.Matches(msg, formKeys.Grab):
		return m.fetchLastSelected()
	}
	return m.form.update(msg)
}

// reconcile rebuilds the chart series from the selection set and refills
// the canvas. Series are replaced wholesale on every call.
func (m *model) reconcile() {
	m.series = chart.Reconcile(m.panel)
	if n := len(m.series) - len(m.plot.LineColors); n > 0 {
		m.plot.LineColors = append(m.plot.LineColors, make([]plot.Color, n)...)
	}
	if len(m.series) > 0 {
		chart.Fill(m.plot, m.series)
	}
}

func (m *model) resizePlot(w int, h int) {
	p := plot.NewCanvas(w, h)
	p.NumDataPoints = m.plot.NumDataPoints
	p.ShowAxis = m.plot.ShowAxis
	p.LineColors = m.plot.LineColors
	m.plot = &p
}

// refreshList rebuilds the directory items. Selection markers are matched
// by name, so the backend reordering or resizing the directory never
// disturbs which streams are highlighted or plotted.
func (m *model) refreshList() {
	mapped := make(map[string]api.Mapping, len(m.mappings))
	for _, mp := range m.mappings {
		mapped[mp.MotionStream] = mp
	}
	seriesIdx := make(map[string]int, len(m.series))
	for i, s := range m.series {
		seriesIdx[s.Label] = i
	}

	items := make([]list.Item, len(m.directory))
	for i, name := range m.directory {
		marker := dimFg.Render("·")
		if m.panel.Selected(name) {
			hex := chart.HexFor(seriesIdx[name])
			marker = styles.NewStyle().Foreground(styles.Color(hex)).Render("●")
		}
		var desc strings.Builder
		if v, ok := m.panel.Latest(name); ok {
			fmt.Fprintf(&desc, "%.4f", v)
		} else {
			desc.WriteString("—")
		}
		if mp, ok := mapped[name]; ok {
			state := "on"
			if !mp.Enabled {
				state = "off"
			}
			fmt.Fprintf(&desc, "  mapped %d/%d/%d %s",
				mp.Target.TrackIndex, mp.Target.DeviceIndex, mp.Target.ParameterIndex, state)
		}
		items[i] = directoryItem{name: name, marker: marker, desc: desc.String()}
	}
	m.list.SetItems(items)
}

func (m *model) View() string {
	left := m.listStyle.Render(m.list.View())

	plotStr := m.plot.String()
	if len(m.series) == 0 || plotStr == "" {
		plotStr = emptyPlot(m)
	}
	right := plotStyle.Render(styles.JoinVertical(styles.Top, plotStr, m.axisLabels()))
	panes := styles.JoinHorizontal(styles.Top, left, right)

	sections := []string{panes, m.mappingTable()}
	if m.form != nil {
		sections = append(sections, m.form.View())
	}
	if m.notice != "" {
		sections = append(sections, noticeFg.Render(m.notice))
	}
	if m.form != nil {
		sections = append(sections, m.help.View(formKeys))
	} else {
		sections = append(sections, m.help.View(keys))
	}
	return styles.JoinVertical(styles.Left, sections...)
}

// axisLabels renders the x-axis extent under the plot from the shared
// label track.
func (m *model) axisLabels() string {
	labels := m.panel.Labels()
	if len(labels) == 0 {
		return ""
	}
	w := max(0, m.rightPaneWidth-2)
	leftLabel := labels[0].Format("15:04:05")
	rightLabel := labels[len(labels)-1].Format("15:04:05")
	mid := fmt.Sprintf("%d pts", len(labels))
	minWidth := len(leftLabel) + len(rightLabel) + len(mid) + 4
	if w < minWidth {
		return " " + mid
	}
	spaceTotal := w - (len(leftLabel) + len(rightLabel) + len(mid))
	leftGap := spaceTotal / 2
	rightGap := spaceTotal - leftGap
	return leftLabel +
		strings.Repeat(" ", leftGap) +
		dimFg.Render(mid) +
		strings.Repeat(" ", rightGap) +
		borderFg.Render(rightLabel)
}

func (m *model) mappingTable() string {
	var sb strings.Builder
	sb.WriteString(borderFg.Render(fmt.Sprintf("MAPPINGS (%d)", len(m.mappings))))
	const maxRows = 3
	for i, mp := range m.mappings {
		if i >= maxRows {
			sb.WriteString("\n")
			sb.WriteString(dimFg.Render(fmt.Sprintf("  … %d more", len(m.mappings)-maxRows)))
			break
		}
		state := "on"
		if !mp.Enabled {
			state = "off"
		}
		sb.WriteString(fmt.Sprintf("\n  %-16s track %d · device %d · param %d  [%.2f, %.2f]  smooth %.2f  %s",
			mp.MotionStream,
			mp.Target.TrackIndex, mp.Target.DeviceIndex, mp.Target.ParameterIndex,
			mp.Range[0], mp.Range[1], mp.Smoothing, state))
	}
	return sb.String()
}

func emptyPlot(m *model) string {
	w := max(1, m.rightPaneWidth-2)
	h := max(1, m.height-bottomLines-3)
	var sb strings.Builder
	sb.Grow((w + 1) * h)
	spaces := strings.Repeat(" ", w)
	for i := 0; i < h; i++ {
		if i > 0 {
			sb.WriteRune('\n')
		}
		sb.WriteString(spaces)
	}
	return sb.String()
}

func computePaneWidths(totalWidth int, splitPercent int) (left, right int) {
	if totalWidth <= 1 {
		return 1, 1
	}
	left = totalWidth * splitPercent / 100
	if left < 1 {
		left = 1
	}
	if left > totalWidth-1 {
		left = totalWidth - 1
	}
	right = totalWidth - left

	// Keep panes readable when the terminal is wide enough.
	const minPane = 18
	if totalWidth >= minPane*2 {
		if left < minPane {
			left = minPane
			right = totalWidth - left
		}
		if right < minPane {
			right = minPane
			left = totalWidth - right
		}
	}
	if left < 1 {
		left = 1
	}
	if right < 1 {
		right = 1
	}
	return left, right
}

type directoryItem struct {
	name   string
	marker string
	desc   string
}

func (i directoryItem) Title() string       { return fmt.Sprintf("%s %s", i.marker, i.name) }
func (i directoryItem) Description() string { return i.desc }
func (i directoryItem) FilterValue() string { return i.name }

type keyMap struct {
	Toggle     key.Binding
	NewMapping key.Binding
	Delete     key.Binding
	Enabled    key.Binding
	Export     key.Binding
	Up         key.Binding
	Down       key.Binding
	Quit       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.NewMapping, k.Delete, k.Enabled, k.Export, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.NewMapping, k.Delete, k.Enabled},
		{k.Up, k.Down, k.Export, k.Quit},
	}
}

var keys = keyMap{
	Toggle: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter/space", "plot"),
	),
	NewMapping: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new mapping"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete mapping"),
	),
	Enabled: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "enable/disable"),
	),
	Export: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "export html"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}
