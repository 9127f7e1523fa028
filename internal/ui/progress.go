package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"kiln/internal/driver"
)

// progressModel рисует ход `kiln diag --ui`. Список файлов заранее неизвестен:
// модули находятся по мере разбора импортов, поэтому строки добавляются
// при первом событии о файле.
type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	width   int
	done    bool
}

type fileItem struct {
	path   string
	stage  driver.Stage
	status driver.Status
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders workspace progress.
// It quits once events is closed.
func NewProgressModel(title string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		index:   make(map[string]int),
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	finished := 0
	for _, it := range m.items {
		if it.finished() {
			finished++
		}
	}
	header := fmt.Sprintf("%s (%d/%d)", m.title, finished, len(m.items))
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	const statusWidth = 12
	nameWidth := max(m.width-statusWidth-4, 20)
	for _, item := range m.items {
		label := item.label()
		b.WriteString("  ")
		b.WriteString(styleStatus(label).Render(fmt.Sprintf("%*s", statusWidth, label)))
		b.WriteString(" ")
		b.WriteString(truncate(item.path, nameWidth))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	if ev.File == "" {
		return nil
	}
	idx, ok := m.index[ev.File]
	if !ok {
		// строки держим отсортированными по пути, как модули в Workspace
		pos, _ := slices.BinarySearchFunc(m.items, ev.File, func(it fileItem, path string) int {
			return strings.Compare(it.path, path)
		})
		m.items = slices.Insert(m.items, pos, fileItem{path: ev.File})
		for i := pos; i < len(m.items); i++ {
			m.index[m.items[i].path] = i
		}
		idx = pos
	}
	m.items[idx].stage = ev.Stage
	m.items[idx].status = ev.Status

	total := 0.0
	for _, item := range m.items {
		total += item.progress()
	}
	return m.prog.SetPercent(total / float64(len(m.items)))
}

func (it fileItem) finished() bool {
	switch {
	case it.status == driver.StatusError:
		return true
	case it.status == driver.StatusDone:
		return it.stage == driver.StageCheck || it.stage == driver.StageCache
	}
	return false
}

func (it fileItem) progress() float64 {
	if it.finished() {
		return 1
	}
	switch it.stage {
	case driver.StageParse:
		if it.status == driver.StatusDone {
			return 0.5
		}
		if it.status == driver.StatusWorking {
			return 0.1
		}
	case driver.StageCheck:
		return 0.6
	}
	return 0
}

func (it fileItem) label() string {
	switch it.status {
	case driver.StatusWorking:
		return stageLabel(it.stage)
	case driver.StatusDone:
		if it.finished() {
			return "done"
		}
		return "parsed"
	case driver.StatusError:
		return "error"
	}
	return "queued"
}

func stageLabel(stage driver.Stage) string {
	switch stage {
	case driver.StageParse:
		return "parsing"
	case driver.StageCheck:
		return "checking"
	case driver.StageCache:
		return "cached"
	default:
		return string(stage)
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "parsing", "checking", "parsed":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
