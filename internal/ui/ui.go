// Package ui provides the terminal event browser using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/peterbom/moon-proximity-sub000/internal/astro"
	"github.com/peterbom/moon-proximity-sub000/internal/events"
	"github.com/peterbom/moon-proximity-sub000/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// chromeLines is the height taken by the header, tabs and footer.
const chromeLines = 7

// Options configure the browser.
type Options struct {
	Events []events.Event
	From   time.Time
	To     time.Time

	// Provider, when set, lets the detail view show where the Moon is.
	Provider events.Provider

	// Observer, when set with Provider, adds azimuth and elevation.
	Observer *astro.Observer
}

// Model is the root Bubble Tea model.
type Model struct {
	all     []events.Event
	from    time.Time
	to      time.Time
	filters []events.Kind // "" selects every kind
	filter  int

	viewMode ViewMode
	width    int
	height   int
	ready    bool

	list   ListModel
	detail DetailModel
}

// New creates a new root UI model.
func New(opts Options) Model {
	filters := append([]events.Kind{""}, events.AllKinds()...)
	m := Model{
		all:     opts.Events,
		from:    opts.From,
		to:      opts.To,
		filters: filters,
		list:    NewListModel(),
		detail:  NewDetailModel(opts.Provider, opts.Observer),
	}
	m.list = m.list.SetItems(m.filtered())
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "tab":
			m = m.setFilter((m.filter + 1) % len(m.filters))
		case "shift+tab":
			m = m.setFilter((m.filter + len(m.filters) - 1) % len(m.filters))

		case "enter":
			if m.viewMode == ViewList {
				if e, ok := m.list.Selected(); ok {
					m.detail = m.detail.SetEvent(e)
					m.viewMode = ViewDetail
				}
			}
		case "esc", "backspace":
			m.viewMode = ViewList

		default:
			if m.viewMode == ViewList {
				var cmd tea.Cmd
				m.list, cmd = m.list.Update(msg)
				return m, cmd
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.list = m.list.SetSize(msg.Width, msg.Height-chromeLines)
	}

	return m, nil
}

// Filter returns the active kind filter, empty for all kinds.
func (m Model) Filter() events.Kind {
	return m.filters[m.filter]
}

// Mode returns the active view.
func (m Model) Mode() ViewMode {
	return m.viewMode
}

func (m Model) setFilter(i int) Model {
	m.filter = i
	m.list = m.list.SetItems(m.filtered())
	m.viewMode = ViewList
	return m
}

func (m Model) filtered() []events.Event {
	kind := m.Filter()
	if kind == "" {
		return m.all
	}
	var out []events.Event
	for _, e := range m.all {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (m Model) count(kind events.Kind) int {
	if kind == "" {
		return len(m.all)
	}
	n := 0
	for _, e := range m.all {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewDetail:
		content = m.detail.View()
	default:
		content = m.list.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString(renderGradient("  MOON PROXIMITY"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  v%s", version.Version)))
	b.WriteString("\n")
	if !m.from.IsZero() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %s to %s",
			m.from.UTC().Format("2006-01-02 15:04"), m.to.UTC().Format("2006-01-02 15:04"))))
	}
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderTabs() string {
	var parts []string
	for i, k := range m.filters {
		label := "All"
		if k != "" {
			label = k.Label()
		}
		tab := fmt.Sprintf("%s (%d)", label, m.count(k))
		if i == m.filter {
			parts = append(parts, activeTabStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, " ")
}

func (m Model) renderFooter() string {
	var help string
	switch m.viewMode {
	case ViewDetail:
		help = "esc: back | tab: next filter | q: quit"
	default:
		help = "↑↓/jk: navigate | enter: details | tab: filter | q: quit"
	}
	return "  " + dimStyle.Render(help)
}

// renderGradient colors text with the title gradient.
func renderGradient(text string) string {
	runes := []rune(text)
	var b strings.Builder
	for i, r := range runes {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(gradientColor(i, len(runes))))
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}

// gradientColor returns a hex color for a position in the title gradient,
// running from slate blue to pale silver.
func gradientColor(col, width int) string {
	t := 0.0
	if width > 1 {
		t = float64(col) / float64(width-1)
	}
	r := lerp(88, 226, t)
	g := lerp(101, 232, t)
	b := lerp(242, 240, t)
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r), clampByte(g), clampByte(b))
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func clampByte(v float64) int {
	i := int(v)
	if i < 0 {
		return 0
	}
	if i > 255 {
		return 255
	}
	return i
}
