package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/peterbom/moon-proximity-sub000/internal/events"
)

// ListModel is a scrollable table of events.
type ListModel struct {
	items  []events.Event
	cursor int
	offset int
	width  int
	height int
}

// NewListModel creates an empty list.
func NewListModel() ListModel {
	return ListModel{height: 10}
}

// SetItems replaces the rows and resets the cursor.
func (m ListModel) SetItems(items []events.Event) ListModel {
	m.items = items
	m.cursor = 0
	m.offset = 0
	return m
}

// SetSize updates the viewport size.
func (m ListModel) SetSize(width, height int) ListModel {
	m.width = width
	if height < 1 {
		height = 1
	}
	m.height = height
	return m.scroll()
}

// Cursor returns the selected row index.
func (m ListModel) Cursor() int {
	return m.cursor
}

// Selected returns the event under the cursor.
func (m ListModel) Selected() (events.Event, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return events.Event{}, false
	}
	return m.items[m.cursor], true
}

// Update handles navigation keys.
func (m ListModel) Update(msg tea.Msg) (ListModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	last := len(m.items) - 1
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < last {
			m.cursor++
		}
	case "pgup":
		m.cursor -= m.rows()
	case "pgdown":
		m.cursor += m.rows()
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = last
	}
	if m.cursor > last {
		m.cursor = last
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m.scroll(), nil
}

// rows is the number of event rows that fit below the table header.
func (m ListModel) rows() int {
	if m.height <= 1 {
		return 1
	}
	return m.height - 1
}

func (m ListModel) scroll() ListModel {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.rows() {
		m.offset = m.cursor - m.rows() + 1
	}
	return m
}

// View renders the table.
func (m ListModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-16s %-20s %-15s %-14s %6s ",
		"Event", "Time (UTC)", "JD", "Distance", "Illum")))
	b.WriteString("\n")

	if len(m.items) == 0 {
		b.WriteString(dimStyle.Render("  No events in this window"))
		return b.String()
	}

	end := m.offset + m.rows()
	if end > len(m.items) {
		end = len(m.items)
	}
	for i := m.offset; i < end; i++ {
		e := m.items[i]
		line := fmt.Sprintf("  %s %-14s %-20s %-15.5f %-14s %5.1f%% ",
			e.Kind.Symbol(),
			e.Kind.Label(),
			e.Time.UTC().Format("2006-01-02 15:04:05"),
			e.JD,
			events.FormatDistance(e.DistanceKm),
			e.Illumination*100,
		)
		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(line))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
