package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Item is one row of a picker.
type Item struct {
	Title  string
	Detail string
}

// PickerModel is a single-selection list. Esc or q abandons the selection.
type PickerModel struct {
	title    string
	items    []Item
	cursor   int
	keys     keyMap
	chosen   int
	width    int
	quitting bool
}

// NewPickerModel creates a picker over items.
func NewPickerModel(title string, items []Item) PickerModel {
	return PickerModel{
		title:  title,
		items:  items,
		keys:   defaultKeyMap(),
		chosen: -1,
	}
}

// Init implements tea.Model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Select):
			if len(m.items) == 0 {
				return m, nil
			}
			m.chosen = m.cursor
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m PickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(Styles.Title.Render(m.title))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(Styles.Item.Render("(nothing to choose from)"))
		b.WriteString("\n")
	}
	for i, item := range m.items {
		line := item.Title
		if item.Detail != "" {
			line += "  " + Styles.Detail.Render(item.Detail)
		}
		if m.width > 8 {
			line = truncateText(line, m.width-4)
		}
		if i == m.cursor {
			b.WriteString(Styles.Selected.Render("> " + line))
		} else {
			b.WriteString(Styles.Item.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(Styles.Help.Render("↑/↓ navigate • enter select • esc cancel"))
	return b.String()
}

// Selected returns the chosen index. ok is false when nothing was chosen.
func (m PickerModel) Selected() (int, bool) {
	return m.chosen, m.chosen >= 0
}

// runPicker runs a picker full screen and returns the chosen index.
func runPicker(title string, items []Item, opts ...tea.ProgramOption) (int, bool, error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	final, err := Run(NewPickerModel(title, items), opts...)
	if err != nil {
		return 0, false, err
	}
	m, ok := final.(PickerModel)
	if !ok {
		return 0, false, nil
	}
	i, ok := m.Selected()
	return i, ok, nil
}
