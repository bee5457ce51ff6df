package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldName = iota
	fieldAddress
)

// HostFormResult is what the user entered. Submitted is false on cancel.
type HostFormResult struct {
	Submitted bool
	Name      string
	Address   string
}

type formKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Quit   key.Binding
}

// HostFormModel asks for a host name and address.
type HostFormModel struct {
	inputs   []textinput.Model
	focus    int
	keys     formKeyMap
	err      string
	result   HostFormResult
	quitting bool
}

// NewHostFormModel creates the form, prefilled with any known values.
func NewHostFormModel(name, address string) HostFormModel {
	nameInput := textinput.New()
	nameInput.Placeholder = "living-room-ipad"
	nameInput.Prompt = "Name:    "
	nameInput.SetValue(name)

	addrInput := textinput.New()
	addrInput.Placeholder = "10.0.0.2:8080"
	addrInput.Prompt = "Address: "
	addrInput.SetValue(address)

	m := HostFormModel{
		inputs: []textinput.Model{nameInput, addrInput},
		keys: formKeyMap{
			Next:   key.NewBinding(key.WithKeys("tab", "down")),
			Prev:   key.NewBinding(key.WithKeys("shift+tab", "up")),
			Submit: key.NewBinding(key.WithKeys("enter")),
			Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c")),
		},
	}
	if strings.TrimSpace(name) != "" {
		m.focus = fieldAddress
	}
	m.inputs[m.focus].Focus()
	return m
}

// Init implements tea.Model.
func (m HostFormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m HostFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Next):
			return m.setFocus(m.focus + 1), nil

		case key.Matches(msg, m.keys.Prev):
			return m.setFocus(m.focus - 1), nil

		case key.Matches(msg, m.keys.Submit):
			if m.focus == fieldName {
				return m.setFocus(fieldAddress), nil
			}
			name := strings.TrimSpace(m.inputs[fieldName].Value())
			addr := strings.TrimSpace(m.inputs[fieldAddress].Value())
			switch {
			case name == "":
				m.err = "name cannot be empty"
				return m.setFocus(fieldName), nil
			case addr == "":
				m.err = "address cannot be empty"
				return m, nil
			}
			m.result = HostFormResult{Submitted: true, Name: name, Address: addr}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m HostFormModel) setFocus(i int) HostFormModel {
	i = (i + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
	return m
}

// View implements tea.Model.
func (m HostFormModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(Styles.Title.Render("Add host"))
	b.WriteString("\n\n")
	for _, in := range m.inputs {
		b.WriteString("  ")
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(Styles.Error.Render(m.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(Styles.Help.Render("tab next • enter submit • esc cancel"))
	return b.String()
}

// Result returns what the user entered.
func (m HostFormModel) Result() HostFormResult {
	return m.result
}

// RunHostForm runs the form inline and returns the result.
func RunHostForm(name, address string, opts ...tea.ProgramOption) (HostFormResult, error) {
	final, err := Run(NewHostFormModel(name, address), opts...)
	if err != nil {
		return HostFormResult{}, err
	}
	if m, ok := final.(HostFormModel); ok {
		return m.Result(), nil
	}
	return HostFormResult{}, nil
}
