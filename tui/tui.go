// Package tui is a terminal front end for the task list.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"done/models"
	"done/state"
)

type mode int

const (
	modeList mode = iota
	modeAdd
)

const helpLine = "a add • space toggle • x delete done • q quit"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("#FFD43B")).Foreground(lipgloss.Color("#111827"))
	doneStyle    = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#9CA3AF"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EA580C")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Model is the bubbletea model. It holds no task state of its own; every
// render reads a snapshot from the manager.
type Model struct {
	ctx     context.Context
	manager *state.Manager
	list    models.TaskList
	cursor  int
	mode    mode
	input   textinput.Model
	status  string
	warning string
}

// New returns a model over an initialized manager.
func New(ctx context.Context, m *state.Manager) Model {
	ti := textinput.New()
	ti.Placeholder = "to do"
	ti.CharLimit = 256
	ti.Width = 40

	return Model{
		ctx:     ctx,
		manager: m,
		list:    m.Snapshot(),
		input:   ti,
		status:  helpLine,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, m *state.Manager) error {
	program := tea.NewProgram(New(ctx, m), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.mode == modeAdd {
			return m.updateAddMode(msg)
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		if msg.Width > 10 {
			m.input.Width = msg.Width - 10
		}
	}
	return m, nil
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = helpLine
		return m, nil
	case tea.KeyEnter:
		description := m.input.Value()
		if strings.TrimSpace(description) == "" {
			m.status = "Description cannot be empty"
			return m, nil
		}
		task, err := m.manager.AddTask(m.ctx, description)
		if err != nil && !errors.Is(err, state.ErrStorageUnavailable) {
			m.status = fmt.Sprintf("add failed: %v", err)
			return m, nil
		}
		m.setWarning(err)
		m.refresh()
		m.cursor = m.indexOf(task.ID)
		m.input.SetValue("")
		m.status = "Added task"
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(m.list.Tasks))
	case "up", "k":
		m.cursor = clampCursor(m.cursor-1, len(m.list.Tasks))
	case "a":
		m.mode = modeAdd
		m.input.Focus()
		m.status = "Type a task and press enter, esc to finish"
	case " ":
		if len(m.list.Tasks) == 0 {
			return m, nil
		}
		task := m.list.Tasks[m.cursor]
		list, _, err := m.manager.ToggleTask(m.ctx, task.ID)
		if err != nil && !errors.Is(err, state.ErrStorageUnavailable) {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.setWarning(err)
		m.list = list
		m.status = "Toggled task"
	case "x":
		if len(m.list.Tasks) == 0 {
			return m, nil
		}
		task := m.list.Tasks[m.cursor]
		if !task.Completed {
			m.status = "Only completed tasks can be deleted"
			return m, nil
		}
		list, _, err := m.manager.DeleteTask(m.ctx, task.ID)
		if err != nil && !errors.Is(err, state.ErrStorageUnavailable) {
			m.status = fmt.Sprintf("delete failed: %v", err)
			return m, nil
		}
		m.setWarning(err)
		m.list = list
		m.cursor = clampCursor(m.cursor, len(m.list.Tasks))
		m.status = "Deleted task"
	}
	return m, nil
}

func (m *Model) refresh() {
	m.list = m.manager.Snapshot()
}

func (m *Model) setWarning(err error) {
	if err != nil {
		m.warning = "Not saved: " + err.Error()
		return
	}
	m.warning = ""
}

func (m Model) indexOf(id int) int {
	for i, task := range m.list.Tasks {
		if task.ID == id {
			return i
		}
	}
	return clampCursor(m.cursor, len(m.list.Tasks))
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("done."))
	b.WriteString("\n\n")

	if m.mode == modeAdd {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	}

	if len(m.list.Tasks) == 0 {
		b.WriteString(helpStyle.Render("  nothing to do"))
		b.WriteString("\n")
	}
	for i, task := range m.list.Tasks {
		pointer := "  "
		if i == m.cursor && m.mode == modeList {
			pointer = cursorStyle.Render("> ")
		}
		box := "[ ]"
		text := task.Description
		if task.Completed {
			box = "[x]"
			text = doneStyle.Render(text)
		}
		fmt.Fprintf(&b, "%s%s %s\n", pointer, box, text)
	}

	b.WriteString("\n")
	if m.warning != "" {
		b.WriteString(warningStyle.Render(m.warning))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.status))
	b.WriteString("\n")
	return b.String()
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
