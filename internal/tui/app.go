// Package tui is the terminal frontend. It keeps a local copy of the
// caller's projects and tasks and reconciles it against server responses,
// one message per update.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasknotes/internal/client"
	"tasknotes/internal/store"
)

type view int

const (
	viewProjects view = iota
	viewTasks
)

type inputMode int

const (
	inputNone inputMode = iota
	inputNewProject
	inputRenameProject
	inputNewTask
)

type App struct {
	api    *client.Client
	state  *projectState
	styles styles

	currentView view
	mode        inputMode
	input       textinput.Model

	cursor     int
	taskCursor int
	width      int
	height     int
	loaded     bool
	lastError  string
}

func NewApp(api *client.Client) *App {
	input := textinput.New()
	input.CharLimit = 200

	return &App{
		api:    api,
		state:  newProjectState(),
		styles: newStyles(),
		input:  input,
	}
}

func (a *App) Init() tea.Cmd {
	return fetchProjects(a.api)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case RequestFailedMsg:
		a.lastError = msg.Err.Error()
		return a, nil
	}

	if cmd := a.applyServerMsg(msg); cmd != nil {
		return a, cmd
	}
	return a, nil
}

// applyServerMsg reconciles exactly one server message into local state and
// adjusts navigation that the change invalidated.
func (a *App) applyServerMsg(msg tea.Msg) tea.Cmd {
	selectedBefore := a.state.selected
	a.state.apply(msg)
	a.lastError = ""

	switch msg.(type) {
	case ProjectListMsg:
		a.loaded = true
	case ProjectDeletedMsg:
		if selectedBefore != 0 && a.state.selected == 0 {
			a.currentView = viewProjects
		}
	}

	a.clampCursors()
	return nil
}

func (a *App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.mode != inputNone {
		return a.updateInput(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "up", "k":
		if a.currentView == viewTasks {
			a.taskCursor = max(a.taskCursor-1, 0)
		} else {
			a.cursor = max(a.cursor-1, 0)
		}

	case "down", "j":
		if a.currentView == viewTasks {
			a.taskCursor = min(a.taskCursor+1, max(len(a.state.tasks)-1, 0))
		} else {
			a.cursor = min(a.cursor+1, max(a.state.len()-1, 0))
		}

	case "enter":
		if a.currentView == viewProjects {
			if item, ok := a.cursorProject(); ok {
				a.state.selectProject(item.ID)
				a.currentView = viewTasks
				a.taskCursor = 0
				return a, fetchTasks(a.api, item.ID)
			}
		}

	case "esc", "backspace":
		if a.currentView == viewTasks {
			a.currentView = viewProjects
		}

	case "n":
		if a.currentView == viewProjects {
			return a, a.openInput(inputNewProject, "Project title", "")
		}
		if a.state.selected != 0 {
			return a, a.openInput(inputNewTask, "Task title", "")
		}

	case "r":
		if a.currentView == viewProjects {
			if item, ok := a.cursorProject(); ok {
				return a, a.openInput(inputRenameProject, "New title", item.Title)
			}
		}

	case "d":
		if a.currentView == viewTasks {
			if a.taskCursor < len(a.state.tasks) {
				return a, deleteTask(a.api, a.state.tasks[a.taskCursor].ID)
			}
		} else if item, ok := a.cursorProject(); ok {
			return a, deleteProject(a.api, item.ID)
		}

	case "R":
		if a.currentView == viewTasks && a.state.selected != 0 {
			return a, fetchTasks(a.api, a.state.selected)
		}
		return a, fetchProjects(a.api)
	}

	return a, nil
}

func (a *App) openInput(mode inputMode, placeholder, initial string) tea.Cmd {
	a.mode = mode
	a.input.Placeholder = placeholder
	a.input.SetValue(initial)
	a.input.CursorEnd()
	a.input.Focus()
	return textinput.Blink
}

func (a *App) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = inputNone
		a.input.Blur()
		return a, nil

	case "enter":
		title := strings.TrimSpace(a.input.Value())
		mode := a.mode
		a.mode = inputNone
		a.input.Blur()
		if title == "" {
			return a, nil
		}
		switch mode {
		case inputNewProject:
			return a, createProject(a.api, title)
		case inputRenameProject:
			if item, ok := a.cursorProject(); ok {
				return a, renameProject(a.api, store.PatchProject{ID: item.ID, Title: title})
			}
		case inputNewTask:
			return a, createTask(a.api, a.state.selected, title)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) cursorProject() (store.Project, bool) {
	if a.cursor >= len(a.state.order) {
		return store.Project{}, false
	}
	return a.state.project(a.state.order[a.cursor])
}

func (a *App) clampCursors() {
	a.cursor = min(a.cursor, max(a.state.len()-1, 0))
	a.taskCursor = min(a.taskCursor, max(len(a.state.tasks)-1, 0))
}

func (a *App) View() string {
	if a.mode != inputNone {
		return a.renderInput()
	}
	if a.currentView == viewTasks {
		return a.renderTasks()
	}
	return a.renderProjects()
}

func (a *App) renderProjects() string {
	s := a.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Projects") + "\n\n")

	if !a.loaded {
		b.WriteString(s.Muted.Render("  Loading...") + "\n")
	} else if a.state.len() == 0 {
		b.WriteString(s.Muted.Render("  No projects. Press 'n' to create one.") + "\n")
	}

	for i, item := range a.state.projects() {
		style := s.Item
		if i == a.cursor {
			style = s.Selected
		}
		b.WriteString(style.Render(item.Title) + "\n")
	}

	b.WriteString(a.renderFooter("↵ open • n new • r rename • d delete • R reload • q quit"))
	return b.String()
}

func (a *App) renderTasks() string {
	s := a.styles
	var b strings.Builder

	title := "Tasks"
	if item, ok := a.state.project(a.state.selected); ok {
		title = item.Title
	}
	b.WriteString(s.Title.Render(title) + "\n\n")

	if len(a.state.tasks) == 0 {
		b.WriteString(s.Muted.Render("  No tasks. Press 'n' to add one.") + "\n")
	}

	for i, item := range a.state.tasks {
		marker := "[ ]"
		if item.Completed {
			marker = s.Done.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", marker, item.Title)
		style := s.Item
		if i == a.taskCursor {
			style = s.Selected
		}
		b.WriteString(style.Render(line) + "\n")
	}

	b.WriteString(a.renderFooter("n new • d delete • R reload • esc back • q quit"))
	return b.String()
}

func (a *App) renderInput() string {
	s := a.styles
	var label string
	switch a.mode {
	case inputNewProject:
		label = "New Project"
	case inputRenameProject:
		label = "Rename Project"
	case inputNewTask:
		label = "New Task"
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(label),
		"",
		s.Input.Render(a.input.View()),
		"",
		s.Muted.Render("↵ save • esc cancel"),
	)
	if a.width > 0 && a.height > 0 {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, form)
	}
	return form
}

func (a *App) renderFooter(help string) string {
	s := a.styles
	footer := "\n" + s.Help.Render(help)
	if a.lastError != "" {
		footer += "\n" + s.Error.Render("  "+a.lastError)
	}
	return footer
}
