package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tasknotes/internal/client"
	"tasknotes/internal/store"
)

// Server results arrive as one message each; the model applies them to its
// local state one at a time inside Update.

type ProjectListMsg struct {
	Items []store.Project
}

type TaskListMsg struct {
	ProjectID int64
	Items     []store.Task
}

type ProjectCreatedMsg struct {
	Item store.Project
}

type ProjectDeletedMsg struct {
	ID int64
}

type ProjectChangedMsg struct {
	Patch store.PatchProject
}

type TaskCreatedMsg struct {
	Item store.Task
}

type TaskDeletedMsg struct {
	ID int64
}

type RequestFailedMsg struct {
	Err error
}

const requestTimeout = 15 * time.Second

func fetchProjects(api *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		items, err := api.Projects(ctx)
		if err != nil {
			return RequestFailedMsg{Err: err}
		}
		return ProjectListMsg{Items: items}
	}
}

func fetchTasks(api *client.Client, projectID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		items, err := api.Tasks(ctx, projectID)
		if err != nil {
			return RequestFailedMsg{Err: err}
		}
		return TaskListMsg{ProjectID: projectID, Items: items}
	}
}

func createProject(api *client.Client, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		created, err := api.CreateProject(ctx, title)
		if err != nil {
			return RequestFailedMsg{Err: err}
		}
		return ProjectCreatedMsg{Item: created}
	}
}

func deleteProject(api *client.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		deleted, err := api.DeleteProject(ctx, id)
		if err != nil {
			return RequestFailedMsg{Err: err}
		}
		return ProjectDeletedMsg{ID: deleted.ID}
	}
}

func renameProject(api *client.Client, patch store.PatchProject) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		echoed, err := api.UpdateProject(ctx, patch)
		if err != nil {
			return RequestFailedMsg{Err: err}
		}
		return ProjectChangedMsg{Patch: echoed}
	}
}

func createTask(api *client.Client, projectID int64, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		created, err := api.CreateTask(ctx, projectID, title)
		if err != nil {
			return RequestFailedMsg{Err: err}
		}
		return TaskCreatedMsg{Item: created}
	}
}

func deleteTask(api *client.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		deleted, err := api.DeleteTask(ctx, id)
		if err != nil {
			return RequestFailedMsg{Err: err}
		}
		return TaskDeletedMsg{ID: deleted.ID}
	}
}
