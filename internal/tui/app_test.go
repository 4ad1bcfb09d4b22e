package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknotes/internal/store"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a := NewApp(nil)
	a.Update(ProjectListMsg{Items: []store.Project{
		{ID: 1, OwnerID: 1, Title: "Groceries"},
		{ID: 2, OwnerID: 1, Title: "Chores"},
	}})
	return a
}

func TestDeletedSelectedProjectReturnsToProjectView(t *testing.T) {
	a := newTestApp(t)
	a.state.selectProject(1)
	a.currentView = viewTasks

	a.Update(ProjectDeletedMsg{ID: 1})

	assert.Equal(t, viewProjects, a.currentView)
	assert.Equal(t, int64(0), a.state.selected)
}

func TestCursorClampedAfterDelete(t *testing.T) {
	a := newTestApp(t)
	a.cursor = 1

	a.Update(ProjectDeletedMsg{ID: 2})

	require.Equal(t, 1, a.state.len())
	assert.Equal(t, 0, a.cursor)
}

func TestRequestFailureSurfacesInFooter(t *testing.T) {
	a := newTestApp(t)

	a.Update(RequestFailedMsg{Err: errors.New("server returned 400")})
	assert.Contains(t, a.View(), "server returned 400")

	// The next successful message clears the error banner.
	a.Update(ProjectCreatedMsg{Item: store.Project{ID: 3, OwnerID: 1, Title: "Errands"}})
	assert.NotContains(t, a.View(), "server returned 400")
}

func TestLoadingIndicatorBeforeFirstList(t *testing.T) {
	a := NewApp(nil)
	assert.Contains(t, a.View(), "Loading")

	a.Update(ProjectListMsg{Items: nil})
	assert.NotContains(t, a.View(), "Loading")
}
