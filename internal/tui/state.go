package tui

import "tasknotes/internal/store"

// projectState keeps every project in one place, keyed by id, with a
// separate display order and an id-based selection. Widgets never hold
// references into the map; they ask by id, so a row can be mutated or
// removed without anything else aliasing it.
type projectState struct {
	byID     map[int64]store.Project
	order    []int64
	selected int64
	tasks    []store.Task
}

func newProjectState() *projectState {
	return &projectState{byID: make(map[int64]store.Project)}
}

// apply folds one server message into the state. List messages replace
// wholesale; the rest adjust incrementally.
func (s *projectState) apply(msg any) {
	switch msg := msg.(type) {
	case ProjectListMsg:
		s.byID = make(map[int64]store.Project, len(msg.Items))
		s.order = s.order[:0]
		for _, item := range msg.Items {
			s.byID[item.ID] = item
			s.order = append(s.order, item.ID)
		}
		if _, ok := s.byID[s.selected]; !ok {
			s.clearSelection()
		}

	case ProjectCreatedMsg:
		if _, ok := s.byID[msg.Item.ID]; !ok {
			s.order = append(s.order, msg.Item.ID)
		}
		s.byID[msg.Item.ID] = msg.Item

	case ProjectDeletedMsg:
		delete(s.byID, msg.ID)
		for i, id := range s.order {
			if id == msg.ID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		if s.selected == msg.ID {
			s.clearSelection()
		}

	case ProjectChangedMsg:
		if item, ok := s.byID[msg.Patch.ID]; ok {
			item.Title = msg.Patch.Title
			s.byID[msg.Patch.ID] = item
		}

	case TaskListMsg:
		if msg.ProjectID == s.selected {
			s.tasks = msg.Items
		}

	case TaskCreatedMsg:
		if msg.Item.ProjectID == s.selected {
			s.tasks = append(s.tasks, msg.Item)
		}

	case TaskDeletedMsg:
		for i, item := range s.tasks {
			if item.ID == msg.ID {
				s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
				break
			}
		}
	}
}

func (s *projectState) clearSelection() {
	s.selected = 0
	s.tasks = nil
}

func (s *projectState) selectProject(id int64) {
	if _, ok := s.byID[id]; !ok {
		return
	}
	if s.selected != id {
		s.tasks = nil
	}
	s.selected = id
}

func (s *projectState) projects() []store.Project {
	items := make([]store.Project, 0, len(s.order))
	for _, id := range s.order {
		if item, ok := s.byID[id]; ok {
			items = append(items, item)
		}
	}
	return items
}

func (s *projectState) project(id int64) (store.Project, bool) {
	item, ok := s.byID[id]
	return item, ok
}

func (s *projectState) len() int { return len(s.order) }
