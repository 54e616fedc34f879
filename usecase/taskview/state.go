// Package taskview is the signed-in task list: a view-model fed by a live
// subscription, a pure reducer for local UI events, and the mutations a
// user can trigger.
package taskview

import "github.com/fastygo/taskflow/domain"

// Draft is the add-task form. Error is the reason the last submit was rejected.
type Draft struct {
	Title    string
	DueDate  string
	Priority string
	Error    string
}

// SelectedPriority is the priority the form should show, medium when unset.
func (d Draft) SelectedPriority() string {
	if d.Priority == "" {
		return string(domain.PriorityMedium)
	}
	return d.Priority
}

// State is everything the task board renders.
type State struct {
	Email  string
	Tasks  []domain.Task
	Loaded bool
	Filter domain.PriorityFilter

	EditingID    string
	EditingTitle string

	Draft Draft
}

// Visible applies the priority filter to the latest snapshot.
func (s State) Visible() []domain.Task {
	return s.Filter.Apply(s.Tasks)
}

// Summary counts over the full list, not the filtered one.
func (s State) Summary() domain.Summary {
	return domain.Summarize(s.Tasks)
}

// Editing reports whether id is the task under inline edit.
func (s State) Editing(id string) bool {
	return s.EditingID != "" && s.EditingID == id
}

type Event interface {
	isEvent()
}

// SnapshotReceived replaces the task list wholesale.
type SnapshotReceived struct{ Tasks []domain.Task }

type FilterChanged struct{ Filter domain.PriorityFilter }

type EditStarted struct{ ID, Title string }

type EditCancelled struct{}

type DraftChanged struct{ Draft Draft }

type DraftCleared struct{}

// Unmounted forgets everything tied to the session.
type Unmounted struct{}

func (SnapshotReceived) isEvent() {}
func (FilterChanged) isEvent()    {}
func (EditStarted) isEvent()      {}
func (EditCancelled) isEvent()    {}
func (DraftChanged) isEvent()     {}
func (DraftCleared) isEvent()     {}
func (Unmounted) isEvent()        {}

func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case SnapshotReceived:
		s.Tasks = append([]domain.Task(nil), e.Tasks...)
		s.Loaded = true
	case FilterChanged:
		s.Filter = e.Filter
		if s.Filter == "" {
			s.Filter = domain.FilterAll
		}
	case EditStarted:
		s.EditingID = e.ID
		s.EditingTitle = e.Title
	case EditCancelled:
		s.EditingID = ""
		s.EditingTitle = ""
	case DraftChanged:
		s.Draft = e.Draft
	case DraftCleared:
		s.Draft = Draft{}
	case Unmounted:
		filter := s.Filter
		s = State{Filter: filter}
	}
	return s
}
