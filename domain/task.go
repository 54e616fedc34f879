package domain

import (
	"strings"
	"time"
)

// DueDateLayout is the calendar format accepted for Task.DueDate.
const DueDateLayout = "2006-01-02"

// Task is a single to-do item owned by one user email.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UserEmail string    `json:"userEmail"`
	CreatedAt time.Time `json:"createdAt"`
	DueDate   *string   `json:"dueDate"`
	Priority  Priority  `json:"priority"`
	Completed bool      `json:"completed"`
}

// TaskPatch carries the fields a client may change after creation.
type TaskPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil
}

// Summary holds the counters shown above a task list.
type Summary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// Summarize derives counters from the full list, regardless of any filter.
func Summarize(tasks []Task) Summary {
	s := Summary{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// NormalizeTitle trims the title; ok is false when nothing is left.
func NormalizeTitle(title string) (string, bool) {
	trimmed := strings.TrimSpace(title)
	return trimmed, trimmed != ""
}

// ParseDueDate accepts an empty value (no due date) or a YYYY-MM-DD date.
func ParseDueDate(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if _, err := time.Parse(DueDateLayout, raw); err != nil {
		return nil, WrapError(ErrCodeInvalid, "due date must be YYYY-MM-DD", err)
	}
	return &raw, nil
}

// Validate checks the invariants a task must satisfy before insertion.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if _, ok := NormalizeTitle(t.Title); !ok {
		return NewError(ErrCodeInvalid, "title is required")
	}
	if strings.TrimSpace(t.UserEmail) == "" {
		return NewError(ErrCodeInvalid, "owner email is required")
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}
