package domain

import "strings"

// Priority ranks a task. The zero value is not valid; use ParsePriority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the levels in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority maps user input to a level. Blank input means medium.
func ParsePriority(raw string) (Priority, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return PriorityMedium, nil
	}
	p := Priority(raw)
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// PriorityFilter selects which tasks a view shows. "all" keeps everything.
type PriorityFilter string

const FilterAll PriorityFilter = "all"

// PriorityFilters lists the filter buttons in display order.
var PriorityFilters = []PriorityFilter{FilterAll, PriorityFilter(PriorityHigh), PriorityFilter(PriorityMedium), PriorityFilter(PriorityLow)}

// ParsePriorityFilter falls back to "all" for anything unknown.
func ParsePriorityFilter(raw string) PriorityFilter {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if Priority(raw).Valid() {
		return PriorityFilter(raw)
	}
	return FilterAll
}

// Apply returns the subset of tasks matching the filter, preserving order.
func (f PriorityFilter) Apply(tasks []Task) []Task {
	if f == FilterAll || f == "" {
		return tasks
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if PriorityFilter(t.Priority) == f {
			out = append(out, t)
		}
	}
	return out
}
