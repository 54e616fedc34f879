package postgres

import (
	"time"

	"github.com/fastygo/taskflow/domain"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// dueDateParam converts the optional calendar string into a DATE parameter.
func dueDateParam(due *string) (interface{}, error) {
	if due == nil || *due == "" {
		return nil, nil
	}
	parsed, err := time.Parse(domain.DueDateLayout, *due)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "due date must be YYYY-MM-DD", err)
	}
	return parsed, nil
}

func formatDueDate(due *time.Time) *string {
	if due == nil {
		return nil
	}
	s := due.Format(domain.DueDateLayout)
	return &s
}
