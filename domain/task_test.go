package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTasks() []Task {
	return []Task{
		{ID: "1", Title: "Buy milk", Priority: PriorityHigh},
		{ID: "2", Title: "Walk dog", Priority: PriorityLow, Completed: true},
		{ID: "3", Title: "File taxes", Priority: PriorityHigh, Completed: true},
		{ID: "4", Title: "Call mom", Priority: PriorityMedium},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleTasks())
	assert.Equal(t, Summary{Total: 4, Completed: 2, Pending: 2}, s)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestPriorityFilter_Apply(t *testing.T) {
	tasks := sampleTasks()

	t.Run("all is identity", func(t *testing.T) {
		assert.Equal(t, tasks, FilterAll.Apply(tasks))
	})

	t.Run("high keeps only high", func(t *testing.T) {
		got := PriorityFilter(PriorityHigh).Apply(tasks)
		require.Len(t, got, 2)
		for _, task := range got {
			assert.Equal(t, PriorityHigh, task.Priority)
		}
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "3", got[1].ID)
	})

	t.Run("no match yields empty", func(t *testing.T) {
		got := PriorityFilter(PriorityLow).Apply([]Task{{ID: "x", Priority: PriorityHigh}})
		assert.Empty(t, got)
	})
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Priority
		wantErr bool
	}{
		{name: "blank defaults to medium", raw: "", want: PriorityMedium},
		{name: "case insensitive", raw: " HIGH ", want: PriorityHigh},
		{name: "low", raw: "low", want: PriorityLow},
		{name: "unknown", raw: "urgent", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePriority(tt.raw)
			if tt.wantErr {
				assert.True(t, IsDomainError(err, ErrCodeInvalid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePriorityFilter(t *testing.T) {
	assert.Equal(t, FilterAll, ParsePriorityFilter(""))
	assert.Equal(t, FilterAll, ParsePriorityFilter("bogus"))
	assert.Equal(t, PriorityFilter("medium"), ParsePriorityFilter("Medium"))
}

func TestParseDueDate(t *testing.T) {
	due, err := ParseDueDate("  ")
	require.NoError(t, err)
	assert.Nil(t, due)

	due, err = ParseDueDate("2026-10-31")
	require.NoError(t, err)
	require.NotNil(t, due)
	assert.Equal(t, "2026-10-31", *due)

	_, err = ParseDueDate("31/10/2026")
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
}

func TestNormalizeTitle(t *testing.T) {
	title, ok := NormalizeTitle("  Buy milk ")
	assert.True(t, ok)
	assert.Equal(t, "Buy milk", title)

	_, ok = NormalizeTitle(" \t\n")
	assert.False(t, ok)
}

func TestTask_Validate(t *testing.T) {
	valid := Task{Title: "a", UserEmail: "a@b.com", Priority: PriorityLow}
	assert.NoError(t, valid.Validate())

	noTitle := valid
	noTitle.Title = "  "
	assert.Error(t, noTitle.Validate())

	noOwner := valid
	noOwner.UserEmail = ""
	assert.Error(t, noOwner.Validate())

	badPriority := valid
	badPriority.Priority = "urgent"
	assert.ErrorIs(t, badPriority.Validate(), ErrInvalidPriority)

	var nilTask *Task
	assert.ErrorIs(t, nilTask.Validate(), ErrInvalidPayload)
}

func TestFilter(t *testing.T) {
	f := OwnerFilter("a@b.com")
	require.NoError(t, f.Validate())
	assert.True(t, f.Matches("a@b.com"))
	assert.False(t, f.Matches("c@d.com"))

	assert.ErrorIs(t, Filter{Field: "title", Op: OpEqual, Value: "x"}.Validate(), ErrUnsupportedFilter)
	assert.ErrorIs(t, Filter{Field: FieldUserEmail, Op: "!=", Value: "x"}.Validate(), ErrUnsupportedFilter)
	assert.ErrorIs(t, OwnerFilter("").Validate(), ErrUnsupportedFilter)
}

func TestErrorHelpers(t *testing.T) {
	err := WrapError(ErrCodeConflict, "boom", ErrTaskNotFound)
	assert.True(t, IsDomainError(err, ErrCodeConflict))
	assert.Equal(t, "boom: task not found", err.Error())
	assert.ErrorIs(t, err, ErrTaskNotFound)

	assert.Contains(t, WeakPasswordError(6).Error(), "at least 6 characters")
	assert.False(t, IsDomainError(nil, ErrCodeInvalid))
}

func TestSession(t *testing.T) {
	var nilSession *Session
	assert.True(t, nilSession.IsExpired(time.Time{}))

	s := &Session{Values: map[string]string{SessionKeyUserEmail: "a@b.com"}}
	v, ok := s.Value(SessionKeyUserEmail)
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", v)

	_, ok = s.Value("missing")
	assert.False(t, ok)
}
