package domain

// Field and operator names understood by the task store subscription.
const (
	FieldUserEmail = "userEmail"
	OpEqual        = "=="
)

// Filter is a single-field query predicate used by live subscriptions.
type Filter struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value string `json:"value"`
}

// OwnerFilter restricts a query to tasks owned by email.
func OwnerFilter(email string) Filter {
	return Filter{Field: FieldUserEmail, Op: OpEqual, Value: email}
}

// Validate reports whether the store can serve the filter.
func (f Filter) Validate() error {
	if f.Field != FieldUserEmail || f.Op != OpEqual || f.Value == "" {
		return ErrUnsupportedFilter
	}
	return nil
}

// Matches reports whether a change to owner's tasks affects the filter.
func (f Filter) Matches(owner string) bool {
	return f.Field == FieldUserEmail && f.Op == OpEqual && f.Value == owner
}
