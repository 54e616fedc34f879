package transport

// CredentialsRequest is the body of the sign-up and sign-in endpoints.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TaskRequest creates a task. DueDate is YYYY-MM-DD or empty.
type TaskRequest struct {
	Title    string `json:"title"`
	DueDate  string `json:"dueDate"`
	Priority string `json:"priority"`
}

// TaskPatchRequest carries the fields a task may change after creation.
type TaskPatchRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}
