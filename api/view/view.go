// Package view renders the HTML pages and the live task board fragment.
package view

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/usecase/landing"
	"github.com/fastygo/taskflow/usecase/taskview"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("taskflow").Funcs(template.FuncMap{
		"landingURL": landingURL,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

type landingModel struct {
	State        landing.State
	OtherMode    landing.Mode
	NextTheme    landing.Theme
	Features     []Feature
	Testimonials []Testimonial
}

// Feature is one card of the landing page feature row.
type Feature struct {
	Icon, Title, Text string
}

// Testimonial is a user quote with a 1..5 rating.
type Testimonial struct {
	Name, Role, Text string
	Rating           int
}

// Stars renders the rating as filled and empty stars.
func (t Testimonial) Stars() string {
	n := t.Rating
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

var features = []Feature{
	{Icon: "⚡", Title: "Live updates", Text: "Every open tab reflects a change the moment it is saved."},
	{Icon: "✎", Title: "Add, edit, complete", Text: "Titles, due dates and priorities in a single form."},
	{Icon: "⛁", Title: "Postgres backed", Text: "Tasks live in Postgres and changes fan out through LISTEN/NOTIFY."},
}

var testimonials = []Testimonial{
	{Name: "Sarah Johnson", Role: "Project Manager", Rating: 5,
		Text: "My team's daily list finally stays in sync without anyone hitting refresh."},
	{Name: "Mike Chen", Role: "Developer", Rating: 5,
		Text: "Fast, small and out of the way. It does exactly what a task list should."},
	{Name: "Emma Rodriguez", Role: "Entrepreneur", Rating: 4,
		Text: "Simple enough to open every morning, which is the whole point."},
}

// Landing renders the marketing page with the auth modal in state s.
func (r *Renderer) Landing(w io.Writer, s landing.State) error {
	if s.Theme == "" {
		s.Theme = landing.ThemeLight
	}
	model := landingModel{
		State:     s,
		OtherMode: landing.Reduce(s, landing.ToggleMode{}).Modal,
		NextTheme: landing.Reduce(s, landing.ToggleTheme{}).Theme,

		Features:     features,
		Testimonials: testimonials,
	}
	return r.tmpl.ExecuteTemplate(w, "landing.html", model)
}

type tasksModel struct {
	ViewID string
	Email  string
	Board  template.HTML
}

// Tasks renders the task page shell around the initial board.
func (r *Renderer) Tasks(w io.Writer, viewID string, s taskview.State) error {
	board, err := r.BoardString(viewID, s)
	if err != nil {
		return err
	}
	return r.tmpl.ExecuteTemplate(w, "tasks.html", tasksModel{
		ViewID: viewID,
		Email:  s.Email,
		Board:  template.HTML(board),
	})
}

type boardModel struct {
	ViewID     string
	State      taskview.State
	Visible    []domain.Task
	Summary    domain.Summary
	Filters    []domain.PriorityFilter
	Priorities []domain.Priority
}

// Board renders the part of the task page that changes with every snapshot.
func (r *Renderer) Board(w io.Writer, viewID string, s taskview.State) error {
	return r.tmpl.ExecuteTemplate(w, "board.html", boardModel{
		ViewID:     viewID,
		State:      s,
		Visible:    s.Visible(),
		Summary:    s.Summary(),
		Filters:    domain.PriorityFilters,
		Priorities: domain.Priorities,
	})
}

func (r *Renderer) BoardString(viewID string, s taskview.State) (string, error) {
	var buf bytes.Buffer
	if err := r.Board(&buf, viewID, s); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func landingURL(modal landing.Mode, theme landing.Theme) string {
	q := url.Values{}
	if modal != landing.ModeClosed {
		q.Set("modal", string(modal))
	}
	if theme == landing.ThemeDark {
		q.Set("theme", string(theme))
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}
