// Package landing holds the landing page view-model: the auth modal, its
// sign-in/sign-up mode, the last error and the colour theme.
package landing

// Mode is the auth modal state.
type Mode string

const (
	ModeClosed Mode = ""
	ModeSignIn Mode = "signin"
	ModeSignUp Mode = "signup"
)

// ParseMode maps a query or form value to an open mode; anything else is closed.
func ParseMode(raw string) Mode {
	switch Mode(raw) {
	case ModeSignIn, ModeSignUp:
		return Mode(raw)
	default:
		return ModeClosed
	}
}

// Theme is presentation only and never persisted.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(raw string) Theme {
	if Theme(raw) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// State is everything the landing page renders.
type State struct {
	Modal Mode
	Email string
	Error string
	Theme Theme
}

// Open reports whether the auth modal is shown.
func (s State) Open() bool {
	return s.Modal != ModeClosed
}

// FromQuery rebuilds the render state carried in the page URL.
func FromQuery(modal, theme string) State {
	return State{Modal: ParseMode(modal), Theme: ParseTheme(theme)}
}

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

type OpenModal struct{ Mode Mode }

type ToggleMode struct{}

type Cancel struct{}

type AuthFailed struct{ Message string }

type ToggleTheme struct{}

func (OpenModal) isEvent()   {}
func (ToggleMode) isEvent()  {}
func (Cancel) isEvent()      {}
func (AuthFailed) isEvent()  {}
func (ToggleTheme) isEvent() {}

// Reduce returns the state after ev. It never touches persisted data.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case OpenModal:
		mode := e.Mode
		if mode == ModeClosed {
			mode = ModeSignIn
		}
		s.Modal = mode
		s.Error = ""
	case ToggleMode:
		if s.Modal == ModeSignUp {
			s.Modal = ModeSignIn
		} else {
			s.Modal = ModeSignUp
		}
		s.Error = ""
	case Cancel:
		s.Modal = ModeClosed
		s.Email = ""
		s.Error = ""
	case AuthFailed:
		if s.Modal == ModeClosed {
			s.Modal = ModeSignIn
		}
		s.Error = e.Message
	case ToggleTheme:
		if s.Theme == ThemeDark {
			s.Theme = ThemeLight
		} else {
			s.Theme = ThemeDark
		}
	}
	return s
}
