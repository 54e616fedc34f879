package landing

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/usecase"
)

// Page drives the auth modal for one browser.
type Page struct {
	identity usecase.IdentityClient
	sessions usecase.SessionStore
	nav      usecase.Navigator
	logger   *zap.Logger
}

func NewPage(identity usecase.IdentityClient, sessions usecase.SessionStore, nav usecase.Navigator, logger *zap.Logger) *Page {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Page{
		identity: identity,
		sessions: sessions,
		nav:      nav,
		logger:   logger,
	}
}

// SubmitAuth signs up or signs in. On success the email is stored in the
// session and the browser is sent to the task list; on failure the identity
// error is shown verbatim and the modal stays open.
func (p *Page) SubmitAuth(ctx context.Context, s State, mode Mode, email, password string) State {
	if mode == ModeClosed {
		mode = ModeSignIn
	}
	s.Modal = mode
	s.Email = email
	email = domain.NormalizeEmail(email)

	var err error
	if mode == ModeSignUp {
		err = p.identity.CreateAccount(ctx, email, password)
	} else {
		err = p.identity.SignIn(ctx, email, password)
	}
	if err != nil {
		p.logger.Info("authentication failed", zap.String("mode", string(mode)), zap.Error(err))
		return Reduce(s, AuthFailed{Message: err.Error()})
	}

	if err := p.sessions.Set(ctx, domain.SessionKeyUserEmail, email); err != nil {
		p.logger.Error("failed to persist session", zap.Error(err))
		return Reduce(s, AuthFailed{Message: "could not start a session, please try again"})
	}
	p.nav.GoTo(usecase.PathTasks)
	return Reduce(s, Cancel{})
}
