package auth

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
	"github.com/fastygo/taskflow/usecase"
)

// Config holds password policy and API token settings.
type Config struct {
	MinPasswordLength int
	BcryptCost        int
	TokenSecret       string
	TokenIssuer       string
	TokenTTL          time.Duration
}

// UseCase is the email/password identity provider.
type UseCase struct {
	users  repository.UserRepository
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

var _ usecase.IdentityClient = (*UseCase)(nil)

func New(users repository.UserRepository, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = 6
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &UseCase{
		users:  users,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (uc *UseCase) CreateAccount(ctx context.Context, email, password string) error {
	email = domain.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	if len([]rune(password)) < uc.cfg.MinPasswordLength {
		return domain.WeakPasswordError(uc.cfg.MinPasswordLength)
	}

	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return domain.ErrEmailInUse
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cfg.BcryptCost)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "failed to hash password", err)
	}

	user := &domain.User{Email: email, PasswordHash: string(hash)}
	if err := uc.users.Create(ctx, user); err != nil {
		return err
	}
	uc.logger.Info("account created", zap.String("user_id", user.ID))
	return nil
}

func (uc *UseCase) SignIn(ctx context.Context, email, password string) error {
	email = domain.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidCredential
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.logger.Info("sign-in rejected", zap.String("user_id", user.ID))
		return domain.ErrInvalidCredential
	}
	return nil
}

// SignOut always succeeds; sessions are owned by the caller.
func (uc *UseCase) SignOut(ctx context.Context) error {
	uc.logger.Debug("signed out")
	return nil
}

// IssueToken signs an API bearer token for email.
func (uc *UseCase) IssueToken(email string) (string, time.Time, error) {
	if uc.cfg.TokenSecret == "" {
		return "", time.Time{}, domain.NewError(domain.ErrCodeInternal, "token signing is not configured")
	}
	now := uc.now()
	expires := now.Add(uc.cfg.TokenTTL)
	claims := jwt.MapClaims{
		"email": domain.NormalizeEmail(email),
		"iss":   uc.cfg.TokenIssuer,
		"iat":   now.Unix(),
		"exp":   expires.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.cfg.TokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func validateEmail(email string) error {
	if email == "" {
		return domain.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return domain.ErrInvalidEmail
	}
	return nil
}
