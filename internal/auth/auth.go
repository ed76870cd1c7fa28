package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sl "rillshop/internal/lib/logger/sl"
	"rillshop/internal/lib/password"
	"rillshop/internal/lib/token"
	"rillshop/internal/models"
	"rillshop/internal/observability/metrics"
	"rillshop/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserBanned         = errors.New("account is banned")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	sessions    SessionStore
	sessionTTL  time.Duration
}

type UserSaver interface {
	SaveUser(ctx context.Context, user models.User) (uid int64, err error)
	UpdatePasswordHash(ctx context.Context, userID int64, passHash string) error
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
	VerifyEmail(ctx context.Context, verificationToken string) (uid int64, err error)
}

type SessionStore interface {
	SaveSession(ctx context.Context, tokenHash string, s models.Session, ttl time.Duration) error
	Session(ctx context.Context, tokenHash string) (models.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
}

// New builds the auth service. sessions may be nil: login tokens are then
// still issued but nothing can check them later.
func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	sessions SessionStore,
	sessionTTL time.Duration,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		sessions:    sessions,
		sessionTTL:  sessionTTL,
	}
}

type LoginResult struct {
	Token string
	User  models.User
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterNewUser stores a new unverified user and returns its id together
// with the one-time e-mail verification token.
func (a *Auth) RegisterNewUser(
	ctx context.Context,
	email string,
	name string,
	pass string,
) (int64, string, error) {
	const op = "auth.RegisterNewUser"

	log := a.log.With(
		slog.String("op", op),
	)

	log.Info("Registering new user")

	passHash, err := password.Hash(pass)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		metrics.AuthActionsTotal.WithLabelValues("register", metrics.ResultError).Inc()

		return 0, "", fmt.Errorf("%s: %w", op, err)
	}

	verificationToken, err := token.New()
	if err != nil {
		log.Error("failed to generate verification token", sl.Err(err))
		metrics.AuthActionsTotal.WithLabelValues("register", metrics.ResultError).Inc()

		return 0, "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := a.usrSaver.SaveUser(ctx, models.User{
		Email:             NormalizeEmail(email),
		Name:              strings.TrimSpace(name),
		PassHash:          passHash,
		VerificationToken: &verificationToken,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("User already exists")
			metrics.AuthActionsTotal.WithLabelValues("register", "exists").Inc()

			return 0, "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("Failed to save user", sl.Err(err))
		metrics.AuthActionsTotal.WithLabelValues("register", metrics.ResultError).Inc()

		return 0, "", fmt.Errorf("%s: %w", op, err)
	}

	metrics.AuthActionsTotal.WithLabelValues("register", metrics.ResultOK).Inc()

	return id, verificationToken, nil
}

// * Login проверяет учетные данные и выдает новый непрозрачный токен
func (a *Auth) Login(ctx context.Context, email, pass string) (LoginResult, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.User(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("user not found")
			metrics.AuthActionsTotal.WithLabelValues("login", "invalid").Inc()

			return LoginResult{}, ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		metrics.AuthActionsTotal.WithLabelValues("login", metrics.ResultError).Inc()

		return LoginResult{}, fmt.Errorf("%s: %w", op, err)
	}

	rehash, err := password.Compare(user.PassHash, pass)
	if err != nil {
		log.Info("invalid credentials", sl.Err(err), slog.Int64("uid", user.ID))
		metrics.AuthActionsTotal.WithLabelValues("login", "invalid").Inc()

		return LoginResult{}, ErrInvalidCredentials
	}

	if user.Banned {
		log.Warn("banned user tried to log in", slog.Int64("uid", user.ID))
		metrics.AuthActionsTotal.WithLabelValues("login", "banned").Inc()

		return LoginResult{}, ErrUserBanned
	}

	if rehash {
		a.upgradePasswordHash(ctx, log, user.ID, pass)
	}

	tok, err := token.New()
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		metrics.AuthActionsTotal.WithLabelValues("login", metrics.ResultError).Inc()

		return LoginResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if a.sessions != nil {
		err = a.sessions.SaveSession(ctx, token.Hash(tok), models.Session{
			UserID:    user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      user.Role,
			CreatedAt: time.Now().UTC(),
		}, a.sessionTTL)
		if err != nil {
			log.Error("failed to save session", sl.Err(err))
			metrics.AuthActionsTotal.WithLabelValues("login", metrics.ResultError).Inc()

			return LoginResult{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	log.Info("user logged in successfully", slog.Int64("uid", user.ID))
	metrics.AuthActionsTotal.WithLabelValues("login", metrics.ResultOK).Inc()

	return LoginResult{Token: tok, User: user}, nil
}

// upgradePasswordHash replaces a hash made with old parameters. Failure only
// means the upgrade is retried on the next login.
func (a *Auth) upgradePasswordHash(ctx context.Context, log *slog.Logger, userID int64, pass string) {
	passHash, err := password.Hash(pass)
	if err != nil {
		log.Error("failed to rehash password", sl.Err(err))
		return
	}

	if err := a.usrSaver.UpdatePasswordHash(ctx, userID, passHash); err != nil {
		log.Error("failed to store upgraded password hash", sl.Err(err))
		return
	}

	log.Info("password hash upgraded", slog.Int64("uid", userID))
}

func (a *Auth) VerifyUser(ctx context.Context, verificationToken string) (int64, error) {
	const op = "auth.VerifyUser"

	log := a.log.With(
		slog.String("op", op),
	)

	uid, err := a.usrProvider.VerifyEmail(ctx, verificationToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			log.Info("verification token not found")
			metrics.AuthActionsTotal.WithLabelValues("verify", "invalid").Inc()

			return 0, ErrInvalidToken
		}

		log.Error("failed to update verification status in database", sl.Err(err))
		metrics.AuthActionsTotal.WithLabelValues("verify", metrics.ResultError).Inc()

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("email verified", slog.Int64("uid", uid))
	metrics.AuthActionsTotal.WithLabelValues("verify", metrics.ResultOK).Inc()

	return uid, nil
}

// Session resolves a login token issued by Login.
func (a *Auth) Session(ctx context.Context, tok string) (models.Session, error) {
	const op = "auth.Session"

	if a.sessions == nil {
		metrics.AuthActionsTotal.WithLabelValues("session", "invalid").Inc()
		return models.Session{}, ErrInvalidSession
	}

	s, err := a.sessions.Session(ctx, token.Hash(tok))
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			metrics.AuthActionsTotal.WithLabelValues("session", "invalid").Inc()
			return models.Session{}, ErrInvalidSession
		}

		a.log.Error("failed to load session", slog.String("op", op), sl.Err(err))
		metrics.AuthActionsTotal.WithLabelValues("session", metrics.ResultError).Inc()

		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.AuthActionsTotal.WithLabelValues("session", metrics.ResultOK).Inc()

	return s, nil
}

// Logout forgets the session behind tok. Unknown tokens are not an error.
func (a *Auth) Logout(ctx context.Context, tok string) error {
	const op = "auth.Logout"

	if a.sessions == nil {
		return nil
	}

	if err := a.sessions.DeleteSession(ctx, token.Hash(tok)); err != nil {
		a.log.Error("failed to delete session", slog.String("op", op), sl.Err(err))
		metrics.AuthActionsTotal.WithLabelValues("logout", metrics.ResultError).Inc()

		return fmt.Errorf("%s: %w", op, err)
	}

	a.log.Info("logout successful", slog.String("op", op))
	metrics.AuthActionsTotal.WithLabelValues("logout", metrics.ResultOK).Inc()

	return nil
}
