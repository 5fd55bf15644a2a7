package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"lunch-menu/logger"
	"lunch-menu/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLen = 8

type AuthOptions struct {
	SessionTTL time.Duration
	ResetTTL   time.Duration
	// ResetURL is the page the reset link points at; the token is appended
	// as ?token=.
	ResetURL string
}

// Auth signs admins in and out and handles password resets.
type Auth struct {
	store  AuthStore
	mailer Mailer
	opts   AuthOptions
	log    *logger.Logger
	now    func() time.Time
}

func NewAuth(store AuthStore, mailer Mailer, opts AuthOptions, log *logger.Logger) *Auth {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 12 * time.Hour
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = time.Hour
	}
	if mailer == nil {
		mailer = NewLogMailer(log)
	}
	return &Auth{store: store, mailer: mailer, opts: opts, log: log, now: time.Now}
}

// SetClock replaces the time source used for session and reset expiry.
func (a *Auth) SetClock(now func() time.Time) {
	a.now = now
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignIn checks the credentials and starts a session. Repeated failures for
// the same email put it on a growing cooldown (ThrottleError).
func (a *Auth) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredential
	}
	wait, err := a.store.LoginThrottleWaitSeconds(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check login throttle: %w", err)
	}
	if wait > 0 {
		return nil, &ThrottleError{WaitSeconds: wait}
	}

	admin, err := a.store.AdminByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if admin == nil || bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		if err := a.store.RecordLoginFailed(ctx, email); err != nil {
			a.log.Error("login_throttle_failed", logger.RequestID(ctx), "Failed to record failed login", err)
		}
		return nil, ErrInvalidCredential
	}
	if err := a.store.RecordLoginSuccess(ctx, email); err != nil {
		a.log.Error("login_throttle_failed", logger.RequestID(ctx), "Failed to reset login throttle", err)
	}

	now := a.now()
	sess := models.Session{
		Token:     uuid.NewString(),
		AdminID:   admin.ID,
		Email:     admin.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(a.opts.SessionTTL),
	}
	if err := a.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	a.log.Info("admin_signed_in", logger.RequestID(ctx), "Admin signed in", slog.String("email", email))
	return &sess, nil
}

// SessionFromToken returns the live session for token, or ErrNoSession.
func (a *Auth) SessionFromToken(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	sess, err := a.store.SessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	if sess.Expired(a.now()) {
		_ = a.store.DeleteSession(ctx, token)
		return nil, ErrNoSession
	}
	return sess, nil
}

func (a *Auth) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.store.DeleteSession(ctx, token)
}

// RunSessionJanitor deletes expired sessions every interval until ctx is done.
func (a *Auth) RunSessionJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := a.store.DeleteExpiredSessions(ctx, a.now())
			if err != nil {
				a.log.Error("session_cleanup_failed", "", "Failed to delete expired sessions", err)
				continue
			}
			if n > 0 {
				a.log.Debug("session_cleanup", "", "Expired sessions deleted", slog.Int64("count", n))
			}
		}
	}
}

// RequestPasswordReset mails a one-time reset link. Unknown addresses get no
// mail but the same nil result, so callers cannot probe for accounts.
func (a *Auth) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrEmailRequired
	}
	admin, err := a.store.AdminByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		a.log.Warn("password_reset_unknown", logger.RequestID(ctx), "Password reset for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	token := uuid.NewString()
	if err := a.store.CreatePasswordReset(ctx, token, admin.ID, a.now().Add(a.opts.ResetTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	link := a.opts.ResetURL + "?token=" + url.QueryEscape(token)
	body := "Para redefinir sua senha, acesse:\n\n" + link + "\n\nSe você não solicitou, ignore este email."
	if err := a.mailer.Send(ctx, admin.Email, "Recuperação de senha", body); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// ResetPassword sets a new password using a token from RequestPasswordReset.
func (a *Auth) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLen {
		return ErrWeakPassword
	}
	adminID, err := a.store.ConsumePasswordReset(ctx, token, a.now())
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return a.store.SetAdminPassword(ctx, adminID, string(hash))
}

// EnsureAdmin creates the admin account if it does not exist yet. An empty
// password gets a generated one, returned so it can be shown once.
func (a *Auth) EnsureAdmin(ctx context.Context, email, password string) (generated string, err error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", nil
	}
	if _, err := a.store.AdminByEmail(ctx, email); err == nil {
		return "", nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	if password == "" {
		if password, err = GenerateSecurePassword(); err != nil {
			return "", err
		}
		generated = password
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	if err := a.store.UpsertAdmin(ctx, email, string(hash)); err != nil {
		return "", err
	}
	return generated, nil
}

type sessionKey struct{}

// WithSession stores the authenticated session in ctx.
func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored by WithSession, or nil.
func SessionFrom(ctx context.Context) *models.Session {
	s, _ := ctx.Value(sessionKey{}).(*models.Session)
	return s
}
