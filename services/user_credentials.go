package services

import (
	"context"
	"errors"
	"time"

	"lunch-menu/db"
	"lunch-menu/models"

	"github.com/jackc/pgx/v5"
)

func (s *PgStore) AdminByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var a models.AdminUser
	err := db.Pool.QueryRow(ctx, `
		SELECT id::text, email, password_hash FROM admin_users WHERE email = $1`,
		email,
	).Scan(&a.ID, &a.Email, &a.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *PgStore) UpsertAdmin(ctx context.Context, email, passwordHash string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO admin_users (email, password_hash) VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = now()`,
		email, passwordHash,
	)
	return err
}

func (s *PgStore) SetAdminPassword(ctx context.Context, adminID, passwordHash string) error {
	if !validID(adminID) {
		return ErrNotFound
	}
	tag, err := db.Pool.Exec(ctx, `
		UPDATE admin_users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		adminID, passwordHash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	// A new password ends every open session.
	_, err = db.Pool.Exec(ctx, `DELETE FROM admin_sessions WHERE admin_id = $1`, adminID)
	return err
}

func (s *PgStore) CreateSession(ctx context.Context, sess models.Session) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO admin_sessions (token, admin_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		sess.Token, sess.AdminID, sess.CreatedAt, sess.ExpiresAt,
	)
	return err
}

func (s *PgStore) SessionByToken(ctx context.Context, token string) (*models.Session, error) {
	sess := models.Session{Token: token}
	err := db.Pool.QueryRow(ctx, `
		SELECT s.admin_id::text, a.email, s.created_at, s.expires_at
		FROM admin_sessions s
		JOIN admin_users a ON a.id = s.admin_id
		WHERE s.token = $1`,
		token,
	).Scan(&sess.AdminID, &sess.Email, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (s *PgStore) DeleteSession(ctx context.Context, token string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM admin_sessions WHERE token = $1`, token)
	return err
}

func (s *PgStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM admin_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PgStore) CreatePasswordReset(ctx context.Context, token, adminID string, expiresAt time.Time) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO password_resets (token, admin_id, expires_at) VALUES ($1, $2, $3)`,
		token, adminID, expiresAt,
	)
	return err
}

func (s *PgStore) ConsumePasswordReset(ctx context.Context, token string, now time.Time) (string, error) {
	var adminID string
	err := db.Pool.QueryRow(ctx, `
		UPDATE password_resets SET used_at = $2
		WHERE token = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING admin_id::text`,
		token, now,
	).Scan(&adminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrResetTokenInvalid
		}
		return "", err
	}
	return adminID, nil
}
