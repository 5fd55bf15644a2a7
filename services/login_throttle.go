package services

import (
	"context"
	"errors"
	"math"
	"time"

	"lunch-menu/db"

	"github.com/jackc/pgx/v5"
)

const ThrottleCooldownCapSeconds = 30

// CooldownSecondsForFailCount returns min(30, 2^failCount).
func CooldownSecondsForFailCount(failCount int) int {
	s := int(math.Pow(2, float64(failCount)))
	if s > ThrottleCooldownCapSeconds || s <= 0 {
		return ThrottleCooldownCapSeconds
	}
	return s
}

// LoginThrottleWaitSeconds returns how many seconds the email must wait
// before trying again (0 if no cooldown).
func (s *PgStore) LoginThrottleWaitSeconds(ctx context.Context, email string) (int, error) {
	var cooldownUntil *time.Time
	err := db.Pool.QueryRow(ctx, `
		SELECT cooldown_until FROM login_throttle WHERE email = $1`,
		email,
	).Scan(&cooldownUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	if cooldownUntil == nil {
		return 0, nil
	}
	if until := *cooldownUntil; time.Now().Before(until) {
		return int(time.Until(until).Seconds()) + 1, nil
	}
	return 0, nil
}

// RecordLoginFailed increments fail_count and sets
// cooldown_until = now() + min(30, 2^fail_count) seconds.
func (s *PgStore) RecordLoginFailed(ctx context.Context, email string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO login_throttle (email, fail_count, last_failed_at, cooldown_until, updated_at)
		VALUES ($1, 1, now(), now() + (LEAST(30, POWER(2, 1)::int) || ' seconds')::interval, now())
		ON CONFLICT (email) DO UPDATE SET
			fail_count = login_throttle.fail_count + 1,
			last_failed_at = now(),
			cooldown_until = now() + (LEAST(30, POWER(2, LEAST(login_throttle.fail_count + 1, 10))::int) || ' seconds')::interval,
			updated_at = now()`,
		email,
	)
	return err
}

// RecordLoginSuccess clears the cooldown for the email.
func (s *PgStore) RecordLoginSuccess(ctx context.Context, email string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO login_throttle (email, fail_count, last_failed_at, cooldown_until, updated_at)
		VALUES ($1, 0, NULL, NULL, now())
		ON CONFLICT (email) DO UPDATE SET
			fail_count = 0,
			last_failed_at = NULL,
			cooldown_until = NULL,
			updated_at = now()`,
		email,
	)
	return err
}
