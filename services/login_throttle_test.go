package services

import (
	"context"
	"testing"
	"time"

	"lunch-menu/db"
)

func TestCooldownSecondsForFailCount(t *testing.T) {
	tests := []struct {
		failCount int
		want      int
	}{
		{0, 1},   // 2^0=1
		{1, 2},   // 2^1=2
		{2, 4},   // 2^2=4
		{3, 8},   // 2^3=8
		{4, 16},  // 2^4=16
		{5, 30},  // 2^5=32 -> cap 30
		{6, 30},  // 2^6=64 -> cap 30
		{10, 30}, // cap 30
		{80, 30}, // overflow -> cap 30
	}
	for _, tt := range tests {
		got := CooldownSecondsForFailCount(tt.failCount)
		if got != tt.want {
			t.Errorf("CooldownSecondsForFailCount(%d) = %d, want %d", tt.failCount, got, tt.want)
		}
	}
}

func TestMemStoreThrottle(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s := NewMemStore()
	s.SetClock(func() time.Time { return now })
	ctx := context.Background()
	const email = "chef@example.com"

	if wait, _ := s.LoginThrottleWaitSeconds(ctx, email); wait != 0 {
		t.Fatalf("fresh wait = %d", wait)
	}
	_ = s.RecordLoginFailed(ctx, email)
	wait, _ := s.LoginThrottleWaitSeconds(ctx, email)
	if wait <= 0 || wait > 3 {
		t.Errorf("after one fail wait = %d, want ~2", wait)
	}
	for i := 0; i < 8; i++ {
		_ = s.RecordLoginFailed(ctx, email)
	}
	if wait, _ := s.LoginThrottleWaitSeconds(ctx, email); wait > 31 {
		t.Errorf("after 9 fails wait = %d, want <= cap", wait)
	}
	_ = s.RecordLoginSuccess(ctx, email)
	if wait, _ := s.LoginThrottleWaitSeconds(ctx, email); wait != 0 {
		t.Errorf("after success wait = %d, want 0", wait)
	}
}

// Integration test for the Postgres throttle. Skipped without a DB pool.
func TestLoginThrottle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping throttle integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping throttle integration test: no DB pool")
	}
	ctx := context.Background()
	s := NewPgStore()
	const email = "throttle-test@example.com"
	defer func() { _ = s.RecordLoginSuccess(ctx, email) }()

	_ = s.RecordLoginSuccess(ctx, email)
	wait, err := s.LoginThrottleWaitSeconds(ctx, email)
	if err != nil {
		t.Fatalf("LoginThrottleWaitSeconds after success: %v", err)
	}
	if wait != 0 {
		t.Errorf("after success: wait = %d, want 0", wait)
	}

	_ = s.RecordLoginFailed(ctx, email)
	wait, err = s.LoginThrottleWaitSeconds(ctx, email)
	if err != nil {
		t.Fatalf("LoginThrottleWaitSeconds after fail: %v", err)
	}
	if wait <= 0 || wait > ThrottleCooldownCapSeconds {
		t.Errorf("after one fail: wait = %d, want in (0, 30]", wait)
	}

	for i := 0; i < 8; i++ {
		_ = s.RecordLoginFailed(ctx, email)
	}
	wait, _ = s.LoginThrottleWaitSeconds(ctx, email)
	if wait > ThrottleCooldownCapSeconds+1 {
		t.Errorf("after 9 fails: wait = %d, want <= cap", wait)
	}
}
