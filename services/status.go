package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"lunch-menu/logger"
	"lunch-menu/models"
)

// OpenChecker is the read side of the status monitor.
type OpenChecker interface {
	IsOpen() bool
}

// StoreStatus is the last evaluation of the operating window.
type StoreStatus struct {
	Open        bool      `json:"open"`
	OpeningTime string    `json:"opening_time,omitempty"`
	ClosingTime string    `json:"closing_time,omitempty"`
	CheckedAt   time.Time `json:"checked_at"`
}

// StatusMonitor re-evaluates whether the store is open on a fixed interval
// and on demand after the hours change. Until a window has been loaded the
// store reads as closed.
type StatusMonitor struct {
	store    Store
	loc      *time.Location
	interval time.Duration
	log      *logger.Logger
	now      func() time.Time

	mu     sync.RWMutex
	window *models.OperatingWindow
	status StoreStatus
}

func NewStatusMonitor(store Store, loc *time.Location, interval time.Duration, log *logger.Logger) *StatusMonitor {
	if loc == nil {
		loc = time.UTC
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatusMonitor{
		store:    store,
		loc:      loc,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// SetClock replaces the time source. Call before Run.
func (m *StatusMonitor) SetClock(now func() time.Time) {
	m.now = now
}

// Run loads the window, then re-evaluates every interval until ctx is done.
func (m *StatusMonitor) Run(ctx context.Context) error {
	if err := m.Refresh(ctx); err != nil {
		m.log.Error("status_refresh_failed", "", "Failed to load operating window", err)
	}
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.Refresh(ctx); err != nil {
				// Keep evaluating against the last known window.
				m.log.Error("status_refresh_failed", "", "Failed to reload operating window", err)
				m.evaluate()
			}
		}
	}
}

// Refresh reloads the window from the store and re-evaluates immediately.
func (m *StatusMonitor) Refresh(ctx context.Context) error {
	w, err := m.store.GetOperatingWindow(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.window = w
	m.mu.Unlock()
	m.evaluate()
	return nil
}

func (m *StatusMonitor) evaluate() {
	now := m.now().In(m.loc)
	m.mu.Lock()
	prev := m.status.Open
	st := StoreStatus{CheckedAt: now}
	if m.window != nil {
		st.OpeningTime = m.window.OpeningTime
		st.ClosingTime = m.window.ClosingTime
		st.Open = IsOpen(now, m.window.OpeningTime, m.window.ClosingTime)
	}
	m.status = st
	m.mu.Unlock()

	if st.Open != prev {
		m.log.Info("store_status_changed", "", "Store status changed", slog.Bool("open", st.Open))
	}
}

func (m *StatusMonitor) IsOpen() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Open
}

func (m *StatusMonitor) Status() StoreStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Window is the operating window last loaded, or nil before the first load.
func (m *StatusMonitor) Window() *models.OperatingWindow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.window == nil {
		return nil
	}
	w := *m.window
	return &w
}

// Now is the monitor's clock in the restaurant's time zone.
func (m *StatusMonitor) Now() time.Time {
	return m.now().In(m.loc)
}
