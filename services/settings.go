package services

import (
	"context"
	"log/slog"

	"lunch-menu/logger"
	"lunch-menu/models"
)

// Hours manages the operating window and keeps the status monitor in step
// with it.
type Hours struct {
	store   Store
	monitor *StatusMonitor
	log     *logger.Logger
}

func NewHours(store Store, monitor *StatusMonitor, log *logger.Logger) *Hours {
	return &Hours{store: store, monitor: monitor, log: log}
}

func (h *Hours) Window(ctx context.Context) (*models.OperatingWindow, error) {
	return h.store.GetOperatingWindow(ctx)
}

// Update validates and stores new hours, then re-evaluates the open status
// right away.
func (h *Hours) Update(ctx context.Context, w models.OperatingWindow) (*models.OperatingWindow, error) {
	w, err := ValidateWindow(w)
	if err != nil {
		return nil, err
	}
	if err := h.store.UpdateOperatingWindow(ctx, w); err != nil {
		return nil, err
	}
	requestID := logger.RequestID(ctx)
	h.log.Info("hours_updated", requestID, "Operating window updated",
		slog.String("opening_time", w.OpeningTime), slog.String("closing_time", w.ClosingTime))
	if h.monitor != nil {
		if err := h.monitor.Refresh(ctx); err != nil {
			h.log.Error("status_refresh_failed", requestID, "Failed to refresh store status", err)
		}
	}
	return h.store.GetOperatingWindow(ctx)
}
