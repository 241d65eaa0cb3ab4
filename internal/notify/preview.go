package notify

import (
	"context"
	"log/slog"
	"time"
)

// Preview is the backend bound inside the sandboxed preview runtime. The
// host offers no background execution and no real delivery channel, so
// registrations are bookkeeping only: the scheduler's foreground sweep
// detects elapsed fire times and calls SendImmediate retroactively, which
// here surfaces as a structured log line.
type Preview struct {
	registry *timerRegistry
	logger   *slog.Logger
}

// NewPreview creates the preview backend.
func NewPreview(logger *slog.Logger) *Preview {
	return &Preview{
		registry: newTimerRegistry(false, nil),
		logger:   logger,
	}
}

func (p *Preview) Name() string { return "preview" }

func (p *Preview) Capabilities() Capabilities {
	return Capabilities{}
}

// RequestPermission always grants; the preview host has no permission
// prompt to show.
func (p *Preview) RequestPermission(_ context.Context) Permission {
	return PermissionGranted
}

func (p *Preview) PermissionStatus(_ context.Context) Permission {
	return PermissionGranted
}

func (p *Preview) ScheduleAt(_ context.Context, id string, fireAt time.Time, title, body string, data map[string]string) (string, error) {
	if !fireAt.After(time.Now()) {
		return "", ErrFireTimeNotFuture
	}
	backendID := p.registry.schedule(id, fireAt, title, body, data)
	p.logger.Debug("preview notification registered", "id", id, "fire_at", fireAt)
	return backendID, nil
}

func (p *Preview) Cancel(_ context.Context, notificationID string) error {
	p.registry.cancel(notificationID)
	return nil
}

func (p *Preview) CancelAll(_ context.Context) error {
	p.registry.cancelAll()
	return nil
}

// SendImmediate logs the delivery. The preview host renders notifications
// from this log stream.
func (p *Preview) SendImmediate(_ context.Context, title, body string, data map[string]string) error {
	p.logger.Info("preview notification delivered", "title", title, "body", body, "data", data)
	return nil
}

func (p *Preview) ListPending(_ context.Context) ([]Pending, error) {
	return p.registry.pending(), nil
}

// Badge counts are unsupported in the preview host.
func (p *Preview) SetBadgeCount(_ context.Context, _ int) error { return nil }
func (p *Preview) ClearBadge(_ context.Context) error           { return nil }

func (p *Preview) RegisterBackgroundTask(_ context.Context, _ time.Duration, _ func(context.Context)) error {
	return ErrBackgroundUnsupported
}

func (p *Preview) Close() error {
	p.registry.cancelAll()
	return nil
}
