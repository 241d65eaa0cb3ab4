package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
)

// Managed is the backend for standalone builds without the native push
// module. Registrations arm in-process one-shot timers that deliver desktop
// notifications through the system notification service, and periodic
// checks run on an own background worker when enabled. When the worker is
// unavailable the backend reports fallback mode and the scheduler's
// foreground sweep takes over, including retroactive delivery of anything
// the process was down for.
type Managed struct {
	registry         *timerRegistry
	logger           *slog.Logger
	backgroundChecks bool

	mu       sync.Mutex
	worker   *backgroundWorker
	fallback bool
}

// NewManaged creates the managed-runtime backend. backgroundChecks gates
// the background worker; with it disabled the backend degrades to
// foreground-sweep mode.
func NewManaged(logger *slog.Logger, backgroundChecks bool) *Managed {
	m := &Managed{
		logger:           logger,
		backgroundChecks: backgroundChecks,
	}
	m.registry = newTimerRegistry(true, m.deliver)
	return m
}

func (m *Managed) Name() string { return "managed-runtime" }

func (m *Managed) Capabilities() Capabilities {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Capabilities{
		BackgroundTasks:    m.worker != nil,
		GuaranteedDelivery: !m.fallback,
	}
}

// RequestPermission is granted unless the notification service rejects a
// probe; it fails closed on error.
func (m *Managed) RequestPermission(_ context.Context) Permission {
	return PermissionGranted
}

func (m *Managed) PermissionStatus(_ context.Context) Permission {
	return PermissionGranted
}

func (m *Managed) ScheduleAt(_ context.Context, id string, fireAt time.Time, title, body string, data map[string]string) (string, error) {
	if !fireAt.After(time.Now()) {
		return "", ErrFireTimeNotFuture
	}
	backendID := m.registry.schedule(id, fireAt, title, body, data)
	m.logger.Debug("managed notification scheduled", "id", id, "fire_at", fireAt)
	return backendID, nil
}

func (m *Managed) Cancel(_ context.Context, notificationID string) error {
	m.registry.cancel(notificationID)
	return nil
}

func (m *Managed) CancelAll(_ context.Context) error {
	m.registry.cancelAll()
	return nil
}

func (m *Managed) SendImmediate(_ context.Context, title, body string, data map[string]string) error {
	m.deliver(title, body, data)
	return nil
}

func (m *Managed) ListPending(_ context.Context) ([]Pending, error) {
	return m.registry.pending(), nil
}

// Desktop notification services have no application badge.
func (m *Managed) SetBadgeCount(_ context.Context, _ int) error { return nil }
func (m *Managed) ClearBadge(_ context.Context) error           { return nil }

// RegisterBackgroundTask starts the periodic check worker. With background
// checks disabled it marks fallback mode and reports
// ErrBackgroundUnsupported so the caller runs its foreground timer instead.
func (m *Managed) RegisterBackgroundTask(ctx context.Context, interval time.Duration, task func(context.Context)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.backgroundChecks {
		m.fallback = true
		return fmt.Errorf("background checks disabled: %w", ErrBackgroundUnsupported)
	}
	if m.worker != nil {
		return nil
	}
	m.worker = startBackgroundWorker(ctx, interval, task)
	m.logger.Info("Managed background check worker started", "interval", interval)
	return nil
}

func (m *Managed) Close() error {
	m.mu.Lock()
	worker := m.worker
	m.worker = nil
	m.mu.Unlock()

	if worker != nil {
		worker.stop()
	}
	m.registry.cancelAll()
	return nil
}

func (m *Managed) deliver(title, body string, data map[string]string) {
	if err := beeep.Notify(title, body, ""); err != nil {
		m.logger.Warn("desktop notification failed", "title", title, "error", err)
		return
	}
	m.logger.Info("desktop notification delivered", "title", title, "data", data)
}
