// Package service is the single entry point the rest of the application
// uses for auction notifications. It is a thin facade over the scheduler
// bound by the environment selector.
//
// Everything here is best-effort by design: public methods swallow internal
// errors and return defaults rather than propagate, with one exception —
// Initialize reports a denied notification permission so the caller can
// surface an actionable alert.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/motorbid/auction-alerts/internal/environment"
	"github.com/motorbid/auction-alerts/internal/ledger"
	"github.com/motorbid/auction-alerts/internal/notify"
	"github.com/motorbid/auction-alerts/internal/scheduler"
	"github.com/motorbid/auction-alerts/internal/vehicle"
)

// Info describes the bound backend for the diagnostics surface.
type Info struct {
	Backend      string              `json:"backend"`
	Reason       string              `json:"reason"`
	Capabilities notify.Capabilities `json:"capabilities"`
	Initialized  bool                `json:"initialized"`
}

// Service is the process-wide notification facade. Construct one with New
// and share the instance; there is no hidden re-construction.
type Service struct {
	backend notify.Backend
	sched   *scheduler.Scheduler
	sel     environment.Selection
	logger  *slog.Logger

	mu          sync.Mutex
	initialized bool
}

// New wires the facade over an already-selected backend.
func New(backend notify.Backend, sched *scheduler.Scheduler, sel environment.Selection, logger *slog.Logger) *Service {
	return &Service{
		backend: backend,
		sched:   sched,
		sel:     sel,
		logger:  logger,
	}
}

// Initialize requests notification permission and starts the scheduler.
// Safe to call multiple times; second and later calls are no-ops. A denied
// permission is the one error surfaced to callers.
func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}

	if status := s.backend.RequestPermission(ctx); status != notify.PermissionGranted {
		s.logger.Warn("notification permission not granted", "status", status)
		return fmt.Errorf("initialize notifications: %w", notify.ErrPermissionDenied)
	}

	if err := s.sched.Start(ctx); err != nil {
		s.logger.Error("scheduler start failed", "error", err)
		return nil
	}

	s.initialized = true
	s.logger.Info("notification service initialized", "backend", s.sel.Backend)
	return nil
}

// UpdateFavoriteStatus schedules or cancels the vehicle's reminder.
func (s *Service) UpdateFavoriteStatus(ctx context.Context, v vehicle.Vehicle, isFavorite bool) {
	if err := s.sched.UpdateFavoriteStatus(ctx, v, isFavorite); err != nil {
		s.logger.Warn("favorite status update failed", "vehicle_id", v.ID, "error", err)
	}
}

// ScheduleAllFavoriteNotifications reconciles the schedule against a full
// vehicle list. Returns how many notifications were (re)scheduled.
func (s *Service) ScheduleAllFavoriteNotifications(ctx context.Context, vehicles []vehicle.Vehicle) int {
	return s.sched.ScheduleAllFavorites(ctx, vehicles)
}

// SendTestNotification fires an immediate test notification.
func (s *Service) SendTestNotification(ctx context.Context, v vehicle.Vehicle) {
	if err := s.sched.SendTest(ctx, v); err != nil {
		s.logger.Warn("test notification failed", "vehicle_id", v.ID, "error", err)
	}
}

// SweepExpiredNotifications prunes entries whose auction end time has
// passed and returns the number pruned.
func (s *Service) SweepExpiredNotifications(ctx context.Context) int {
	return s.sched.Sweep(ctx)
}

// GetNotificationStats partitions current ledger entries on fire time.
func (s *Service) GetNotificationStats() scheduler.Stats {
	return s.sched.Stats()
}

// GetScheduledNotifications lists current ledger entries.
func (s *Service) GetScheduledNotifications() []ledger.Entry {
	return s.sched.ListScheduled()
}

// ClearAllNotifications cancels every scheduled notification.
func (s *Service) ClearAllNotifications(ctx context.Context) {
	if err := s.sched.ClearAll(ctx); err != nil {
		s.logger.Warn("clear all notifications failed", "error", err)
	}
}

// GetServiceInfo reports which backend variant is bound and why.
func (s *Service) GetServiceInfo() Info {
	s.mu.Lock()
	initialized := s.initialized
	s.mu.Unlock()

	return Info{
		Backend:      s.sel.Backend,
		Reason:       s.sel.Reason,
		Capabilities: s.backend.Capabilities(),
		Initialized:  initialized,
	}
}

// Cleanup stops timers and workers and marks the facade uninitialized. A
// later Initialize starts over.
func (s *Service) Cleanup() {
	s.mu.Lock()
	s.initialized = false
	s.mu.Unlock()

	s.sched.Cleanup()
	if err := s.backend.Close(); err != nil {
		s.logger.Warn("backend close failed", "error", err)
	}
	s.logger.Info("notification service cleaned up")
}
