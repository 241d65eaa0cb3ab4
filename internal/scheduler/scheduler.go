// Package scheduler decides, for each favorited vehicle, whether and when
// an auction-ended notification fires. It owns the ledger, keeps it
// consistent with favorite toggles and data reloads, and reconciles it
// against wall-clock time for backends without guaranteed delivery.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/motorbid/auction-alerts/internal/ledger"
	"github.com/motorbid/auction-alerts/internal/notify"
	"github.com/motorbid/auction-alerts/internal/vehicle"
)

// Stats partitions current ledger entries on target fire time. Pure read;
// expired-but-unswept entries stay counted until the next sweep prunes them.
type Stats struct {
	Total    int `json:"total"`
	Upcoming int `json:"upcoming"`
	Expired  int `json:"expired"`
}

// Scheduler is the per-process notification scheduler. One instance, bound
// to exactly one backend. All operations serialize on an internal mutex so
// only one logical schedule/cancel per vehicle is in flight at a time.
type Scheduler struct {
	mu            sync.Mutex
	backend       notify.Backend
	ledger        *ledger.Ledger
	logger        *slog.Logger
	sweepInterval time.Duration

	sweepCancel context.CancelFunc
	sweepDone   chan struct{}
}

// New creates a scheduler over a bound backend and ledger.
func New(backend notify.Backend, led *ledger.Ledger, sweepInterval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		backend:       backend,
		ledger:        led,
		logger:        logger,
		sweepInterval: sweepInterval,
	}
}

// Start loads the persisted ledger, sweeps anything that elapsed while the
// process was down, re-registers the surviving entries with the backend,
// and arranges periodic checks: on the backend's own background worker when
// it has one, otherwise on a foreground sweep timer.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if err := s.ledger.Load(ctx); err != nil {
		// Memory starts empty; not fatal.
		s.logger.Warn("ledger load failed, starting empty", "error", err)
	}
	s.sweepLocked(ctx)
	s.rearmLocked(ctx)
	s.mu.Unlock()

	err := s.backend.RegisterBackgroundTask(ctx, s.sweepInterval, func(taskCtx context.Context) {
		s.Sweep(taskCtx)
	})
	if err != nil {
		s.logger.Info("falling back to foreground sweep timer",
			"interval", s.sweepInterval, "reason", err)
		s.startForegroundSweep()
	}
	return nil
}

// rearmLocked re-registers every recovered future entry with the backend.
// Backend registrations live in this process and do not survive a restart;
// the persisted ledger is the record to rebuild them from. Entries that
// cannot be re-registered stay in the ledger for the sweep to handle.
func (s *Scheduler) rearmLocked(ctx context.Context) {
	rearmed := 0
	for _, entry := range s.ledger.All() {
		if !entry.EndTime.After(time.Now()) {
			continue
		}
		if err := s.scheduleLocked(ctx, entry.Vehicle); err != nil {
			s.logger.Warn("re-registering recovered notification failed",
				"vehicle_id", entry.VehicleID, "error", err)
			continue
		}
		rearmed++
	}
	if rearmed > 0 {
		s.logger.Info("recovered notifications re-registered", "count", rearmed)
	}
}

// Schedule applies the unscheduled-to-scheduled transition for one vehicle.
// Non-favorites and vehicles whose auction end time is invalid or already
// past are skipped silently — a skip, not an error. An existing entry is
// cancelled first, so calling twice leaves exactly one live registration.
func (s *Scheduler) Schedule(ctx context.Context, v vehicle.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduleLocked(ctx, v)
}

func (s *Scheduler) scheduleLocked(ctx context.Context, v vehicle.Vehicle) error {
	if !v.Favourite {
		return nil
	}

	end, err := v.AuctionEndTime()
	if err != nil || !end.After(time.Now()) {
		s.logger.Debug("skipping vehicle without a future auction end",
			"vehicle_id", v.ID, "auction_time", v.AuctionDateTime)
		return nil
	}

	if prev, ok := s.ledger.Get(v.ID); ok {
		s.cancelEntryLocked(ctx, prev)
	}

	backendID, err := s.backend.ScheduleAt(ctx, callerID(v.ID), end,
		endedTitle, endedBody(v), payload(v, "auction-ended"))
	if err != nil {
		s.logger.Warn("backend rejected schedule", "vehicle_id", v.ID, "error", err)
		return fmt.Errorf("schedule vehicle %d: %w", v.ID, err)
	}

	s.ledger.Put(ledger.Entry{
		NotificationID: backendID,
		VehicleID:      v.ID,
		EndTime:        end,
		Vehicle:        v,
	})
	s.persistLocked(ctx)

	s.logger.Info("auction notification scheduled",
		"vehicle_id", v.ID, "vehicle", v.DisplayName(), "fire_at", end)
	return nil
}

// CancelVehicle applies the scheduled-to-unscheduled transition. Vehicles
// without an entry are a no-op.
func (s *Scheduler) CancelVehicle(ctx context.Context, vehicleID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.ledger.Get(vehicleID)
	if !ok {
		return nil
	}
	s.cancelEntryLocked(ctx, entry)
	s.persistLocked(ctx)

	s.logger.Info("auction notification cancelled", "vehicle_id", vehicleID)
	return nil
}

func (s *Scheduler) cancelEntryLocked(ctx context.Context, entry ledger.Entry) {
	if err := s.backend.Cancel(ctx, entry.NotificationID); err != nil {
		s.logger.Warn("backend cancel failed", "vehicle_id", entry.VehicleID, "error", err)
	}
	s.ledger.Remove(entry.VehicleID)
}

// UpdateFavoriteStatus is the favorite-toggle entry point.
func (s *Scheduler) UpdateFavoriteStatus(ctx context.Context, v vehicle.Vehicle, isFavorite bool) error {
	if isFavorite {
		v.Favourite = true
		return s.Schedule(ctx, v)
	}
	return s.CancelVehicle(ctx, v.ID)
}

// ScheduleAllFavorites reconciles the ledger against a full vehicle list.
// Each favorite is attempted independently; one vehicle's failure never
// aborts the batch. An existing entry whose end time is unchanged is kept
// as is; a changed end time is replaced.
func (s *Scheduler) ScheduleAllFavorites(ctx context.Context, vehicles []vehicle.Vehicle) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	scheduled := 0
	for _, v := range vehicles {
		if !v.Favourite {
			continue
		}

		prevID := ""
		if entry, ok := s.ledger.Get(v.ID); ok {
			end, err := v.AuctionEndTime()
			if err == nil && end.Equal(entry.EndTime) {
				continue // already scheduled at the right time
			}
			prevID = entry.NotificationID
		}

		if err := s.scheduleLocked(ctx, v); err != nil {
			// Reminders are best-effort; keep going.
			continue
		}
		// A skipped vehicle leaves any prior entry in place; count only a
		// fresh registration.
		if entry, ok := s.ledger.Get(v.ID); ok && entry.NotificationID != prevID {
			scheduled++
		}
	}

	s.logger.Info("favorite notifications reconciled",
		"vehicles", len(vehicles), "scheduled", scheduled)
	return scheduled
}

// Sweep prunes entries whose fire time has passed. For backends without
// guaranteed delivery it first surfaces a best-effort ended notification —
// once; the entry is pruned even when that send fails. Returns the number
// of entries pruned.
func (s *Scheduler) Sweep(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(ctx)
}

func (s *Scheduler) sweepLocked(ctx context.Context) int {
	now := time.Now()
	synthesize := !s.backend.Capabilities().GuaranteedDelivery

	pruned := 0
	for _, entry := range s.ledger.All() {
		if entry.EndTime.After(now) {
			continue
		}

		if synthesize {
			err := s.backend.SendImmediate(ctx, endedTitle, endedBody(entry.Vehicle),
				payload(entry.Vehicle, "auction-ended"))
			if err != nil {
				// Ledger correctness beats delivery of the synthetic
				// notification; prune regardless.
				s.logger.Warn("stale entry recovery send failed",
					"vehicle_id", entry.VehicleID, "error", err)
			}
		}

		s.ledger.Remove(entry.VehicleID)
		pruned++
	}

	if pruned > 0 {
		s.persistLocked(ctx)
		s.logger.Info("swept ended auctions", "pruned", pruned)
	}
	return pruned
}

// SendTest delivers an immediate test notification for a vehicle.
func (s *Scheduler) SendTest(ctx context.Context, v vehicle.Vehicle) error {
	if err := s.backend.SendImmediate(ctx, testTitle, testBody(v), payload(v, "test")); err != nil {
		return fmt.Errorf("send test notification: %w", err)
	}
	return nil
}

// Stats partitions current entries on fire time versus now.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	st := Stats{Total: s.ledger.Len()}
	for _, entry := range s.ledger.All() {
		if entry.EndTime.After(now) {
			st.Upcoming++
		}
	}
	st.Expired = st.Total - st.Upcoming
	return st
}

// ListScheduled returns the current ledger entries.
func (s *Scheduler) ListScheduled() []ledger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.All()
}

// ClearAll cancels every backend registration, empties the ledger, and
// clears the application badge.
func (s *Scheduler) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.CancelAll(ctx); err != nil {
		s.logger.Warn("backend cancel-all failed", "error", err)
	}
	if err := s.backend.ClearBadge(ctx); err != nil {
		s.logger.Warn("badge clear failed", "error", err)
	}
	if err := s.ledger.Clear(ctx); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}

	s.logger.Info("all auction notifications cleared")
	return nil
}

// Cleanup stops the foreground sweep timer if one is running. Safe to call
// repeatedly.
func (s *Scheduler) Cleanup() {
	s.mu.Lock()
	cancel := s.sweepCancel
	done := s.sweepDone
	s.sweepCancel = nil
	s.sweepDone = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// persistLocked mirrors the ledger after a mutation. The in-memory map
// stays authoritative when the write fails; the next successful write
// overwrites.
func (s *Scheduler) persistLocked(ctx context.Context) {
	if err := s.ledger.Save(ctx); err != nil {
		s.logger.Warn("ledger persist failed, memory remains authoritative", "error", err)
	}
}

// startForegroundSweep runs the 5-minute fallback check loop used where no
// background execution exists. Runs until Cleanup.
func (s *Scheduler) startForegroundSweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sweepCancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.sweepCancel = cancel
	s.sweepDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func callerID(vehicleID int) string {
	return fmt.Sprintf("auction-%d", vehicleID)
}
