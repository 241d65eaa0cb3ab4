// Package ledger tracks which vehicles have a live scheduled notification.
// The in-memory map is authoritative; every mutation is mirrored to the
// durable key-value store so schedules survive a restart.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/motorbid/auction-alerts/internal/storage"
	"github.com/motorbid/auction-alerts/internal/vehicle"
)

// Entry is one scheduled notification: the backend id needed to cancel it,
// the target fire time, and a snapshot of the vehicle at scheduling time so
// the notification body stays stable even if the source record changes.
type Entry struct {
	NotificationID string          `json:"notificationId"`
	VehicleID      int             `json:"vehicleId"`
	EndTime        time.Time       `json:"auctionEndTime"`
	Vehicle        vehicle.Vehicle `json:"vehicle"`
}

// Ledger maps vehicle id to its scheduled notification. At most one entry
// per vehicle; Put replaces. Not safe for concurrent use — the scheduler
// serializes access.
type Ledger struct {
	key     string
	store   storage.Store
	logger  *slog.Logger
	entries map[int]Entry
}

// New creates an empty ledger persisting under the given storage key.
func New(key string, store storage.Store, logger *slog.Logger) *Ledger {
	return &Ledger{
		key:     key,
		store:   store,
		logger:  logger,
		entries: make(map[int]Entry),
	}
}

// Get returns the entry for a vehicle, if any.
func (l *Ledger) Get(vehicleID int) (Entry, bool) {
	e, ok := l.entries[vehicleID]
	return e, ok
}

// Put stores an entry, replacing any prior entry for the same vehicle.
func (l *Ledger) Put(e Entry) {
	l.entries[e.VehicleID] = e
}

// Remove drops the entry for a vehicle. Unknown ids are a no-op.
func (l *Ledger) Remove(vehicleID int) {
	delete(l.entries, vehicleID)
}

// Len returns the number of live entries.
func (l *Ledger) Len() int { return len(l.entries) }

// All returns every entry ordered by vehicle id.
func (l *Ledger) All() []Entry {
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	return out
}

// Clear drops all entries and removes the persisted blob.
func (l *Ledger) Clear(ctx context.Context) error {
	l.entries = make(map[int]Entry)
	if err := l.store.Remove(ctx, l.key); err != nil {
		return fmt.Errorf("remove ledger blob: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Persistence
//
// Format: a JSON array of [vehicleId, entry] pairs under a single key.
// --------------------------------------------------------------------------

type pair struct {
	VehicleID int
	Entry     Entry
}

func (p pair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.VehicleID, p.Entry})
}

func (p *pair) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &p.VehicleID); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &p.Entry)
}

// Save mirrors the in-memory map to the store. Failures are returned to the
// caller, which logs and keeps going — memory stays authoritative and the
// next successful save overwrites.
func (l *Ledger) Save(ctx context.Context) error {
	pairs := make([]pair, 0, len(l.entries))
	for _, e := range l.All() {
		pairs = append(pairs, pair{VehicleID: e.VehicleID, Entry: e})
	}

	blob, err := json.Marshal(pairs)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := l.store.Set(ctx, l.key, string(blob)); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// Load replaces the in-memory map with the persisted blob. A missing or
// corrupt blob yields an empty ledger; initialization must not fail over
// bad persisted state.
func (l *Ledger) Load(ctx context.Context) error {
	l.entries = make(map[int]Entry)

	blob, ok, err := l.store.Get(ctx, l.key)
	if err != nil {
		return fmt.Errorf("read ledger blob: %w", err)
	}
	if !ok || blob == "" {
		return nil
	}

	var pairs []pair
	if err := json.Unmarshal([]byte(blob), &pairs); err != nil {
		l.logger.Warn("discarding corrupt ledger blob", "key", l.key, "error", err)
		return nil
	}

	for _, p := range pairs {
		l.entries[p.VehicleID] = p.Entry
	}
	return nil
}
