package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/motorbid/auction-alerts/internal/ledger"
	"github.com/motorbid/auction-alerts/internal/notify"
	"github.com/motorbid/auction-alerts/internal/storage"
	"github.com/motorbid/auction-alerts/internal/vehicle"
)

// fakeBackend records every call so tests can assert on exact backend
// interactions.
type fakeBackend struct {
	mu sync.Mutex

	guaranteed  bool
	failCallers map[string]error // caller id -> error from ScheduleAt
	failSends   error            // returned by SendImmediate when set

	nextID        int
	live          map[string]string // backend id -> caller id
	scheduleCalls []string          // caller ids in order
	cancelCalls   []string          // backend ids in order
	sendCalls     []string          // titles in order
	cancelAlls    int
}

func newFakeBackend(guaranteed bool) *fakeBackend {
	return &fakeBackend{
		guaranteed:  guaranteed,
		failCallers: make(map[string]error),
		live:        make(map[string]string),
	}
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Capabilities() notify.Capabilities {
	return notify.Capabilities{GuaranteedDelivery: f.guaranteed}
}

func (f *fakeBackend) RequestPermission(context.Context) notify.Permission {
	return notify.PermissionGranted
}

func (f *fakeBackend) PermissionStatus(context.Context) notify.Permission {
	return notify.PermissionGranted
}

func (f *fakeBackend) ScheduleAt(_ context.Context, id string, fireAt time.Time, _, _ string, _ map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scheduleCalls = append(f.scheduleCalls, id)
	if err, ok := f.failCallers[id]; ok {
		return "", err
	}
	if !fireAt.After(time.Now()) {
		return "", notify.ErrFireTimeNotFuture
	}

	f.nextID++
	backendID := fmt.Sprintf("backend-%d", f.nextID)
	f.live[backendID] = id
	return backendID, nil
}

func (f *fakeBackend) Cancel(_ context.Context, notificationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls = append(f.cancelCalls, notificationID)
	delete(f.live, notificationID)
	return nil
}

func (f *fakeBackend) CancelAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelAlls++
	f.live = make(map[string]string)
	return nil
}

func (f *fakeBackend) SendImmediate(_ context.Context, title, _ string, _ map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls = append(f.sendCalls, title)
	return f.failSends
}

func (f *fakeBackend) ListPending(context.Context) ([]notify.Pending, error) {
	return nil, nil
}

func (f *fakeBackend) SetBadgeCount(context.Context, int) error { return nil }
func (f *fakeBackend) ClearBadge(context.Context) error         { return nil }

func (f *fakeBackend) RegisterBackgroundTask(context.Context, time.Duration, func(context.Context)) error {
	return notify.ErrBackgroundUnsupported
}

func (f *fakeBackend) Close() error { return nil }

func (f *fakeBackend) liveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newScheduler(t *testing.T, backend notify.Backend) (*Scheduler, *ledger.Ledger, storage.Store) {
	t.Helper()
	store := storage.NewMemory()
	led := ledger.New("ledger", store, testLogger())
	s := New(backend, led, time.Minute, testLogger())
	t.Cleanup(s.Cleanup)
	return s, led, store
}

func futureVehicle(id int) vehicle.Vehicle {
	end := time.Now().Add(24 * time.Hour)
	return vehicle.Vehicle{
		ID:              id,
		Make:            "BMW",
		Model:           "M3",
		Year:            2021,
		StartingBid:     45000,
		AuctionDateTime: end.Format("2006/01/02 15:04:05"),
		Favourite:       true,
	}
}

func staleEntry(id int, v vehicle.Vehicle) ledger.Entry {
	return ledger.Entry{
		NotificationID: fmt.Sprintf("stale-%d", id),
		VehicleID:      id,
		EndTime:        time.Now().Add(-time.Hour),
		Vehicle:        v,
	}
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestIdempotentReschedule(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false)
	s, led, _ := newScheduler(t, fb)
	v := futureVehicle(7)

	require.NoError(t, s.UpdateFavoriteStatus(ctx, v, true))
	require.NoError(t, s.UpdateFavoriteStatus(ctx, v, true))

	require.Equal(t, 1, led.Len())
	require.Equal(t, 1, fb.liveCount(), "first registration must be cancelled")
	require.Len(t, fb.cancelCalls, 1)
	require.Equal(t, "backend-1", fb.cancelCalls[0])
}

func TestFavoriteOffRemoves(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false)
	s, led, _ := newScheduler(t, fb)
	v := futureVehicle(7)

	require.NoError(t, s.UpdateFavoriteStatus(ctx, v, true))
	require.NoError(t, s.UpdateFavoriteStatus(ctx, v, false))

	require.Equal(t, 0, led.Len())
	require.Equal(t, 0, fb.liveCount())
	require.Len(t, fb.cancelCalls, 1)
}

func TestInvalidTimeIsSkippedNotScheduled(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		when string
	}{
		{"unparseable", "next tuesday probably"},
		{"already past", "2001/01/01 09:00:00"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBackend(false)
			s, led, _ := newScheduler(t, fb)

			v := futureVehicle(7)
			v.AuctionDateTime = tt.when

			require.NoError(t, s.UpdateFavoriteStatus(ctx, v, true))
			require.Equal(t, 0, led.Len())
			require.Empty(t, fb.scheduleCalls)
		})
	}
}

func TestNonFavoriteIsSkipped(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false)
	s, led, _ := newScheduler(t, fb)

	v := futureVehicle(7)
	v.Favourite = false

	require.NoError(t, s.Schedule(ctx, v))
	require.Equal(t, 0, led.Len())
	require.Empty(t, fb.scheduleCalls)
}

func TestSweepPrunesStaleWithFallbackDelivery(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false) // no guaranteed delivery -> synthesize
	s, led, _ := newScheduler(t, fb)

	led.Put(staleEntry(7, futureVehicle(7)))

	pruned := s.Sweep(ctx)
	require.Equal(t, 1, pruned)
	require.Equal(t, 0, led.Len())
	require.Len(t, fb.sendCalls, 1, "exactly one ended notification")

	// Second sweep finds nothing; the synthetic send happened exactly once.
	require.Equal(t, 0, s.Sweep(ctx))
	require.Len(t, fb.sendCalls, 1)
}

func TestSweepPrunesSilentlyWithGuaranteedDelivery(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(true) // OS already delivered
	s, led, _ := newScheduler(t, fb)

	led.Put(staleEntry(7, futureVehicle(7)))

	require.Equal(t, 1, s.Sweep(ctx))
	require.Equal(t, 0, led.Len())
	require.Empty(t, fb.sendCalls)
}

func TestSweepPrunesWhenRecoverySendFails(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false)
	fb.failSends = errors.New("delivery channel down")
	s, led, _ := newScheduler(t, fb)

	led.Put(staleEntry(7, futureVehicle(7)))

	require.Equal(t, 1, s.Sweep(ctx))
	require.Equal(t, 0, led.Len(), "entry pruned despite failed send")
	require.Len(t, fb.sendCalls, 1)

	// The failed send is not retried on a later sweep.
	require.Equal(t, 0, s.Sweep(ctx))
	require.Len(t, fb.sendCalls, 1)
}

func TestStatsPartition(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false)
	s, led, _ := newScheduler(t, fb)

	require.NoError(t, s.Schedule(ctx, futureVehicle(1)))
	require.NoError(t, s.Schedule(ctx, futureVehicle(2)))
	led.Put(staleEntry(3, futureVehicle(3)))

	st := s.Stats()
	require.Equal(t, Stats{Total: 3, Upcoming: 2, Expired: 1}, st)

	// Stats never mutates: the expired entry is still there.
	require.Equal(t, 3, led.Len())
}

func TestScheduleAllFavoritesPartialFailure(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false)
	fb.failCallers["auction-2"] = errors.New("backend exploded")
	s, led, _ := newScheduler(t, fb)

	vehicles := []vehicle.Vehicle{futureVehicle(1), futureVehicle(2), futureVehicle(3)}
	nonFav := futureVehicle(4)
	nonFav.Favourite = false
	vehicles = append(vehicles, nonFav)

	scheduled := s.ScheduleAllFavorites(ctx, vehicles)
	require.Equal(t, 2, scheduled)
	require.Equal(t, 2, led.Len())

	_, ok := led.Get(1)
	require.True(t, ok)
	_, ok = led.Get(3)
	require.True(t, ok)
	_, ok = led.Get(2)
	require.False(t, ok)
}

func TestScheduleAllFavoritesKeepsUnchangedEntries(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false)
	s, _, _ := newScheduler(t, fb)
	v := futureVehicle(7)

	require.NoError(t, s.Schedule(ctx, v))
	callsAfterFirst := len(fb.scheduleCalls)

	s.ScheduleAllFavorites(ctx, []vehicle.Vehicle{v})
	require.Equal(t, callsAfterFirst, len(fb.scheduleCalls),
		"unchanged end time must not reschedule")
}

func TestScheduleAllFavoritesReplacesChangedEndTime(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false)
	s, led, _ := newScheduler(t, fb)
	v := futureVehicle(7)

	require.NoError(t, s.Schedule(ctx, v))

	v.AuctionDateTime = time.Now().Add(48 * time.Hour).Format("2006/01/02 15:04:05")
	s.ScheduleAllFavorites(ctx, []vehicle.Vehicle{v})

	require.Equal(t, 1, led.Len())
	require.Equal(t, 1, fb.liveCount())
	require.Len(t, fb.cancelCalls, 1, "old registration replaced")
}

func TestScheduleAllFavoritesDoesNotCountRetainedEntries(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false)
	s, led, _ := newScheduler(t, fb)
	v := futureVehicle(7)

	require.NoError(t, s.Schedule(ctx, v))

	// The reload carries an unparseable end time: the old entry stays in
	// place, and the batch must not report it as newly scheduled.
	v.AuctionDateTime = "next tuesday probably"
	scheduled := s.ScheduleAllFavorites(ctx, []vehicle.Vehicle{v})

	require.Equal(t, 0, scheduled)
	require.Equal(t, 1, led.Len())
}

func TestPersistenceAcrossRestart(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false)
	store := storage.NewMemory()

	led := ledger.New("ledger", store, testLogger())
	s := New(fb, led, time.Minute, testLogger())
	require.NoError(t, s.Schedule(ctx, futureVehicle(7)))
	s.Cleanup()

	// Fresh scheduler over the same store recovers the schedule.
	led2 := ledger.New("ledger", store, testLogger())
	s2 := New(fb, led2, time.Minute, testLogger())
	defer s2.Cleanup()
	require.NoError(t, s2.Start(ctx))

	entries := s2.ListScheduled()
	require.Len(t, entries, 1)
	require.Equal(t, 7, entries[0].VehicleID)
}

func TestStartReregistersRecoveredEntries(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	led := ledger.New("ledger", store, testLogger())
	s := New(newFakeBackend(true), led, time.Minute, testLogger())
	require.NoError(t, s.Schedule(ctx, futureVehicle(7)))
	s.Cleanup()

	// A fresh process has no live backend registrations; the recovered
	// entry must be registered again or it would never fire.
	fb2 := newFakeBackend(true)
	led2 := ledger.New("ledger", store, testLogger())
	s2 := New(fb2, led2, time.Minute, testLogger())
	defer s2.Cleanup()
	require.NoError(t, s2.Start(ctx))

	require.Len(t, s2.ListScheduled(), 1)
	require.Equal(t, 1, fb2.liveCount())
	require.Contains(t, fb2.scheduleCalls, "auction-7")
}

func TestStartSweepsEntriesElapsedWhileDown(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false)
	store := storage.NewMemory()

	led := ledger.New("ledger", store, testLogger())
	led.Put(staleEntry(7, futureVehicle(7)))
	require.NoError(t, led.Save(ctx))

	led2 := ledger.New("ledger", store, testLogger())
	s := New(fb, led2, time.Minute, testLogger())
	defer s.Cleanup()
	require.NoError(t, s.Start(ctx))

	require.Empty(t, s.ListScheduled())
	require.Len(t, fb.sendCalls, 1)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false)
	s, led, store := newScheduler(t, fb)

	require.NoError(t, s.Schedule(ctx, futureVehicle(1)))
	require.NoError(t, s.Schedule(ctx, futureVehicle(2)))

	require.NoError(t, s.ClearAll(ctx))
	require.Equal(t, 0, led.Len())
	require.Equal(t, 1, fb.cancelAlls)
	require.Equal(t, 0, fb.liveCount())

	_, ok, err := store.Get(ctx, "ledger")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestExampleScenario(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false)
	s, led, _ := newScheduler(t, fb)

	v := vehicle.Vehicle{
		ID: 7, Make: "BMW", Model: "M3", Year: 2021,
		AuctionDateTime: "2030/01/01 09:00:00",
	}

	require.NoError(t, s.UpdateFavoriteStatus(ctx, v, true))
	entry, ok := led.Get(7)
	require.True(t, ok)
	require.Equal(t, time.Date(2030, 1, 1, 9, 0, 0, 0, time.Local), entry.EndTime)
	require.Equal(t, Stats{Total: 1, Upcoming: 1, Expired: 0}, s.Stats())

	require.NoError(t, s.UpdateFavoriteStatus(ctx, v, false))
	require.Equal(t, 0, led.Len())
	require.Equal(t, Stats{}, s.Stats())
}

func TestSendTest(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend(false)
	s, _, _ := newScheduler(t, fb)

	require.NoError(t, s.SendTest(ctx, futureVehicle(7)))
	require.Len(t, fb.sendCalls, 1)
	require.Equal(t, testTitle, fb.sendCalls[0])
}

func TestFormatBid(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{45000, "45,000"},
		{999, "999"},
		{1234567, "1,234,567"},
		{1500.5, "1,500.5"},
		{0, "0"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, formatBid(tt.in), "amount %v", tt.in)
	}
}
