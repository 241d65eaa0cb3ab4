package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/motorbid/auction-alerts/internal/storage"
	"github.com/motorbid/auction-alerts/internal/vehicle"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func entryFor(id int, end time.Time) Entry {
	return Entry{
		NotificationID: "backend-" + string(rune('a'+id%26)),
		VehicleID:      id,
		EndTime:        end,
		Vehicle: vehicle.Vehicle{
			ID:              id,
			Make:            "BMW",
			Model:           "M3",
			Year:            2021,
			StartingBid:     45000,
			AuctionDateTime: end.Format("2006/01/02 15:04:05"),
			Favourite:       true,
		},
	}
}

func TestPutReplacesExistingEntry(t *testing.T) {
	l := New("ledger", storage.NewMemory(), testLogger())
	end := time.Now().Add(time.Hour)

	l.Put(entryFor(7, end))

	replacement := entryFor(7, end.Add(time.Hour))
	replacement.NotificationID = "backend-new"
	l.Put(replacement)

	require.Equal(t, 1, l.Len())
	got, ok := l.Get(7)
	require.True(t, ok)
	require.Equal(t, "backend-new", got.NotificationID)
}

func TestRemove(t *testing.T) {
	l := New("ledger", storage.NewMemory(), testLogger())
	l.Put(entryFor(7, time.Now().Add(time.Hour)))

	l.Remove(7)
	require.Equal(t, 0, l.Len())

	// Removing again is a no-op.
	l.Remove(7)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	end := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

	l := New("ledger", store, testLogger())
	l.Put(entryFor(7, end))
	l.Put(entryFor(12, end.Add(2*time.Hour)))
	require.NoError(t, l.Save(ctx))

	fresh := New("ledger", store, testLogger())
	require.NoError(t, fresh.Load(ctx))
	require.Equal(t, 2, fresh.Len())

	for _, want := range l.All() {
		got, ok := fresh.Get(want.VehicleID)
		require.True(t, ok)
		require.Equal(t, want.NotificationID, got.NotificationID)
		require.True(t, got.EndTime.Equal(want.EndTime))
		require.Equal(t, want.Vehicle, got.Vehicle)
	}
}

func TestLoadMissingBlobStartsEmpty(t *testing.T) {
	l := New("ledger", storage.NewMemory(), testLogger())
	require.NoError(t, l.Load(context.Background()))
	require.Equal(t, 0, l.Len())
}

func TestLoadCorruptBlobStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, "ledger", "{not json"))

	l := New("ledger", store, testLogger())
	require.NoError(t, l.Load(ctx))
	require.Equal(t, 0, l.Len())
}

func TestStorageKeysAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	end := time.Now().Add(time.Hour)

	managed := New("auction_notifications_scheduled", store, testLogger())
	managed.Put(entryFor(7, end))
	require.NoError(t, managed.Save(ctx))

	preview := New("preview_notifications_scheduled", store, testLogger())
	require.NoError(t, preview.Load(ctx))
	require.Equal(t, 0, preview.Len())
}

func TestClearRemovesBlob(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	l := New("ledger", store, testLogger())
	l.Put(entryFor(7, time.Now().Add(time.Hour)))
	require.NoError(t, l.Save(ctx))

	require.NoError(t, l.Clear(ctx))
	require.Equal(t, 0, l.Len())

	_, ok, err := store.Get(ctx, "ledger")
	require.NoError(t, err)
	require.False(t, ok)
}
