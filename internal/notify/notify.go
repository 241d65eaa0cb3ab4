// Package notify abstracts the one-shot scheduled-notification primitive
// behind a single Backend interface with three implementations: a sandboxed
// preview backend with no autonomous delivery, a managed-runtime backend
// delivering desktop notifications, and a native push backend delivering
// through FCM.
//
// Exactly one backend is bound per process, chosen by the environment
// selector at startup.
package notify

import (
	"context"
	"errors"
	"time"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Permission is the notification permission state of the bound backend.
type Permission string

const (
	PermissionGranted      Permission = "granted"
	PermissionDenied       Permission = "denied"
	PermissionUndetermined Permission = "undetermined"
)

var (
	// ErrPermissionDenied means no scheduling is possible until the user
	// grants notification permission.
	ErrPermissionDenied = errors.New("notification permission denied")

	// ErrFireTimeNotFuture rejects schedule calls whose fire time is at or
	// before now.
	ErrFireTimeNotFuture = errors.New("fire time is not strictly in the future")

	// ErrBackgroundUnsupported is returned by RegisterBackgroundTask when
	// the backend cannot run periodic checks on its own; the caller falls
	// back to its foreground sweep timer.
	ErrBackgroundUnsupported = errors.New("background checks not supported by this backend")
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Capabilities describes what the bound backend can do. Recorded by the
// environment selector for the diagnostics surface.
type Capabilities struct {
	BackgroundTasks    bool `json:"backgroundTasks"`
	PushDelivery       bool `json:"pushNotifications"`
	GuaranteedDelivery bool `json:"guaranteedDelivery"`
	BadgeCount         bool `json:"badgeCount"`
	SoundCustomization bool `json:"soundCustomization"`
	ChannelManagement  bool `json:"channelManagement"`
}

// Pending is one backend-visible scheduled entry.
type Pending struct {
	ID     string    `json:"id"`
	FireAt time.Time `json:"fireAt"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
}

// Backend is the uniform interface over the OS-level notification
// primitive. Implementations must be safe for concurrent use.
type Backend interface {
	Name() string
	Capabilities() Capabilities

	// RequestPermission is idempotent and registers the notification
	// channel where the platform has one. It fails closed: any underlying
	// error yields PermissionDenied rather than an error.
	RequestPermission(ctx context.Context) Permission

	// PermissionStatus is a read-only probe with no side effects.
	PermissionStatus(ctx context.Context) Permission

	// ScheduleAt registers a one-shot notification under the caller's id,
	// replacing any prior registration with the same id, and returns the
	// backend-assigned notification id needed to cancel it. Fails if
	// fireAt is not strictly in the future or permission is not granted.
	ScheduleAt(ctx context.Context, id string, fireAt time.Time, title, body string, data map[string]string) (string, error)

	// Cancel removes a registration by backend notification id. Unknown
	// ids are a no-op, not an error.
	Cancel(ctx context.Context, notificationID string) error

	// CancelAll clears every registration this backend has made.
	CancelAll(ctx context.Context) error

	// SendImmediate is fire-and-forget delivery, used for test
	// notifications and the stale-sweep fallback.
	SendImmediate(ctx context.Context, title, body string, data map[string]string) error

	// ListPending returns backend-visible scheduled entries, best-effort.
	ListPending(ctx context.Context) ([]Pending, error)

	// SetBadgeCount and ClearBadge are no-ops where unsupported.
	SetBadgeCount(ctx context.Context, count int) error
	ClearBadge(ctx context.Context) error

	// RegisterBackgroundTask arranges for task to run every interval
	// without foreground involvement. Backends that cannot return
	// ErrBackgroundUnsupported; backends with OS-guaranteed delivery
	// return nil without running anything.
	RegisterBackgroundTask(ctx context.Context, interval time.Duration, task func(context.Context)) error

	// Close releases timers and workers held by the backend.
	Close() error
}
