package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	firebase "firebase.google.com/go/v4"
	fcm "firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

const sendTimeout = 10 * time.Second

// Native is the push backend used when the compiled messaging credentials
// are linked into the deployment. Delivery goes through FCM to the
// registered device tokens, with the auction alert channel set on the
// Android config so the OS handles sound and importance.
type Native struct {
	client  *fcm.Client
	tokens  []string
	channel string
	logger  *slog.Logger

	registry *timerRegistry
}

// NewNative builds the FCM client from a service account credentials file.
func NewNative(ctx context.Context, credentialsFile string, tokens []string, channel string, logger *slog.Logger) (*Native, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}

	n := &Native{
		client:  client,
		tokens:  tokens,
		channel: channel,
		logger:  logger,
	}
	n.registry = newTimerRegistry(true, n.deliver)
	return n, nil
}

func (n *Native) Name() string { return "native-push" }

func (n *Native) Capabilities() Capabilities {
	return Capabilities{
		BackgroundTasks:    true,
		PushDelivery:       true,
		GuaranteedDelivery: true,
		BadgeCount:         true,
		SoundCustomization: true,
		ChannelManagement:  true,
	}
}

// RequestPermission verifies the messaging client and device tokens are
// usable. Fails closed to denied; never errors out.
func (n *Native) RequestPermission(_ context.Context) Permission {
	if n.client == nil {
		return PermissionDenied
	}
	if len(n.tokens) == 0 {
		n.logger.Warn("no device tokens registered, push delivery denied")
		return PermissionDenied
	}
	return PermissionGranted
}

func (n *Native) PermissionStatus(_ context.Context) Permission {
	if n.client == nil || len(n.tokens) == 0 {
		return PermissionDenied
	}
	return PermissionGranted
}

func (n *Native) ScheduleAt(ctx context.Context, id string, fireAt time.Time, title, body string, data map[string]string) (string, error) {
	if !fireAt.After(time.Now()) {
		return "", ErrFireTimeNotFuture
	}
	if n.PermissionStatus(ctx) != PermissionGranted {
		return "", ErrPermissionDenied
	}
	backendID := n.registry.schedule(id, fireAt, title, body, data)
	n.logger.Debug("push notification scheduled", "id", id, "fire_at", fireAt)
	return backendID, nil
}

func (n *Native) Cancel(_ context.Context, notificationID string) error {
	n.registry.cancel(notificationID)
	return nil
}

func (n *Native) CancelAll(_ context.Context) error {
	n.registry.cancelAll()
	return nil
}

func (n *Native) SendImmediate(ctx context.Context, title, body string, data map[string]string) error {
	return n.send(ctx, title, body, data)
}

func (n *Native) ListPending(_ context.Context) ([]Pending, error) {
	return n.registry.pending(), nil
}

// SetBadgeCount pushes a data-only message carrying the APNs badge.
func (n *Native) SetBadgeCount(ctx context.Context, count int) error {
	msg := &fcm.MulticastMessage{
		Tokens: n.tokens,
		APNS: &fcm.APNSConfig{
			Payload: &fcm.APNSPayload{
				Aps: &fcm.Aps{Badge: &count},
			},
		},
	}
	if _, err := n.client.SendEachForMulticast(ctx, msg); err != nil {
		return fmt.Errorf("set badge: %w", err)
	}
	return nil
}

func (n *Native) ClearBadge(ctx context.Context) error {
	return n.SetBadgeCount(ctx, 0)
}

// RegisterBackgroundTask is a no-op: delivery is OS-level, there is nothing
// to check periodically.
func (n *Native) RegisterBackgroundTask(_ context.Context, _ time.Duration, _ func(context.Context)) error {
	return nil
}

func (n *Native) Close() error {
	n.registry.cancelAll()
	return nil
}

func (n *Native) deliver(title, body string, data map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := n.send(ctx, title, body, data); err != nil {
		n.logger.Warn("push delivery failed", "title", title, "error", err)
	}
}

func (n *Native) send(ctx context.Context, title, body string, data map[string]string) error {
	msg := &fcm.MulticastMessage{
		Tokens:       n.tokens,
		Notification: &fcm.Notification{Title: title, Body: body},
		Data:         data,
		Android: &fcm.AndroidConfig{
			Notification: &fcm.AndroidNotification{
				ChannelID: n.channel,
				Sound:     "default",
			},
		},
	}

	resp, err := n.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return fmt.Errorf("send multicast: %w", err)
	}
	if resp.FailureCount > 0 {
		n.logger.Warn("push delivered partially",
			"success", resp.SuccessCount, "failure", resp.FailureCount)
	} else {
		n.logger.Info("push delivered", "tokens", len(n.tokens), "title", title)
	}
	return nil
}
