// Package environment binds the scheduler to exactly one notification
// backend at startup. The decision runs once, synchronously, and is
// immutable for the process lifetime; the chosen variant and the reason it
// was chosen are recorded for the diagnostics surface.
package environment

import (
	"context"
	"log/slog"
	"time"

	"github.com/motorbid/auction-alerts/internal/config"
	"github.com/motorbid/auction-alerts/internal/notify"
)

// Selection records which backend was bound and why.
type Selection struct {
	Backend      string              `json:"backend"`
	Reason       string              `json:"reason"`
	Capabilities notify.Capabilities `json:"capabilities"`
	SelectedAt   time.Time           `json:"selectedAt"`
}

// Select inspects the execution environment and binds one backend.
//
// Decision order: native push when messaging credentials are linked and the
// process is not inside the sandboxed preview host; the preview backend
// inside the preview host; the managed runtime otherwise. A credentials
// file that fails to load falls through to the managed runtime rather than
// aborting startup.
func Select(ctx context.Context, cfg *config.Config, logger *slog.Logger) (notify.Backend, Selection) {
	backend, reason := choose(ctx, cfg, logger)

	sel := Selection{
		Backend:      backend.Name(),
		Reason:       reason,
		Capabilities: backend.Capabilities(),
		SelectedAt:   time.Now().UTC(),
	}
	logger.Info("notification backend bound",
		"backend", sel.Backend, "reason", sel.Reason)
	return backend, sel
}

func choose(ctx context.Context, cfg *config.Config, logger *slog.Logger) (notify.Backend, string) {
	if cfg.FCMCredentialsFile != "" && !cfg.PreviewHost {
		native, err := notify.NewNative(ctx, cfg.FCMCredentialsFile,
			cfg.FCMDeviceTokens, cfg.NotificationChannel, logger)
		if err == nil {
			return native, "messaging credentials linked, full native delivery"
		}
		logger.Warn("native push unavailable, degrading to managed runtime", "error", err)
		return notify.NewManaged(logger, cfg.BackgroundChecks),
			"native credentials present but unusable: " + err.Error()
	}

	if cfg.PreviewHost {
		return notify.NewPreview(logger),
			"sandboxed preview host, foreground timer delivery only"
	}

	return notify.NewManaged(logger, cfg.BackgroundChecks),
		"standalone build without native module"
}
