// Command notifyctl is the Auction Alerts operations CLI.
//
// Usage:
//
//	notifyctl stats
//	notifyctl info
//	notifyctl scheduled
//	notifyctl schedule-all --file vehicles.json
//	notifyctl favorite --id 7 --make BMW --model M3 --end "2030-01-01 09:00:00"
//	notifyctl unfavorite --id 7
//	notifyctl test --id 7 --make BMW --model M3
//	notifyctl sweep
//	notifyctl clear
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/motorbid/auction-alerts/internal/config"
	"github.com/motorbid/auction-alerts/internal/db"
	"github.com/motorbid/auction-alerts/internal/environment"
	"github.com/motorbid/auction-alerts/internal/ledger"
	"github.com/motorbid/auction-alerts/internal/scheduler"
	"github.com/motorbid/auction-alerts/internal/service"
	"github.com/motorbid/auction-alerts/internal/storage"
	"github.com/motorbid/auction-alerts/internal/vehicle"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "notifyctl",
		Short: "Auction Alerts operations CLI",
	}

	root.AddCommand(statsCmd())
	root.AddCommand(infoCmd())
	root.AddCommand(scheduledCmd())
	root.AddCommand(scheduleAllCmd())
	root.AddCommand(favoriteCmd())
	root.AddCommand(unfavoriteCmd())
	root.AddCommand(testCmd())
	root.AddCommand(sweepCmd())
	root.AddCommand(clearCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// Read-only commands
// --------------------------------------------------------------------------

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show scheduled-notification counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(func(ctx context.Context, svc *service.Service) error {
				return printJSON(svc.GetNotificationStats())
			})
		},
	}
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the bound notification backend and its capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(func(ctx context.Context, svc *service.Service) error {
				return printJSON(svc.GetServiceInfo())
			})
		},
	}
}

func scheduledCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduled",
		Short: "List every scheduled notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(func(ctx context.Context, svc *service.Service) error {
				return printJSON(svc.GetScheduledNotifications())
			})
		},
	}
}

// --------------------------------------------------------------------------
// Scheduling commands
// --------------------------------------------------------------------------

func scheduleAllCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "schedule-all",
		Short: "Reconcile notifications against a vehicle list from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read vehicle list: %w", err)
			}
			var vehicles []vehicle.Vehicle
			if err := json.Unmarshal(data, &vehicles); err != nil {
				return fmt.Errorf("parse vehicle list: %w", err)
			}
			return runService(func(ctx context.Context, svc *service.Service) error {
				scheduled := svc.ScheduleAllFavoriteNotifications(ctx, vehicles)
				logger.Info("Reconcile complete", "vehicles", len(vehicles), "scheduled", scheduled)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to a JSON array of vehicles")
	return cmd
}

func favoriteCmd() *cobra.Command {
	var v vehicle.Vehicle
	cmd := &cobra.Command{
		Use:   "favorite",
		Short: "Mark a vehicle favorite and schedule its auction-end notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			if v.ID == 0 {
				return fmt.Errorf("--id is required")
			}
			return runService(func(ctx context.Context, svc *service.Service) error {
				svc.UpdateFavoriteStatus(ctx, v, true)
				return printJSON(svc.GetNotificationStats())
			})
		},
	}
	addVehicleFlags(cmd, &v)
	return cmd
}

func unfavoriteCmd() *cobra.Command {
	var id int
	cmd := &cobra.Command{
		Use:   "unfavorite",
		Short: "Unmark a vehicle favorite and cancel its notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == 0 {
				return fmt.Errorf("--id is required")
			}
			return runService(func(ctx context.Context, svc *service.Service) error {
				svc.UpdateFavoriteStatus(ctx, vehicle.Vehicle{ID: id}, false)
				return printJSON(svc.GetNotificationStats())
			})
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "Vehicle ID")
	return cmd
}

// --------------------------------------------------------------------------
// Delivery commands
// --------------------------------------------------------------------------

func testCmd() *cobra.Command {
	var v vehicle.Vehicle
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Send an immediate test notification through the bound backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(func(ctx context.Context, svc *service.Service) error {
				svc.SendTestNotification(ctx, v)
				logger.Info("Test notification dispatched", "vehicle_id", v.ID)
				return nil
			})
		},
	}
	addVehicleFlags(cmd, &v)
	return cmd
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Prune entries whose auction end time has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(func(ctx context.Context, svc *service.Service) error {
				pruned := svc.SweepExpiredNotifications(ctx)
				logger.Info("Sweep complete", "pruned", pruned)
				return printJSON(svc.GetNotificationStats())
			})
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Cancel every scheduled notification and empty the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(func(ctx context.Context, svc *service.Service) error {
				svc.ClearAllNotifications(ctx)
				logger.Info("All notifications cleared")
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

func addVehicleFlags(cmd *cobra.Command, v *vehicle.Vehicle) {
	v.Favourite = true
	cmd.Flags().IntVar(&v.ID, "id", 0, "Vehicle ID")
	cmd.Flags().StringVar(&v.Make, "make", "", "Vehicle make")
	cmd.Flags().StringVar(&v.Model, "model", "", "Vehicle model")
	cmd.Flags().IntVar(&v.Year, "year", 0, "Model year")
	cmd.Flags().Float64Var(&v.StartingBid, "bid", 0, "Starting bid")
	cmd.Flags().StringVar(&v.AuctionDateTime, "end", "", "Auction end time (YYYY-MM-DD HH:MM:SS)")
}

// runService handles config loading, storage, backend binding, and context
// cancellation around one service operation.
func runService(fn func(ctx context.Context, svc *service.Service) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, pool, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()
	if pool != nil {
		defer pool.Close()
	}

	backend, sel := environment.Select(ctx, cfg, logger)

	ledgerKey := config.LedgerStorageKey
	if sel.Backend == "preview" {
		ledgerKey = config.PreviewLedgerStorageKey
	}
	led := ledger.New(ledgerKey, store, logger)

	sched := scheduler.New(backend, led, cfg.SweepInterval, logger)
	svc := service.New(backend, sched, sel, logger)

	if err := svc.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize service: %w", err)
	}
	defer svc.Cleanup()

	return fn(ctx, svc)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, *db.Pool, error) {
	switch {
	case cfg.DatabaseURL != "":
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return storage.NewPostgres(pool), pool, nil
	case cfg.SQLitePath != "":
		s, err := storage.NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return s, nil, nil
	default:
		return storage.NewMemory(), nil, nil
	}
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
