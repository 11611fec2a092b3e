package main

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/t-hosaka/webpush-agent/pkg/subscription"
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Create or re-register this device's push subscription",
	RunE:  runSubscribe,
}

var unsubscribeCmd = &cobra.Command{
	Use:   "unsubscribe",
	Short: "Destroy this device's push subscription",
	RunE:  runUnsubscribe,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show capability, permission and subscription state",
	RunE:  runStatus,
}

var syncSchedule string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-register the current subscription with the registry",
	Long:  "Runs the idempotent subscribe path so a subscription the registry lost track of is registered again. With --schedule, keeps running on a cron schedule.",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncSchedule, "schedule", "", "Cron expression for periodic re-sync (runs once when empty)")
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	manager := newManager(cfg, newPlatform(cfg))

	sub, err := manager.Subscribe(cmd.Context())
	if err != nil {
		return fmt.Errorf("couldn't enable notifications: %w", err)
	}
	if sub == nil {
		cmd.Println("Notifications are unavailable here (unsupported environment or permission not granted)")
		return nil
	}

	cmd.Printf("Subscribed: %s\n", sub.Endpoint)
	return nil
}

func runUnsubscribe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	manager := newManager(cfg, newPlatform(cfg))

	if err := manager.Unsubscribe(cmd.Context()); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	cmd.Println("Unsubscribed")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	p := newPlatform(cfg)
	manager := newManager(cfg, p)

	snapshot := subscription.Detect(p)
	cmd.Printf("Service worker:   %v\n", snapshot.ServiceWorker)
	cmd.Printf("Push manager:     %v\n", snapshot.PushManager)
	cmd.Printf("Notifications:    %v\n", snapshot.Notifications)
	cmd.Printf("Browsing context: %v\n", snapshot.BrowsingContext)
	cmd.Printf("Permission:       %s\n", subscription.CurrentPermission(p))

	subscribed, err := manager.IsSubscribed(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Subscribed:       %v\n", subscribed)
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	manager := newManager(cfg, newPlatform(cfg))

	syncOnce := func() error {
		sub, err := manager.Subscribe(cmd.Context())
		if err != nil {
			return err
		}
		if sub == nil {
			log.Printf("Sync skipped: notifications unavailable")
			return nil
		}
		log.Printf("Synced subscription %s", sub.Endpoint)
		return nil
	}

	if syncSchedule == "" {
		return syncOnce()
	}

	c := cron.New()
	if _, err := c.AddFunc(syncSchedule, func() {
		if err := syncOnce(); err != nil {
			log.Printf("Sync failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", syncSchedule, err)
	}

	log.Printf("Running periodic re-sync with schedule %q", syncSchedule)
	c.Run()
	return nil
}
