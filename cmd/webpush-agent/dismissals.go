package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/t-hosaka/webpush-agent/pkg/prompt"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Report whether the opt-in prompt should be shown now",
	RunE:  runPrompt,
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss",
	Short: "Record a dismissal of the opt-in prompt",
	RunE:  runDismiss,
}

var resetDismissalsCmd = &cobra.Command{
	Use:   "reset-dismissals",
	Short: "Erase the recorded prompt dismissals",
	RunE:  runResetDismissals,
}

func promptStore() *prompt.Store {
	return prompt.NewStore(newPlatform(loadConfig()))
}

func runPrompt(cmd *cobra.Command, args []string) error {
	store := promptStore()
	rec := store.Load()

	if store.ShouldShow(time.Now()) {
		cmd.Println("show")
	} else {
		cmd.Println("suppress")
	}
	cmd.Printf("Dismissals: %d\n", rec.Count)
	if rec.LastDismissedAt > 0 {
		cmd.Printf("Last dismissed: %s\n", time.UnixMilli(rec.LastDismissedAt).Format(time.RFC3339))
	}
	return nil
}

func runDismiss(cmd *cobra.Command, args []string) error {
	rec := promptStore().Dismiss(time.Now())
	cmd.Printf("Recorded dismissal %d\n", rec.Count)
	return nil
}

func runResetDismissals(cmd *cobra.Command, args []string) error {
	promptStore().Reset()
	cmd.Println("Dismissals reset")
	return nil
}
