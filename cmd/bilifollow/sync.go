package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bilifollow/pkg/logger"
	"bilifollow/pkg/pacer"
	"bilifollow/pkg/store"
	"bilifollow/pkg/ui"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the following list and save a local snapshot",
	Long: `Fetch the account's complete following list page by page and save
it as a local snapshot.

Page fetches are paced; when the platform throttles, the delay between
pages grows exponentially and the sync aborts after too many consecutive
failures. The snapshot written by sync is what the list and unfollow
commands operate on.`,
	Example: `  # Fetch and save the following list
  bilifollow sync

  # Sync with a specific profile
  bilifollow sync --profile main`,
	Run: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	sess, err := loadSession()
	if err != nil {
		ui.PrintError("No session available", err.Error())
		os.Exit(1)
	}

	client := newClient(cfg, sess)
	st, err := openStore(cfg)
	if err != nil {
		ui.PrintError("Failed to open snapshot store", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.PrintHighlight("Fetching following list...")
	logger.WithField("profile", sess.Profile).Info("Starting sync")

	p := pacer.New(cfg.Pacer.Build())
	records, err := client.AllFollowings(ctx, p)
	if err != nil {
		logger.WithError(err).Error("Sync failed")
		ui.PrintError("Sync failed", err.Error())
		if len(records) > 0 {
			ui.PrintWarning(fmt.Sprintf("Fetched %d accounts before failing; snapshot not updated", len(records)))
		}
		os.Exit(1)
	}

	if cfg.Store.BackupOnSync && st.Exists() {
		if _, err := st.Backup(); err != nil {
			ui.PrintWarning("Failed to back up previous snapshot", err.Error())
		} else if err := st.PruneBackups(cfg.Store.KeepBackups); err != nil {
			ui.PrintWarning("Failed to prune old backups", err.Error())
		}
	}

	snap := store.NewSnapshot(records)
	if err := st.Save(snap); err != nil {
		ui.PrintError("Failed to save snapshot", err.Error())
		os.Exit(1)
	}

	logger.WithField("count", len(records)).Info("Sync completed")
	ui.PrintSuccess(fmt.Sprintf("Synced %d followed accounts", len(records)))
	ui.PrintInfo("Snapshot", st.Path())
}
