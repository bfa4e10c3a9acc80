package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bilifollow/pkg/batch"
	"bilifollow/pkg/store"
	"bilifollow/pkg/ui"
)

var (
	unfollowAll      bool
	unfollowFromFile string
	unfollowYes      bool
)

// unfollowCmd represents the unfollow command
var unfollowCmd = &cobra.Command{
	Use:   "unfollow [mid...]",
	Short: "Unfollow one or more accounts",
	Long: `Unfollow accounts by their numeric account ID (mid), or everything
in the local snapshot with --all.

Mutations run one at a time with an adaptive delay between them, following
the same pacing policy as follow. Accounts successfully unfollowed are
removed from the local snapshot so list stays accurate without another
sync.`,
	Example: `  # Unfollow one account
  bilifollow unfollow 123456

  # Unfollow everything in the snapshot (asks for confirmation)
  bilifollow unfollow --all

  # Careful dry run first
  bilifollow unfollow --all --test-mode`,
	Run: runUnfollow,
}

func init() {
	rootCmd.AddCommand(unfollowCmd)
	unfollowCmd.Flags().BoolVar(&unfollowAll, "all", false, "unfollow every account in the local snapshot")
	unfollowCmd.Flags().StringVar(&unfollowFromFile, "file", "", "read account IDs from a file, one per line")
	unfollowCmd.Flags().BoolVarP(&unfollowYes, "yes", "y", false, "skip the confirmation prompt")
}

func runUnfollow(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	st, err := openStore(cfg)
	if err != nil {
		ui.PrintError("Failed to open snapshot store", err.Error())
		os.Exit(1)
	}

	var targets []batch.Target
	var snap *store.Snapshot

	if unfollowAll {
		if len(args) > 0 || unfollowFromFile != "" {
			ui.PrintError("--all cannot be combined with explicit account IDs")
			os.Exit(1)
		}
		snap, err = st.Load()
		if err != nil {
			ui.PrintError("Failed to load snapshot", err.Error())
			os.Exit(1)
		}
		targets = batch.TargetsFromRecords(snap.Users)
	} else {
		mids, err := collectMIDs(args, unfollowFromFile)
		if err != nil {
			ui.PrintError("Invalid account IDs", err.Error())
			os.Exit(1)
		}
		if len(mids) == 0 {
			ui.PrintError("No account IDs given", "pass mids as arguments, via --file, or use --all")
			os.Exit(1)
		}
		targets = batch.TargetsFromMIDs(mids)

		// Snapshot is optional here; when present it keeps the cache in
		// step with what the batch removes
		if st.Exists() {
			snap, _ = st.Load()
		}
	}

	if len(targets) == 0 {
		ui.PrintInfo("Nothing to do", "the following list is empty")
		return
	}

	if !unfollowYes {
		if !ui.Confirm(fmt.Sprintf("Unfollow %d accounts?", len(targets))) {
			return
		}
	}

	runBatch(cfg, batch.ActionUnfollow, targets, func(result *batch.Result) {
		if snap == nil || len(result.SucceededMIDs) == 0 {
			return
		}
		for _, mid := range result.SucceededMIDs {
			snap.Remove(mid)
		}
		if err := st.Save(snap); err != nil {
			ui.PrintWarning("Failed to update snapshot", err.Error())
		}
	})
}
