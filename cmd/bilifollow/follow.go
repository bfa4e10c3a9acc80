package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"bilifollow/pkg/batch"
	"bilifollow/pkg/config"
	"bilifollow/pkg/logger"
	"bilifollow/pkg/pacer"
	"bilifollow/pkg/ui"
)

var followFromFile string

// followCmd represents the follow command
var followCmd = &cobra.Command{
	Use:   "follow [mid...]",
	Short: "Follow one or more accounts",
	Long: `Follow accounts by their numeric account ID (mid).

Mutations run one at a time with an adaptive delay between them. When the
platform throttles, the delay grows exponentially; the batch aborts after
too many consecutive failures and reports what it managed to do.`,
	Example: `  # Follow one account
  bilifollow follow 123456

  # Follow several accounts
  bilifollow follow 123456 654321

  # Follow every ID listed in a file (one per line)
  bilifollow follow --file mids.txt`,
	Run: runFollow,
}

func init() {
	rootCmd.AddCommand(followCmd)
	followCmd.Flags().StringVar(&followFromFile, "file", "", "read account IDs from a file, one per line")
}

func runFollow(cmd *cobra.Command, args []string) {
	mids, err := collectMIDs(args, followFromFile)
	if err != nil {
		ui.PrintError("Invalid account IDs", err.Error())
		os.Exit(1)
	}
	if len(mids) == 0 {
		ui.PrintError("No account IDs given", "pass mids as arguments or via --file")
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	runBatch(cfg, batch.ActionFollow, batch.TargetsFromMIDs(mids), nil)
}

// collectMIDs merges IDs from arguments and an optional file, dropping
// duplicates while keeping order
func collectMIDs(args []string, path string) ([]int64, error) {
	raw := append([]string{}, args...)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open ID file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			raw = append(raw, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read ID file: %w", err)
		}
	}

	seen := make(map[int64]bool, len(raw))
	mids := make([]int64, 0, len(raw))
	for _, s := range raw {
		mid, err := strconv.ParseInt(s, 10, 64)
		if err != nil || mid <= 0 {
			return nil, fmt.Errorf("%q is not a valid account ID", s)
		}
		if seen[mid] {
			continue
		}
		seen[mid] = true
		mids = append(mids, mid)
	}
	return mids, nil
}

// runBatch loads the session, runs the mutation batch, and reports the
// tally. onDone receives the result before reporting, for callers that need
// to update the local snapshot.
func runBatch(cfg *config.Config, action batch.Action, targets []batch.Target, onDone func(*batch.Result)) {
	sess, err := loadSession()
	if err != nil {
		ui.PrintError("No session available", err.Error())
		os.Exit(1)
	}

	client := newClient(cfg, sess)

	opts := []batch.Option{}
	if !ui.IsQuietMode() {
		opts = append(opts, batch.WithProgress())
	}
	if cfg.Batch.TestMode {
		opts = append(opts, batch.WithTestMode(cfg.Batch.MaxTestOperations))
		ui.PrintWarning(fmt.Sprintf("Test mode: at most %d accounts will be touched", cfg.Batch.MaxTestOperations))
	}

	runner := batch.NewRunner(client, pacer.New(cfg.Pacer.Build()), logger.GetLogger(), opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, runErr := runner.Run(ctx, action, targets)

	if onDone != nil {
		onDone(result)
	}

	for _, failure := range result.Failures {
		ui.PrintWarning(fmt.Sprintf("mid %d failed", failure.Target.MID), failure.Err)
	}

	if runErr != nil {
		ui.PrintError("Batch stopped", runErr.Error())
		ui.PrintInfo("Result", result.Summary())
		os.Exit(1)
	}

	if result.Failed > 0 {
		ui.PrintWarning("Completed with failures: " + result.Summary())
		return
	}
	ui.PrintSuccess("Done: " + result.Summary())
}
