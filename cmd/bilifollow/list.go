package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"bilifollow/pkg/ui"
)

var (
	listSortBy string
	listLimit  int
	listFilter string
)

// listFollowingCmd represents the list command
var listFollowingCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the locally cached following list",
	Long: `Show the following list from the local snapshot. Run sync first to
fetch it; list never talks to the platform.`,
	Example: `  # Show all followed accounts
  bilifollow list

  # Twenty most recently followed
  bilifollow list --sort followed --limit 20

  # Filter by name
  bilifollow list --filter music`,
	Run: runListFollowing,
}

func init() {
	rootCmd.AddCommand(listFollowingCmd)
	listFollowingCmd.Flags().StringVar(&listSortBy, "sort", "name", "sort order (name, followed, mid)")
	listFollowingCmd.Flags().IntVar(&listLimit, "limit", 0, "show at most this many entries (0 = all)")
	listFollowingCmd.Flags().StringVar(&listFilter, "filter", "", "only show names containing this text")
}

func runListFollowing(cmd *cobra.Command, args []string) {
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

	snap, err := st.Load()
	if err != nil {
		ui.PrintError("Failed to load snapshot", err.Error())
		os.Exit(1)
	}

	records := snap.Users
	if listFilter != "" {
		needle := strings.ToLower(listFilter)
		filtered := records[:0:0]
		for _, r := range records {
			if strings.Contains(strings.ToLower(r.Uname), needle) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	switch listSortBy {
	case "name":
		sort.Slice(records, func(i, j int) bool {
			return strings.ToLower(records[i].Uname) < strings.ToLower(records[j].Uname)
		})
	case "followed":
		sort.Slice(records, func(i, j int) bool {
			return records[i].MTime > records[j].MTime
		})
	case "mid":
		sort.Slice(records, func(i, j int) bool {
			return records[i].MID < records[j].MID
		})
	default:
		ui.PrintError("Unknown sort order", listSortBy)
		os.Exit(1)
	}

	if listLimit > 0 && listLimit < len(records) {
		records = records[:listLimit]
	}

	ui.RenderFollowings(os.Stdout, records)
	ui.PrintInfo("Snapshot updated", snap.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	if listFilter != "" || (listLimit > 0 && listLimit < snap.Total) {
		ui.PrintInfo("Showing", fmt.Sprintf("%d of %d accounts", len(records), snap.Total))
	}
}
