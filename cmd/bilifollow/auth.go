package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bilifollow/pkg/session"
	"bilifollow/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored bilibili sessions",
	Long: `Manage stored bilibili sessions securely.

Sessions are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your session cookies or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store bilibili session cookies securely",
	Long: `Store bilibili session cookies in the system keychain or an
encrypted file.

You will be prompted for:
  - Profile name (if not provided)
  - SESSDATA (session cookie)
  - bili_jct (CSRF token cookie)
  - DedeUserID (numeric account ID cookie)
  - User Agent (optional, press Enter for default)`,
	Example: `  # Interactive login
  bilifollow auth login

  # Login under a named profile
  bilifollow auth login main`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove a stored session",
	Long: `Remove a stored bilibili session.

If no profile is provided, you will be shown the stored profiles to choose
from.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// authListCmd represents the auth list command
var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored session profiles",
	Run:   runAuthList,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Verify the stored session against the platform",
	Long: `Verify that the stored session is still accepted by the platform
and show the signed-in account.`,
	Run: runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := session.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println(session.LoginInstructions)
	fmt.Println()

	name := "default"
	if len(args) > 0 {
		name = args[0]
	} else {
		fmt.Print("Profile name [default]: ")
		input, _ := reader.ReadString('\n')
		if trimmed := strings.TrimSpace(input); trimmed != "" {
			name = trimmed
		}
	}

	if existing, _ := manager.Retrieve(name); existing != nil {
		if !ui.Confirm(fmt.Sprintf("Profile '%s' already exists. Update it?", name)) {
			return
		}
	}

	fmt.Println("\nEnter your cookie values (they will be hidden as you type):")
	fmt.Println()

	fmt.Print("SESSDATA: ")
	sessdata, err := readSecret()
	if err != nil {
		ui.PrintError("Failed to read SESSDATA", err.Error())
		os.Exit(1)
	}

	fmt.Print("bili_jct: ")
	biliJCT, err := readSecret()
	if err != nil {
		ui.PrintError("Failed to read bili_jct", err.Error())
		os.Exit(1)
	}

	fmt.Print("DedeUserID: ")
	dedeUserID, _ := reader.ReadString('\n')
	dedeUserID = strings.TrimSpace(dedeUserID)

	fmt.Print("User Agent (press Enter for default): ")
	userAgent, _ := reader.ReadString('\n')
	userAgent = strings.TrimSpace(userAgent)

	sess := &session.Session{
		Profile:      name,
		SESSDATA:     sessdata,
		BiliJCT:      biliJCT,
		DedeUserID:   dedeUserID,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}

	if !sess.Valid() {
		ui.PrintError("SESSDATA and bili_jct are both required")
		os.Exit(1)
	}
	if _, err := sess.UserID(); err != nil {
		ui.PrintWarning("DedeUserID looks invalid; sync will not work without it", err.Error())
	}

	if err := manager.Store(sess); err != nil {
		ui.PrintError("Failed to store session", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Session stored: " + name)
	fmt.Println("\nNext steps:")
	fmt.Println("  $ bilifollow auth status   # verify the session works")
	fmt.Println("  $ bilifollow sync          # fetch your following list")
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := session.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		sessions, err := manager.List()
		if err != nil || len(sessions) == 0 {
			ui.PrintError("No stored sessions found")
			return
		}

		if len(sessions) == 1 {
			name = sessions[0].Profile
		} else {
			fmt.Println("Select profile to remove:")
			for i, sess := range sessions {
				fmt.Printf("  %d. %s\n", i+1, sess.Profile)
			}
			fmt.Println("  0. Cancel")

			reader := bufio.NewReader(os.Stdin)
			fmt.Print("Choice: ")
			input, _ := reader.ReadString('\n')

			var choice int
			fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)
			if choice < 1 || choice > len(sessions) {
				return
			}
			name = sessions[choice-1].Profile
		}
	}

	if !ui.Confirm(fmt.Sprintf("Remove session '%s'?", name)) {
		return
	}
	if err := manager.Delete(name); err != nil {
		ui.PrintError("Failed to remove session", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Session removed: " + name)
}

func runAuthList(cmd *cobra.Command, args []string) {
	manager, err := session.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	sessions, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list sessions", err.Error())
		os.Exit(1)
	}
	if len(sessions) == 0 {
		ui.PrintInfo("No stored sessions", "Use 'bilifollow auth login' to add one")
		return
	}

	profiles := make([]string, len(sessions))
	for i, sess := range sessions {
		profiles[i] = sess.Profile
	}
	ui.RenderSessions(os.Stdout, profiles, profile)
}

func runStatus(cmd *cobra.Command, args []string) {
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

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout())
	defer cancel()

	info, err := client.Nav(ctx)
	if err != nil {
		ui.PrintError("Session check failed", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Session is valid")
	ui.PrintInfo("Account", info.Uname)
	ui.PrintInfo("MID", fmt.Sprintf("%d", info.MID))
	ui.PrintInfo("Profile", sess.Profile)
}

// readSecret reads a value from stdin without echoing
func readSecret() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
