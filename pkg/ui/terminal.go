package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ASCII logo for the application
const ASCIILogo = `
    ╔═══════════════════════════════════════════════════════════╗
    ║  ██████╗ ██╗██╗     ██╗███████╗ ██████╗ ██╗     ██╗         ║
    ║  ██╔══██╗██║██║     ██║██╔════╝██╔═══██╗██║     ██║         ║
    ║  ██████╔╝██║██║     ██║█████╗  ██║   ██║██║     ██║         ║
    ║  ██╔══██╗██║██║     ██║██╔══╝  ██║   ██║██║     ██║         ║
    ║  ██████╔╝██║███████╗██║██║     ╚██████╔╝███████╗███████╗    ║
    ║  ╚═════╝ ╚═╝╚══════╝╚═╝╚═╝      ╚═════╝ ╚══════╝╚══════╝    ║
    ║           FOLLOWING LIST MANAGER FOR BILIBILI               ║
    ╚═══════════════════════════════════════════════════════════╝
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

var (
	quietMode     bool
	colorsEnabled = true
)

// SetQuietMode suppresses decorative output (logo, info lines)
func SetQuietMode(quiet bool) {
	quietMode = quiet
}

// SetColorsEnabled toggles ANSI colors in terminal output
func SetColorsEnabled(enabled bool) {
	colorsEnabled = enabled
}

// IsQuietMode reports whether decorative output is suppressed
func IsQuietMode() bool {
	return quietMode
}

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colorsEnabled {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	if quietMode {
		return
	}
	fmt.Print(Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Println(Red(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Println(Green(msg))
}

// PrintInfo prints a labelled info line
func PrintInfo(label string, value string) {
	if quietMode {
		return
	}
	fmt.Printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Println(Yellow(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Println(Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Println(Magenta(msg))
}

// Confirm asks the user a yes/no question and reports their answer. Only an
// explicit "y" or "yes" counts as consent.
func Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", Yellow(prompt))

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
