package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/setupwizard/internal/logger"
	"github.com/mark3labs/setupwizard/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀▀ █▀▀ ▀█▀ █ █ █▀█"
	logoText2 = "▄▄█ ██▄  █  █▄█ █▀▀"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "setupwizard",
	Short: "First-boot setup wizard for a simulated device",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

setupwizard walks a freshly booted device through its first-run pages:
SIM check, account sign-in, location and completion. Pages the device no
longer needs are dropped as it changes, required pages gate the flow until
they are done, and finishing marks the device provisioned and hands off to
the home screen.

The device is a YAML profile; edit it while the wizard runs to insert a SIM
or add an account and watch the flow adapt. Progress is saved on quit and
resumed on the next run.`

	rootCmd.PersistentFlags().StringVar(&globalFlags.dataDir, "data-dir", "", "Data directory for flow state (default from config)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.profile, "profile", "", "Device profile path (default from config)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.journal, "journal", "", "Flow state backend: file or nats (default from config)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.flow, "flow", "", "Flow id (default from config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(mcpCmd)
}
