package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/setupwizard/internal/config"
	"github.com/mark3labs/setupwizard/internal/device"
	"github.com/spf13/cobra"
)

var initFlags struct {
	project bool
	force   bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create setupwizard configuration and a device profile",
	Long: `Create a setupwizard configuration file with sensible defaults and a fresh
device profile: a GSM phone with no SIM, no network and no accounts.

By default, creates a global config at ~/.config/setupwizard/setupwizard.yml.
Use --project to create a project-local config in the current directory.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	initCmd.Flags().BoolVarP(&initFlags.force, "force", "f", false, "Overwrite existing config and profile")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetPath := config.GlobalPath()
	if initFlags.project {
		targetPath = config.ProjectPath()
	}

	if !initFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := config.Default()
	if globalFlags.dataDir != "" {
		cfg.DataDir = globalFlags.dataDir
	}
	if globalFlags.profile != "" {
		cfg.Profile = globalFlags.profile
	}
	if globalFlags.journal != "" {
		cfg.Journal = globalFlags.journal
	}
	if globalFlags.flow != "" {
		cfg.FlowID = globalFlags.flow
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var err error
	if initFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config written to: %s\n", targetPath)

	if initFlags.force || !fileExists(cfg.Profile) {
		profile := device.DefaultProfile(wizardComponent, cfg.CompetingPackage)
		profile.Path = cfg.Profile
		if err := profile.Save(); err != nil {
			return fmt.Errorf("failed to write device profile: %w", err)
		}
		fmt.Fprintf(out, "Device profile written to: %s\n", cfg.Profile)
	}

	fmt.Fprintln(out, "\nRun 'setupwizard run' to get started.")
	return nil
}

// fileExists checks if a file exists (helper for init command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
