package main

import (
	"fmt"

	"github.com/mark3labs/setupwizard/internal/hooks"
	"github.com/mark3labs/setupwizard/internal/provision"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Unprovision the device and forget saved progress",
	Long: `Clear device_provisioned and user_setup_complete, re-enable the wizard and
the competing setup package, and delete saved progress and journal for the flow.`,
	RunE: runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	profile, err := loadProfile(cfg)
	if err != nil {
		return err
	}

	if err := provision.Reset(profile, profile, wizardComponents(profile, cfg)); err != nil {
		return fmt.Errorf("failed to reset device: %w", err)
	}
	profile.Started = nil
	if err := profile.Save(); err != nil {
		return err
	}

	store, closeStore, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	if err := store.Clear(cmd.Context(), cfg.FlowID); err != nil {
		return fmt.Errorf("failed to clear flow state: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Device reset. Flow %q starts over on the next run.\n", cfg.FlowID)
	runHooks(cmd.Context(), cmd.OutOrStdout(), cfg, func(h *hooks.HooksConfig) []*hooks.HookConfig { return h.OnReset })
	return nil
}
