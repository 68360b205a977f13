package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/setupwizard/internal/device"
	"github.com/mark3labs/setupwizard/internal/hooks"
	"github.com/mark3labs/setupwizard/internal/logger"
	"github.com/mark3labs/setupwizard/internal/provision"
	"github.com/mark3labs/setupwizard/internal/setup"
	"github.com/mark3labs/setupwizard/internal/state"
	"github.com/mark3labs/setupwizard/internal/tui"
	"github.com/spf13/cobra"
)

var runFlags struct {
	fresh   bool
	noWatch bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the setup wizard",
	Long: `Run the setup wizard against the device profile.

Saved progress for the flow is restored unless --fresh is given. Quitting
with q or ctrl+c saves progress again. Finishing provisions the device and
clears the saved progress.`,
	RunE: runWizard,
}

func init() {
	runCmd.Flags().BoolVar(&runFlags.fresh, "fresh", false, "Ignore saved progress and start from the first page")
	runCmd.Flags().BoolVar(&runFlags.noWatch, "no-watch", false, "Do not follow external edits to the device profile")
}

func runWizard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile, err := loadProfile(cfg)
	if err != nil {
		return err
	}
	if profile.GetInt(device.NamespaceGlobal, device.DeviceProvisioned, 0) == 1 {
		return fmt.Errorf("device is already provisioned\n\nUse 'setupwizard reset' to run the wizard again")
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	data := setup.New(profile)
	if !runFlags.fresh {
		restoreFlow(ctx, store, cfg.FlowID, data)
	}
	unregister := data.RegisterListener(state.JournalListener(ctx, store, cfg.FlowID))
	defer unregister()

	watchPath := cfg.Profile
	if runFlags.noWatch || !cfg.WatchProfile {
		watchPath = ""
	}

	outcome, err := tui.Run(ctx, tui.Options{
		Data:   data,
		Device: profile,
		Finisher: &provision.Provisioner{
			Settings:         profile,
			Packages:         profile,
			Launcher:         profile,
			Self:             wizardComponent,
			CompetingPackage: cfg.CompetingPackage,
		},
		Store:  store,
		FlowID: cfg.FlowID,
	}, watchPath)
	if err != nil && !outcome.Saved {
		return err
	}

	switch {
	case outcome.Finished && outcome.Err != nil:
		return fmt.Errorf("setup finished with errors: %w", outcome.Err)
	case outcome.Finished:
		fmt.Println("Device provisioned. Welcome home.")
		runHooks(ctx, cmd.OutOrStdout(), cfg, func(h *hooks.HooksConfig) []*hooks.HookConfig { return h.OnFinish })
	case outcome.Saved:
		fmt.Printf("Progress saved. Run 'setupwizard run' to continue flow %q.\n", cfg.FlowID)
	}
	return nil
}

// restoreFlow loads saved progress into data. Unreadable state is logged and
// ignored: the flow then starts over.
func restoreFlow(ctx context.Context, store state.Store, flowID string, data *setup.Data) {
	blob, found, err := store.Load(ctx, flowID)
	if err != nil {
		logger.Warn("Loading saved flow %s: %v", flowID, err)
		return
	}
	if !found {
		return
	}
	if err := data.Load(blob); err != nil {
		logger.Warn("Discarding saved flow %s: %v", flowID, err)
		return
	}
	logger.Info("Resumed flow %s", flowID)
}
