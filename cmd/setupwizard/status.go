package main

import (
	"fmt"

	"github.com/mark3labs/setupwizard/internal/device"
	"github.com/mark3labs/setupwizard/internal/setup"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show provisioning state and saved progress",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	profile, err := loadProfile(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Profile: %s\n\n", profile.Path)
	fmt.Fprintf(out, "  %-22s %d\n", device.DeviceProvisioned, profile.GetInt(device.NamespaceGlobal, device.DeviceProvisioned, 0))
	fmt.Fprintf(out, "  %-22s %d\n", device.UserSetupComplete, profile.GetInt(device.NamespaceSecure, device.UserSetupComplete, 0))
	fmt.Fprintf(out, "  %-22s %v\n", "network", profile.NetworkConnected())
	fmt.Fprintf(out, "  %-22s %v\n", "sim", !profile.IsSimMissing())
	fmt.Fprintf(out, "  %-22s %v\n", "accounts", profile.Accounts)

	fmt.Fprintln(out, "\nComponents:")
	for _, ic := range profile.Components {
		state := "enabled"
		if !ic.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(out, "  %-60s %s\n", ic.Component, state)
	}

	store, closeStore, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	blob, found, err := store.Load(cmd.Context(), cfg.FlowID)
	if err != nil {
		return fmt.Errorf("failed to load flow state: %w", err)
	}
	fmt.Fprintf(out, "\nFlow %q: ", cfg.FlowID)
	if !found {
		fmt.Fprintln(out, "no saved progress")
		return nil
	}

	data := setup.New(profile)
	if err := data.Load(blob); err != nil {
		fmt.Fprintf(out, "unreadable saved progress (%v)\n", err)
		return nil
	}
	list := data.PageList()
	fmt.Fprintf(out, "%d pages, cut-off at %d\n", list.Size(), list.CutOff())
	for i := 0; i < list.Size(); i++ {
		p := list.Get(i)
		mark := " "
		if p.Completed() {
			mark = "x"
		}
		req := ""
		if p.Required() {
			req = " (required)"
		}
		fmt.Fprintf(out, "  [%s] %s%s\n", mark, p.Key(), req)
	}
	return nil
}
