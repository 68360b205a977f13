package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/setupwizard/internal/config"
	"github.com/mark3labs/setupwizard/internal/device"
	"github.com/mark3labs/setupwizard/internal/hooks"
	"github.com/mark3labs/setupwizard/internal/logger"
	"github.com/mark3labs/setupwizard/internal/session"
	"github.com/mark3labs/setupwizard/internal/state"
)

// wizardComponent is this wizard's own HOME activity.
var wizardComponent = device.Component{Package: "org.cyanogenmod.setupwizard", Name: "SetupWizardActivity"}

var globalFlags struct {
	dataDir string
	profile string
	journal string
	flow    string
}

// loadConfig loads configuration, applies command-line overrides and
// configures logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

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
		return nil, err
	}

	if err := logger.Default.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, nil
}

// openStore opens the configured flow state backend. The returned close
// function is never nil.
func openStore(ctx context.Context, cfg *config.Config) (state.Store, func(), error) {
	switch cfg.Journal {
	case config.JournalNATS:
		store, embedded, err := session.Open(ctx, cfg.DataDir)
		if err != nil {
			return nil, func() {}, fmt.Errorf("failed to open event store: %w", err)
		}
		return store, func() {
			if err := embedded.Close(); err != nil {
				logger.Warn("closing event store: %v", err)
			}
		}, nil
	default:
		return state.NewFileStore(cfg.DataDir), func() {}, nil
	}
}

// loadProfile reads the device profile, creating a fresh one on first use.
func loadProfile(cfg *config.Config) (*device.Profile, error) {
	profile, err := device.LoadProfile(cfg.Profile)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	logger.Info("Creating device profile at %s", cfg.Profile)
	profile = device.DefaultProfile(wizardComponent, cfg.CompetingPackage)
	profile.Path = cfg.Profile
	if err := profile.Save(); err != nil {
		return nil, err
	}
	return profile, nil
}

// wizardComponents lists every component reset re-enables.
func wizardComponents(profile *device.Profile, cfg *config.Config) []device.Component {
	components := []device.Component{wizardComponent}
	for _, ic := range profile.Components {
		if ic.Package == cfg.CompetingPackage {
			components = append(components, ic.Component)
		}
	}
	return components
}

// runHooks runs the hooks pick selects from .setupwizard.hooks.yml in the
// working directory and prints their output.
func runHooks(ctx context.Context, out io.Writer, cfg *config.Config, pick func(*hooks.HooksConfig) []*hooks.HookConfig) {
	hookCfg, err := hooks.LoadConfig(".")
	if err != nil {
		logger.Warn("%v", err)
		return
	}
	if hookCfg == nil {
		return
	}
	output, err := hooks.ExecuteAll(ctx, pick(&hookCfg.Hooks), ".", hooks.Variables{Flow: cfg.FlowID, Profile: cfg.Profile})
	if err != nil {
		logger.Warn("hooks interrupted: %v", err)
	}
	if output != "" {
		fmt.Fprint(out, output)
	}
}
