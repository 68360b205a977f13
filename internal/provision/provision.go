// Package provision performs the one-way exit from the wizard: it marks the
// device provisioned, disables competing first-run wizards and the wizard
// itself, and starts the home screen.
package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/setupwizard/internal/device"
	"github.com/mark3labs/setupwizard/internal/logger"
)

// ErrCommitted is returned by Commit after the first successful call.
var ErrCommitted = errors.New("device already provisioned by this wizard")

// Provisioner commits the finish transition against injected device
// capabilities.
type Provisioner struct {
	Settings         device.Settings
	Packages         device.PackageManager
	Launcher         device.Launcher
	Self             device.Component
	CompetingPackage string

	committed bool
}

// Committed reports whether Commit has already run.
func (p *Provisioner) Committed() bool {
	return p.committed
}

// Commit writes both provisioning flags, disables the competing package's
// HOME handlers and the wizard's own component, then starts home with a
// cleared task. It runs at most once; later calls return ErrCommitted.
func (p *Provisioner) Commit(ctx context.Context) error {
	if p.committed {
		return ErrCommitted
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p.committed = true

	if err := p.Settings.PutInt(device.NamespaceGlobal, device.DeviceProvisioned, 1); err != nil {
		return fmt.Errorf("setting %s: %w", device.DeviceProvisioned, err)
	}
	if err := p.Settings.PutInt(device.NamespaceSecure, device.UserSetupComplete, 1); err != nil {
		return fmt.Errorf("setting %s: %w", device.UserSetupComplete, err)
	}

	intent := device.HomeIntent()
	if err := p.disableSetupWizards(intent); err != nil {
		return err
	}

	intent.Flags |= device.FlagClearTask | device.FlagNewTask
	if err := p.Launcher.StartActivity(intent); err != nil {
		return fmt.Errorf("starting home: %w", err)
	}

	logger.Info("provision: device provisioned, handed off to home")
	return nil
}

func (p *Provisioner) disableSetupWizards(intent device.Intent) error {
	var errs []error
	for _, c := range p.Packages.QueryIntentActivities(intent) {
		if c.Package != p.CompetingPackage {
			continue
		}
		logger.Debug("provision: disabling %s", c)
		if err := p.Packages.SetComponentEnabled(c, false); err != nil {
			errs = append(errs, fmt.Errorf("disabling %s: %w", c, err))
		}
	}
	if err := p.Packages.SetComponentEnabled(p.Self, false); err != nil {
		errs = append(errs, fmt.Errorf("disabling %s: %w", p.Self, err))
	}
	return errors.Join(errs...)
}

// Reset undoes a commit on the device: clears both flags and re-enables
// every component of the wizard and the competing package.
func Reset(settings device.Settings, packages device.PackageManager, components []device.Component) error {
	if err := settings.PutInt(device.NamespaceGlobal, device.DeviceProvisioned, 0); err != nil {
		return fmt.Errorf("clearing %s: %w", device.DeviceProvisioned, err)
	}
	if err := settings.PutInt(device.NamespaceSecure, device.UserSetupComplete, 0); err != nil {
		return fmt.Errorf("clearing %s: %w", device.UserSetupComplete, err)
	}
	for _, c := range components {
		if err := packages.SetComponentEnabled(c, true); err != nil {
			return fmt.Errorf("enabling %s: %w", c, err)
		}
	}
	return nil
}
