package device

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mark3labs/setupwizard/internal/logger"
	"gopkg.in/yaml.v3"
)

// InstalledComponent is an activity known to the simulated package manager.
type InstalledComponent struct {
	Component `yaml:",inline"`
	// Filters are "action/category" pairs the activity handles.
	Filters []string `yaml:"filters"`
	Enabled bool     `yaml:"enabled"`
}

func (ic InstalledComponent) handles(intent Intent) bool {
	for _, f := range ic.Filters {
		action, category, _ := strings.Cut(f, "/")
		if action != intent.Action {
			continue
		}
		if category == "" || intent.HasCategory(category) {
			return true
		}
	}
	return false
}

// Profile is a simulated device persisted as YAML. It implements
// Environment, Settings, PackageManager and Launcher. Every mutation is
// written back to Path when Path is set.
type Profile struct {
	Path string `yaml:"-"`

	Network  bool     `yaml:"network_connected"`
	Wifi     bool     `yaml:"wifi_enabled"`
	GSM      bool     `yaml:"gsm"`
	SIM      bool     `yaml:"sim_present"`
	Services bool     `yaml:"services_available"`
	Accounts []string `yaml:"accounts"`

	Settings   map[Namespace]map[string]int `yaml:"settings"`
	Components []InstalledComponent          `yaml:"components"`

	// Started records intents the launcher was asked to start.
	Started []Intent `yaml:"started,omitempty"`
}

// DefaultProfile returns a fresh, unprovisioned GSM phone with no SIM, no
// network and no accounts, carrying the wizard itself plus the vendor wizard
// and a launcher as HOME handlers.
func DefaultProfile(wizard Component, competingPackage string) *Profile {
	home := ActionMain + "/" + CategoryHome
	return &Profile{
		GSM:      true,
		Services: true,
		Settings: map[Namespace]map[string]int{
			NamespaceGlobal: {DeviceProvisioned: 0},
			NamespaceSecure: {UserSetupComplete: 0},
		},
		Components: []InstalledComponent{
			{Component: wizard, Filters: []string{home}, Enabled: true},
			{Component: Component{Package: competingPackage, Name: "SetupWizardActivity"}, Filters: []string{home}, Enabled: true},
			{Component: Component{Package: competingPackage, Name: "PartnerSetupActivity"}, Filters: []string{home}, Enabled: true},
			{Component: Component{Package: "com.android.launcher3", Name: "Launcher"}, Filters: []string{home}, Enabled: true},
		},
	}
}

// LoadProfile reads a profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading device profile: %w", err)
	}

	p := &Profile{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing device profile: %w", err)
	}
	p.Path = path
	if p.Settings == nil {
		p.Settings = map[Namespace]map[string]int{}
	}
	return p, nil
}

// Reload re-reads the profile from disk, keeping the receiver's identity so
// collaborators holding it see the new values.
func (p *Profile) Reload() error {
	if p.Path == "" {
		return nil
	}
	fresh, err := LoadProfile(p.Path)
	if err != nil {
		return err
	}
	*p = *fresh
	return nil
}

// Save writes the profile to Path atomically.
func (p *Profile) Save() error {
	if p.Path == "" {
		return nil
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling device profile: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(p.Path), 0755); err != nil {
		return fmt.Errorf("creating profile directory: %w", err)
	}

	tmp := p.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing device profile: %w", err)
	}
	if err := os.Rename(tmp, p.Path); err != nil {
		return fmt.Errorf("replacing device profile: %w", err)
	}
	return nil
}

// mutate applies one change on top of the latest profile on disk and saves
// it, so edits written by other processes since the last read survive. A
// profile without a file, or whose file is gone, is changed in memory.
func (p *Profile) mutate(change func(*Profile) (bool, error)) error {
	if p.Path != "" {
		if err := p.Reload(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	changed, err := change(p)
	if err != nil || !changed {
		return err
	}
	return p.Save()
}

// Environment

func (p *Profile) NetworkConnected() bool { return p.Network }
func (p *Profile) ServicesAvailable() bool { return p.Services }
func (p *Profile) IsGSMPhone() bool       { return p.GSM }
func (p *Profile) IsSimMissing() bool     { return !p.SIM }

// AccountExists reports whether an account of accountType is registered.
func (p *Profile) AccountExists(accountType string) bool {
	return slices.Contains(p.Accounts, accountType)
}

// EnableWifi turns Wi-Fi on. Already-enabled Wi-Fi is left alone so repeated
// resumes do not rewrite the profile.
func (p *Profile) EnableWifi() error {
	if p.Wifi {
		return nil
	}
	return p.mutate(func(p *Profile) (bool, error) {
		if p.Wifi {
			return false, nil
		}
		p.Wifi = true
		logger.Debug("device: enabling wifi")
		return true, nil
	})
}

// AddAccount registers an account of accountType.
func (p *Profile) AddAccount(accountType string) error {
	return p.mutate(func(p *Profile) (bool, error) {
		if p.AccountExists(accountType) {
			return false, nil
		}
		p.Accounts = append(p.Accounts, accountType)
		logger.Info("device: added %s account", accountType)
		return true, nil
	})
}

// Settings

// PutInt stores value under ns/name.
func (p *Profile) PutInt(ns Namespace, name string, value int) error {
	return p.mutate(func(p *Profile) (bool, error) {
		if p.Settings == nil {
			p.Settings = map[Namespace]map[string]int{}
		}
		if p.Settings[ns] == nil {
			p.Settings[ns] = map[string]int{}
		}
		p.Settings[ns][name] = value
		return true, nil
	})
}

// GetInt returns ns/name or def when unset.
func (p *Profile) GetInt(ns Namespace, name string, def int) int {
	if v, ok := p.Settings[ns][name]; ok {
		return v
	}
	return def
}

// PackageManager

// QueryIntentActivities returns enabled components handling intent.
func (p *Profile) QueryIntentActivities(intent Intent) []Component {
	var out []Component
	for _, ic := range p.Components {
		if ic.Enabled && ic.handles(intent) {
			out = append(out, ic.Component)
		}
	}
	return out
}

// SetComponentEnabled toggles a component. Unknown components are an error.
func (p *Profile) SetComponentEnabled(c Component, enabled bool) error {
	return p.mutate(func(p *Profile) (bool, error) {
		for i := range p.Components {
			if p.Components[i].Component == c {
				p.Components[i].Enabled = enabled
				return true, nil
			}
		}
		return false, fmt.Errorf("unknown component %s", c)
	})
}

// ComponentEnabled reports the enabled state of c.
func (p *Profile) ComponentEnabled(c Component) (enabled, found bool) {
	for _, ic := range p.Components {
		if ic.Component == c {
			return ic.Enabled, true
		}
	}
	return false, false
}

// Launcher

// StartActivity records the intent. A HOME intent must resolve to at least
// one enabled component.
func (p *Profile) StartActivity(intent Intent) error {
	return p.mutate(func(p *Profile) (bool, error) {
		if intent.HasCategory(CategoryHome) && len(p.QueryIntentActivities(intent)) == 0 {
			return false, fmt.Errorf("no activity handles %s", intent.Action)
		}
		p.Started = append(p.Started, intent)
		return true, nil
	})
}
