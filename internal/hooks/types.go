package hooks

// Config is the top-level configuration for hooks loaded from .setupwizard.hooks.yml.
type Config struct {
	Version int         `yaml:"version"`
	Hooks   HooksConfig `yaml:"hooks"`
}

// HooksConfig contains all hook configurations.
type HooksConfig struct {
	// OnFinish runs after the device has been provisioned.
	OnFinish []*HookConfig `yaml:"on_finish"`
	// OnReset runs after the device has been unprovisioned.
	OnReset []*HookConfig `yaml:"on_reset"`
}

// HookConfig defines a single hook's configuration.
type HookConfig struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"` // seconds, default 30
}

// DefaultTimeout is the default timeout for hook execution in seconds.
const DefaultTimeout = 30
