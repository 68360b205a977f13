// Package device declares the host platform capabilities the wizard consumes
// and provides a YAML-backed simulated device implementing them.
package device

// Account types checked by the wizard.
const (
	AccountTypeGoogle = "com.google"
	AccountTypeCM     = "com.cyanogenmod.id"
)

// Namespace selects a settings table.
type Namespace string

const (
	NamespaceGlobal Namespace = "global"
	NamespaceSecure Namespace = "secure"
)

// Settings names written by the finish transition.
const (
	DeviceProvisioned = "device_provisioned"
	UserSetupComplete = "user_setup_complete"
)

// Intent actions, categories and flags understood by the simulated package
// manager and launcher.
const (
	ActionMain    = "android.intent.action.MAIN"
	CategoryHome  = "android.intent.category.HOME"
	FlagClearTask = 0x00008000
	FlagNewTask   = 0x10000000
)

// Environment answers the predicates that decide which pages are relevant.
// Implementations are synchronous and assumed cheap.
type Environment interface {
	NetworkConnected() bool
	EnableWifi() error
	AccountExists(accountType string) bool
	ServicesAvailable() bool
	IsGSMPhone() bool
	IsSimMissing() bool
}

// Settings writes system settings.
type Settings interface {
	PutInt(ns Namespace, name string, value int) error
	GetInt(ns Namespace, name string, def int) int
}

// Intent is a request to start an activity.
type Intent struct {
	Action     string
	Categories []string
	Flags      int
}

// HomeIntent returns the MAIN/HOME intent used to find launchers.
func HomeIntent() Intent {
	return Intent{Action: ActionMain, Categories: []string{CategoryHome}}
}

// HasCategory reports whether the intent carries category.
func (i Intent) HasCategory(category string) bool {
	for _, c := range i.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Component names an activity inside a package.
type Component struct {
	Package string `yaml:"package"`
	Name    string `yaml:"name"`
}

// String returns package/name.
func (c Component) String() string {
	return c.Package + "/" + c.Name
}

// PackageManager resolves intents and toggles components.
type PackageManager interface {
	QueryIntentActivities(intent Intent) []Component
	SetComponentEnabled(c Component, enabled bool) error
}

// Launcher starts activities.
type Launcher interface {
	StartActivity(intent Intent) error
}
