package setup

import "github.com/mark3labs/setupwizard/internal/device"

// Next-button labels.
const (
	LabelNext   = "Next"
	LabelSkip   = "Skip"
	LabelFinish = "Start"
)

type pageTemplate struct {
	key       string
	required  bool
	nextLabel string
	title     string
	body      string
	action    string
}

var catalog = map[PageID]pageTemplate{
	PageWelcome: {
		key:       "welcome",
		nextLabel: LabelNext,
		title:     "Welcome",
		body:      "Let's get your phone set up.\n\nThis takes a couple of minutes. You can go back at any time.",
	},
	PageSimMissing: {
		key:       "sim_missing",
		nextLabel: LabelSkip,
		title:     "No SIM card",
		body:      "No SIM card was detected.\n\nInsert a SIM to make calls and use mobile data, or skip this step and add one later.",
	},
	PageGoogleAccount: {
		key:       "google_account",
		required:  true,
		nextLabel: LabelNext,
		title:     "Google account",
		body:      "Sign in with your **Google account** to restore apps and contacts.",
		action:    "sign in",
	},
	PageCMAccount: {
		key:       "cm_account",
		required:  true,
		nextLabel: LabelNext,
		title:     "CyanogenMod account",
		body:      "Create or sign in to a **CyanogenMod account** to locate and protect your device.",
		action:    "sign in",
	},
	PageLocation: {
		key:       "location",
		nextLabel: LabelNext,
		title:     "Location",
		body:      "Allow apps to use your location. You can change this in *Settings* later.",
	},
	PageComplete: {
		key:       "complete",
		nextLabel: LabelFinish,
		title:     "All set",
		body:      "Your device is ready to use.",
	},
}

func newPage(id PageID) *Page {
	t := catalog[id]
	return NewPage(id, t.key, t.required, t.nextLabel, Descriptor{
		Title:  t.title,
		Body:   t.body,
		Action: t.action,
	})
}

// AccountType returns the account type an account page links, or "".
func AccountType(id PageID) string {
	switch id {
	case PageGoogleAccount:
		return device.AccountTypeGoogle
	case PageCMAccount:
		return device.AccountTypeCM
	default:
		return ""
	}
}
