package flow

import (
	"context"
	"fmt"
	"testing"

	"github.com/mark3labs/setupwizard/internal/device"
	"github.com/mark3labs/setupwizard/internal/provision"
	"github.com/mark3labs/setupwizard/internal/setup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var wizardComponent = device.Component{Package: "org.cyanogenmod.setupwizard", Name: "SetupWizardActivity"}

const competing = "com.google.android.setupwizard"

func newProfile() *device.Profile {
	return device.DefaultProfile(wizardComponent, competing)
}

type harness struct {
	env    *device.Profile
	data   *setup.Data
	looper *Looper
	ctrl   *Controller
}

func newHarness(t *testing.T, env *device.Profile, data *setup.Data, opts Options) *harness {
	t.Helper()
	looper := NewLooper()
	opts.Looper = looper
	h := &harness{env: env, data: data, looper: looper}
	h.ctrl = New(data, env, opts)
	t.Cleanup(h.ctrl.Close)
	return h
}

// catalogPage returns a fresh page of kind id, as the setup catalog builds it.
func catalogPage(t *testing.T, id setup.PageID) *setup.Page {
	t.Helper()
	d := setup.New(newProfile())
	for i := 0; i < d.PageList().Size(); i++ {
		if p := d.PageList().Get(i); p.ID() == id {
			return p
		}
	}
	t.Fatalf("no catalog page for %s", id)
	return nil
}

func plain(key string, required, completed bool) *setup.Page {
	p := setup.NewPage(setup.PageLocation, key, required, setup.LabelNext, setup.Descriptor{Title: key})
	p.SetCompleted(completed)
	return p
}

func (h *harness) keys() []string { return h.data.PageList().Keys() }

func TestController_InitialState(t *testing.T) {
	t.Parallel()
	env := newProfile()
	h := newHarness(t, env, setup.New(env), Options{})

	assert.Equal(t, []string{"welcome", "sim_missing", "google_account", "cm_account", "location", "complete"}, h.keys())
	assert.Equal(t, 2, h.ctrl.CutOff(), "first required incomplete page is the google account")
	assert.Equal(t, 2, h.ctrl.Pager().Count())
	assert.Equal(t, 0, h.ctrl.Position())
	assert.Equal(t, "welcome", h.ctrl.Page().Key())
	assert.Equal(t, Buttons{NextLabel: setup.LabelNext, NextEnabled: true, PrevVisible: false}, h.ctrl.Buttons())
}

func TestController_NextAndPrevious(t *testing.T) {
	t.Parallel()
	d := setup.NewWithPages(newProfile(), setup.NewPageList(plain("a", false, false), plain("b", false, false), plain("c", false, false)))
	h := newHarness(t, newProfile(), d, Options{})

	h.ctrl.Previous()
	assert.Equal(t, 0, h.ctrl.Position(), "previous on the first page is a no-op")

	h.ctrl.Next()
	assert.Equal(t, 1, h.ctrl.Position())
	assert.True(t, h.ctrl.Buttons().PrevVisible)

	h.ctrl.Next()
	assert.Equal(t, 2, h.ctrl.Position())

	h.ctrl.Next()
	assert.Equal(t, 2, h.ctrl.Position(), "next on the last visible non-terminal page is a no-op")

	h.ctrl.Previous()
	assert.Equal(t, 1, h.ctrl.Position())
	assert.Equal(t, "b", h.ctrl.Page().Key())
}

func TestController_NavigationProperty(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(rt, "n")
		pages := make([]*setup.Page, n)
		for i := range pages {
			pages[i] = plain(fmt.Sprintf("p%d", i),
				rapid.Bool().Draw(rt, fmt.Sprintf("required%d", i)),
				rapid.Bool().Draw(rt, fmt.Sprintf("completed%d", i)))
		}
		env := newProfile()
		looper := NewLooper()
		c := New(setup.NewWithPages(env, setup.NewPageList(pages...)), env, Options{Looper: looper})
		defer c.Close()

		count := c.Pager().Count()
		if count != min(c.CutOff(), n) {
			rt.Fatalf("count %d, want min(%d,%d)", count, c.CutOff(), n)
		}
		if count == 0 {
			c.Next()
			c.Previous()
			if c.Position() != 0 {
				rt.Fatalf("moved on an empty pager")
			}
			return
		}

		target := rapid.IntRange(0, count-1).Draw(rt, "target")
		for c.Position() < target {
			c.Next()
		}

		c.Next()
		want := min(target+1, count-1)
		if c.Position() != want {
			rt.Fatalf("next from %d: position %d, want %d", target, c.Position(), want)
		}

		before := c.Position()
		c.Previous()
		if c.Position() != max(before-1, 0) {
			rt.Fatalf("previous from %d: position %d", before, c.Position())
		}
	})
}

func TestController_SimMissingNextRemovesPage(t *testing.T) {
	t.Parallel()
	env := newProfile()
	h := newHarness(t, env, setup.New(env), Options{})

	h.ctrl.Next()
	require.Equal(t, "sim_missing", h.ctrl.Page().Key())
	assert.Equal(t, setup.LabelSkip, h.ctrl.Buttons().NextLabel)

	h.ctrl.Next()
	assert.Nil(t, h.data.FindPage("sim_missing"))
	// The google account page now gates position 1, so the pager clamps back.
	assert.Equal(t, 1, h.ctrl.CutOff())
	assert.Equal(t, 0, h.ctrl.Position())
	assert.Equal(t, "welcome", h.ctrl.Page().Key())
}

func TestController_SimMissingRemovalKeepsPosition(t *testing.T) {
	t.Parallel()
	d := setup.NewWithPages(newProfile(), setup.NewPageList(
		plain("intro", false, false),
		catalogPage(t, setup.PageSimMissing),
		plain("after", false, false),
	))
	h := newHarness(t, newProfile(), d, Options{})

	h.ctrl.Next()
	require.Equal(t, 1, h.ctrl.Position())

	h.ctrl.Next()
	assert.Equal(t, []string{"intro", "after"}, h.keys())
	assert.Equal(t, 1, h.ctrl.Position())
	assert.Equal(t, "after", h.ctrl.Page().Key())
	assert.Equal(t, setup.LabelNext, h.ctrl.Buttons().NextLabel)
}

func TestController_CutOffScenario(t *testing.T) {
	t.Parallel()
	a := plain("A", true, false)
	d := setup.NewWithPages(newProfile(), setup.NewPageList(a, plain("B", false, false), plain("C", true, true)))
	h := newHarness(t, newProfile(), d, Options{})

	assert.Equal(t, 0, h.ctrl.CutOff())
	assert.Equal(t, 0, h.ctrl.Pager().Count())
	assert.Nil(t, h.ctrl.Page())

	h.ctrl.removePage(a, false)
	assert.Equal(t, 2, h.ctrl.CutOff())
	assert.Equal(t, 2, h.ctrl.Pager().Count())
	assert.Equal(t, "B", h.ctrl.Page().Key())
}

func TestController_RefreshCutOffIsIdempotent(t *testing.T) {
	t.Parallel()
	gate := plain("gate", true, false)
	d := setup.NewWithPages(newProfile(), setup.NewPageList(plain("a", false, false), gate, plain("b", false, false)))
	h := newHarness(t, newProfile(), d, Options{})
	require.Equal(t, 1, h.ctrl.CutOff())

	gate.SetCompleted(true)
	before := h.ctrl.Pager().Refreshes()

	assert.True(t, h.ctrl.RefreshCutOff())
	assert.Equal(t, before+1, h.ctrl.Pager().Refreshes())
	assert.Equal(t, 3, h.ctrl.CutOff())

	assert.False(t, h.ctrl.RefreshCutOff())
	assert.Equal(t, before+1, h.ctrl.Pager().Refreshes(), "unchanged cut-off must not refresh the pager")
}

func TestController_RemoveAbsentPageIsNoop(t *testing.T) {
	t.Parallel()
	env := newProfile()
	h := newHarness(t, env, setup.New(env), Options{})
	before := h.keys()
	refreshes := h.ctrl.Pager().Refreshes()

	assert.NotPanics(t, func() {
		h.ctrl.removePage(plain("ghost", false, false), true)
		h.ctrl.removePage(nil, false)
	})
	assert.Equal(t, before, h.keys())
	assert.Equal(t, refreshes, h.ctrl.Pager().Refreshes())
}

func accountFlow(t *testing.T) *harness {
	t.Helper()
	env := newProfile()
	d := setup.NewWithPages(env, setup.NewPageList(
		catalogPage(t, setup.PageWelcome),
		catalogPage(t, setup.PageLocation),
		catalogPage(t, setup.PageGoogleAccount),
		catalogPage(t, setup.PageComplete),
	))
	h := newHarness(t, env, d, Options{})
	h.ctrl.Next()
	require.Equal(t, 1, h.ctrl.Position())
	require.Equal(t, 2, h.ctrl.CutOff())
	return h
}

func TestController_PageFinishedWithAccountRemovesPage(t *testing.T) {
	t.Parallel()
	h := accountFlow(t)

	require.NoError(t, h.env.AddAccount(device.AccountTypeGoogle))
	h.data.MarkCompleted("google_account")

	// Handling is deferred to the idle tick.
	assert.NotNil(t, h.data.FindPage("google_account"))
	assert.Equal(t, 1, h.looper.Pending())

	h.looper.RunPending()

	assert.Equal(t, []string{"welcome", "location", "complete"}, h.keys())
	assert.Equal(t, 1, h.ctrl.Position())
	assert.Equal(t, "location", h.ctrl.Page().Key())
	assert.Equal(t, 3, h.ctrl.CutOff())
}

func TestController_PageFinishedWithoutAccountAdvances(t *testing.T) {
	t.Parallel()
	h := accountFlow(t)

	h.data.MarkCompleted("google_account")
	h.looper.RunPending()

	assert.Equal(t, []string{"welcome", "location", "google_account", "complete"}, h.keys())
	assert.Equal(t, 2, h.ctrl.Position())
	assert.Equal(t, "google_account", h.ctrl.Page().Key())
	assert.Equal(t, 4, h.ctrl.CutOff())
}

func TestController_ResumeReconcilesUnneededPages(t *testing.T) {
	t.Parallel()
	env := newProfile()
	h := newHarness(t, env, setup.New(env), Options{})

	env.SIM = true
	env.Services = false
	require.NoError(t, env.AddAccount(device.AccountTypeCM))

	h.ctrl.Resume()
	assert.Len(t, h.keys(), 6, "reconciliation waits for the idle tick")
	assert.True(t, env.Wifi, "no network: wifi is switched on")

	h.looper.RunPending()
	assert.Equal(t, []string{"welcome", "location", "complete"}, h.keys())
	assert.Equal(t, 3, h.ctrl.CutOff())
	assert.Equal(t, 3, h.ctrl.Pager().Count())
}

func TestController_ResumeKeepsNeededPages(t *testing.T) {
	t.Parallel()
	env := newProfile()
	env.Network = true
	h := newHarness(t, env, setup.New(env), Options{})

	h.ctrl.Resume()
	h.looper.RunPending()

	assert.Len(t, h.keys(), 6)
	assert.False(t, env.Wifi, "connected devices are left alone")
}

func TestController_ReconcileSimOnNonGSM(t *testing.T) {
	t.Parallel()
	env := newProfile()
	h := newHarness(t, env, setup.New(env), Options{})

	env.GSM = false
	h.ctrl.Resume()
	h.looper.RunPending()

	assert.Nil(t, h.data.FindPage("sim_missing"))
}

type countingFinisher struct {
	calls int
	err   error
}

func (f *countingFinisher) Commit(context.Context) error {
	f.calls++
	return f.err
}

func TestController_FinishIsTerminal(t *testing.T) {
	t.Parallel()
	env := newProfile()
	d := setup.NewWithPages(env, setup.NewPageList(catalogPage(t, setup.PageWelcome), catalogPage(t, setup.PageComplete)))
	finisher := &countingFinisher{}
	var finishedWith []error
	h := newHarness(t, env, d, Options{
		Finisher: finisher,
		OnFinish: func(err error) { finishedWith = append(finishedWith, err) },
	})

	h.ctrl.Next()
	require.Equal(t, "complete", h.ctrl.Page().Key())
	assert.Equal(t, setup.LabelFinish, h.ctrl.Buttons().NextLabel)

	h.ctrl.Next()
	assert.True(t, h.ctrl.Finished())
	assert.Equal(t, 1, finisher.calls)
	assert.Equal(t, []error{nil}, finishedWith)
	assert.Equal(t, 0, d.Listeners(), "finished flow detaches from its data")

	h.ctrl.Next()
	h.ctrl.Previous()
	h.ctrl.Resume()
	h.looper.RunPending()
	assert.Equal(t, 1, finisher.calls)
	assert.Len(t, finishedWith, 1)
	assert.Equal(t, 1, h.ctrl.Position())
}

func TestController_FinishProvisionsDevice(t *testing.T) {
	t.Parallel()
	env := newProfile()
	d := setup.NewWithPages(env, setup.NewPageList(catalogPage(t, setup.PageComplete)))
	p := &provision.Provisioner{
		Settings:         env,
		Packages:         env,
		Launcher:         env,
		Self:             wizardComponent,
		CompetingPackage: competing,
	}
	h := newHarness(t, env, d, Options{Finisher: p})

	h.ctrl.Next()
	h.ctrl.Next()

	assert.Equal(t, 1, env.GetInt(device.NamespaceGlobal, device.DeviceProvisioned, 0))
	assert.Equal(t, 1, env.GetInt(device.NamespaceSecure, device.UserSetupComplete, 0))
	assert.Equal(t, []device.Component{{Package: "com.android.launcher3", Name: "Launcher"}},
		env.QueryIntentActivities(device.HomeIntent()))
	require.Len(t, env.Started, 1)
	assert.NotZero(t, env.Started[0].Flags&device.FlagClearTask)
}

func TestController_FinishErrorStillTerminates(t *testing.T) {
	t.Parallel()
	env := newProfile()
	d := setup.NewWithPages(env, setup.NewPageList(catalogPage(t, setup.PageComplete)))
	var got error
	h := newHarness(t, env, d, Options{
		Finisher: &countingFinisher{err: assert.AnError},
		OnFinish: func(err error) { got = err },
	})

	h.ctrl.Next()
	assert.True(t, h.ctrl.Finished())
	assert.ErrorIs(t, got, assert.AnError)
}

func TestController_CloseDropsDeferredWork(t *testing.T) {
	t.Parallel()
	env := newProfile()
	h := newHarness(t, env, setup.New(env), Options{})

	env.SIM = true
	h.ctrl.Resume()
	h.ctrl.Close()
	h.looper.RunPending()

	assert.NotNil(t, h.data.FindPage("sim_missing"))
	assert.Equal(t, 0, h.data.Listeners())
}

func TestController_FollowsRestoredState(t *testing.T) {
	t.Parallel()
	env := newProfile()
	h := newHarness(t, env, setup.New(env), Options{})

	require.NoError(t, h.data.Load([]byte(`{"version":1,"pages":[{"key":"welcome"},{"key":"cm_account","completed":true},{"key":"complete"}]}`)))

	assert.Equal(t, 3, h.ctrl.CutOff())
	assert.Equal(t, 3, h.ctrl.Pager().Count())
	assert.Equal(t, "welcome", h.ctrl.Page().Key())

	// A finished event carrying a page from before the restore resolves by key.
	require.NoError(t, env.AddAccount(device.AccountTypeCM))
	h.ctrl.onPageFinished(catalogPage(t, setup.PageCMAccount))
	h.looper.RunPending()
	assert.Equal(t, []string{"welcome", "complete"}, h.keys())
}

func TestController_EmptyPagerClearsNextLabel(t *testing.T) {
	t.Parallel()
	d := setup.NewWithPages(newProfile(), setup.NewPageList(
		setup.NewPage(setup.PageLocation, "a", false, setup.LabelSkip, setup.Descriptor{Title: "a"}),
		plain("b", true, false),
	))
	h := newHarness(t, newProfile(), d, Options{})
	require.Equal(t, setup.LabelSkip, h.ctrl.Buttons().NextLabel)

	// The restored order puts the required page first.
	require.NoError(t, d.Load([]byte(`{"version":1,"pages":[{"key":"b"},{"key":"a"}]}`)))

	assert.Equal(t, 0, h.ctrl.Pager().Count())
	assert.Nil(t, h.ctrl.Page())
	assert.Empty(t, h.ctrl.Buttons().NextLabel)
	assert.False(t, h.ctrl.Buttons().NextEnabled)
}
