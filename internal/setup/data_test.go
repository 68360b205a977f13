package setup

import (
	"slices"
	"testing"

	"github.com/mark3labs/setupwizard/internal/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func testEnv() *device.Profile {
	return device.DefaultProfile(device.Component{Package: "org.cyanogenmod.setupwizard", Name: "SetupWizardActivity"}, "com.google.android.setupwizard")
}

func TestNew_PageSetFollowsEnvironment(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*device.Profile)
		want   []string
	}{
		{
			name:   "gsm phone with services",
			mutate: func(*device.Profile) {},
			want:   []string{"welcome", "sim_missing", "google_account", "cm_account", "location", "complete"},
		},
		{
			name:   "wifi-only tablet",
			mutate: func(p *device.Profile) { p.GSM = false },
			want:   []string{"welcome", "google_account", "cm_account", "location", "complete"},
		},
		{
			name:   "no services",
			mutate: func(p *device.Profile) { p.Services = false },
			want:   []string{"welcome", "sim_missing", "cm_account", "location", "complete"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testEnv()
			tt.mutate(env)
			assert.Equal(t, tt.want, New(env).PageList().Keys())
		})
	}
}

func TestData_RemovePageEmitsTreeChanged(t *testing.T) {
	t.Parallel()
	d := New(testEnv())
	var events []Event
	d.RegisterListener(func(ev Event) { events = append(events, ev) })

	d.RemovePage(d.FindPage("location"))
	require.Len(t, events, 1)
	assert.Equal(t, TreeChanged, events[0].Kind)
	assert.Nil(t, d.FindPage("location"))

	d.RemovePage(page("location", false, false))
	d.RemovePage(nil)
	assert.Len(t, events, 1, "absent pages are ignored silently")
}

func TestData_MarkCompleted(t *testing.T) {
	t.Parallel()
	d := New(testEnv())
	var events []Event
	d.RegisterListener(func(ev Event) { events = append(events, ev) })

	d.MarkCompleted("cm_account")
	d.MarkCompleted("nope")

	require.Len(t, events, 1)
	assert.Equal(t, PageFinished, events[0].Kind)
	assert.Equal(t, "cm_account", events[0].Page.Key())
	assert.True(t, d.FindPage("cm_account").Completed())
}

func TestData_ListenersInOrderAndUnregister(t *testing.T) {
	t.Parallel()
	d := New(testEnv())
	var got []string

	unregisterA := d.RegisterListener(func(Event) { got = append(got, "a") })
	d.RegisterListener(func(Event) { got = append(got, "b") })
	assert.Equal(t, 2, d.Listeners())

	d.NotifyTreeChanged()
	unregisterA()
	unregisterA()
	d.NotifyTreeChanged()

	assert.Equal(t, []string{"a", "b", "b"}, got)
	assert.Equal(t, 1, d.Listeners())
}

func TestData_UnregisterDuringDispatch(t *testing.T) {
	t.Parallel()
	d := New(testEnv())
	calls := 0
	var unregister func()
	unregister = d.RegisterListener(func(Event) {
		calls++
		unregister()
	})
	d.RegisterListener(func(Event) { calls++ })

	d.NotifyTreeChanged()
	d.NotifyTreeChanged()
	assert.Equal(t, 3, calls)
}

func TestData_LoadRejectsGarbage(t *testing.T) {
	t.Parallel()
	d := New(testEnv())
	assert.Error(t, d.Load([]byte("{")))
	assert.Error(t, d.Load([]byte(`{"version":99,"pages":[]}`)))
	assert.Equal(t, 6, d.PageList().Size(), "failed loads leave the list alone")
}

func TestData_LoadDropsUnknownKeys(t *testing.T) {
	t.Parallel()
	d := New(testEnv())
	require.NoError(t, d.Load([]byte(`{"version":1,"pages":[{"key":"welcome"},{"key":"retired"},{"key":"complete","completed":true}]}`)))
	assert.Equal(t, []string{"welcome", "complete"}, d.PageList().Keys())
	assert.True(t, d.FindPage("complete").Completed())
}

func TestData_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	ids := []PageID{PageWelcome, PageSimMissing, PageGoogleAccount, PageCMAccount, PageLocation, PageComplete}

	rapid.Check(t, func(t *rapid.T) {
		order := rapid.Permutation(ids).Draw(t, "order")
		keep := rapid.IntRange(0, len(order)).Draw(t, "keep")

		l := NewPageList()
		for _, id := range order[:keep] {
			p := newPage(id)
			p.SetCompleted(rapid.Bool().Draw(t, "completed-"+id.String()))
			l.Append(p)
		}
		src := NewWithPages(testEnv(), l)

		blob, err := src.Save()
		if err != nil {
			t.Fatalf("Save: %v", err)
		}

		dst := New(testEnv())
		if err := dst.Load(blob); err != nil {
			t.Fatalf("Load: %v", err)
		}

		got, want := dst.PageList(), src.PageList()
		if got.Size() != want.Size() {
			t.Fatalf("size %d, want %d", got.Size(), want.Size())
		}
		for i := 0; i < want.Size(); i++ {
			g, w := got.Get(i), want.Get(i)
			if g.Key() != w.Key() || g.Completed() != w.Completed() || g.Required() != w.Required() {
				t.Fatalf("page %d: got %s/%v want %s/%v", i, g.Key(), g.Completed(), w.Key(), w.Completed())
			}
		}
	})
}

func TestData_SaveLoadRoundTripCustomPages(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z_]{1,12}`), 0, 8, func(k string) string { return k }).Draw(t, "keys")

		l := NewPageList()
		for _, k := range keys {
			required := rapid.Bool().Draw(t, "required-"+k)
			l.Append(NewPage(PageLocation, k, required, LabelNext, Descriptor{Title: k}))
		}
		src := NewWithPages(testEnv(), l)
		for _, k := range keys {
			if rapid.Bool().Draw(t, "completed-"+k) {
				src.FindPage(k).SetCompleted(true)
			}
		}

		blob, err := src.Save()
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		want := snapshot(src.PageList())

		// Pages removed since the save come back from the record.
		for _, k := range keys {
			if rapid.Bool().Draw(t, "remove-"+k) {
				src.RemovePage(src.FindPage(k))
			}
		}
		if err := src.Load(blob); err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got := snapshot(src.PageList()); !slices.Equal(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})
}

type pageState struct {
	key       string
	required  bool
	completed bool
	title     string
}

func snapshot(l *PageList) []pageState {
	out := make([]pageState, 0, l.Size())
	for i := 0; i < l.Size(); i++ {
		p := l.Get(i)
		out = append(out, pageState{p.Key(), p.Required(), p.Completed(), p.Descriptor().Title})
	}
	return out
}

func TestData_LoadKeepsCustomRequiredFlag(t *testing.T) {
	t.Parallel()
	l := NewPageList(
		NewPage(PageLocation, "a", true, LabelNext, Descriptor{Title: "A"}),
		NewPage(PageLocation, "b", false, LabelSkip, Descriptor{Title: "B"}),
	)
	d := NewWithPages(testEnv(), l)
	d.FindPage("b").SetCompleted(true)

	blob, err := d.Save()
	require.NoError(t, err)
	require.NoError(t, d.Load(blob))

	assert.Equal(t, []string{"a", "b"}, d.PageList().Keys())
	assert.True(t, d.FindPage("a").Required())
	assert.False(t, d.FindPage("a").Completed())
	assert.True(t, d.FindPage("b").Completed())
	assert.Equal(t, LabelSkip, d.FindPage("b").NextLabel())
	assert.Equal(t, "B", d.FindPage("b").Descriptor().Title)
}

func TestAccountType(t *testing.T) {
	t.Parallel()
	assert.Equal(t, device.AccountTypeGoogle, AccountType(PageGoogleAccount))
	assert.Equal(t, device.AccountTypeCM, AccountType(PageCMAccount))
	assert.Empty(t, AccountType(PageSimMissing))
}
