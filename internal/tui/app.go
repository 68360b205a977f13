// Package tui hosts the setup flow in a terminal: it renders the page at the
// pager's position and turns key presses into controller calls.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/setupwizard/internal/device"
	"github.com/mark3labs/setupwizard/internal/flow"
	"github.com/mark3labs/setupwizard/internal/logger"
	"github.com/mark3labs/setupwizard/internal/setup"
	"github.com/mark3labs/setupwizard/internal/state"
	"github.com/mark3labs/setupwizard/internal/tui/theme"
)

// Options configures an App.
type Options struct {
	Data     *setup.Data
	Device   *device.Profile
	Finisher flow.Finisher

	// Store keeps resumable state. Nil disables persistence.
	Store  state.Store
	FlowID string
}

// Outcome is how a wizard run ended.
type Outcome struct {
	Finished bool  // the finish transition ran
	Err      error // finish transition error, if any
	Saved    bool  // state was saved for resumption
}

// App is the Bubbletea model hosting the setup flow. The controller and its
// looper are only touched from Update, so the flow stays single-threaded.
type App struct {
	ctx    context.Context
	data   *setup.Data
	device *device.Profile
	store  state.Store
	flowID string

	looper *flow.Looper
	ctrl   *flow.Controller
	keys   KeyMap

	width    int
	height   int
	notice   string
	outcome  Outcome
	quitting bool

	log *logger.Named
}

// NewApp wires a controller to opts.Data. Nothing runs until Init.
func NewApp(ctx context.Context, opts Options) *App {
	a := &App{
		// Saving must outlive cancellation so interrupted runs keep progress.
		ctx:    context.WithoutCancel(ctx),
		data:   opts.Data,
		device: opts.Device,
		store:  opts.Store,
		flowID: opts.FlowID,
		looper: flow.NewLooper(),
		keys:   DefaultKeyMap(),
		log:    logger.For("tui"),
	}
	a.ctrl = flow.New(opts.Data, opts.Device, flow.Options{
		Looper:   a.looper,
		Finisher: opts.Finisher,
		OnFinish: func(err error) {
			a.outcome.Finished = true
			a.outcome.Err = err
		},
	})
	return a
}

// Controller returns the flow controller.
func (a *App) Controller() *flow.Controller { return a.ctrl }

// Looper returns the looper drained on idle ticks.
func (a *App) Looper() *flow.Looper { return a.looper }

// Outcome returns how the run ended so far.
func (a *App) Outcome() Outcome { return a.outcome }

// Init resumes the flow, as a foregrounded wizard does.
func (a *App) Init() tea.Cmd {
	a.ctrl.Resume()
	return a.idle()
}

// Update handles incoming messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case tea.KeyPressMsg:
		cmd = a.handleKeyPress(msg)

	case idleMsg:
		a.looper.RunPending()

	case ProfileChangedMsg:
		if err := a.device.Reload(); err != nil {
			a.log.Warn("reloading device profile: %v", err)
			a.notice = "Could not read the device profile."
			break
		}
		a.ctrl.Resume()
	}

	if a.outcome.Finished && !a.quitting {
		cmd = a.finishRun()
	}
	if a.quitting {
		return a, cmd
	}
	return a, tea.Batch(cmd, a.idle())
}

// idle schedules a looper drain once the current update has returned.
func (a *App) idle() tea.Cmd {
	if a.looper.Pending() == 0 {
		return nil
	}
	return func() tea.Msg { return idleMsg{} }
}

func (a *App) handleKeyPress(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()
	case key.Matches(msg, a.keys.Next):
		a.notice = ""
		a.ctrl.Next()
	case key.Matches(msg, a.keys.Prev):
		a.notice = ""
		a.ctrl.Previous()
	case key.Matches(msg, a.keys.Link):
		a.resolveGate(true)
	case key.Matches(msg, a.keys.Skip):
		a.resolveGate(false)
	}
	return nil
}

// gatePage returns the required page blocking progress, once the user is
// standing right before it.
func (a *App) gatePage() *setup.Page {
	list := a.data.PageList()
	cutOff := a.ctrl.CutOff()
	if cutOff >= list.Size() {
		return nil
	}
	if count := a.ctrl.Pager().Count(); count > 0 && a.ctrl.Position() != count-1 {
		return nil
	}
	return list.Get(cutOff)
}

// resolveGate completes the gating page. Linking also registers the page's
// account on the device, so the page is dropped instead of shown.
func (a *App) resolveGate(link bool) {
	page := a.gatePage()
	if page == nil {
		a.notice = "Nothing is waiting on this step."
		return
	}
	a.notice = ""
	if accountType := setup.AccountType(page.ID()); link && accountType != "" {
		if err := a.device.AddAccount(accountType); err != nil {
			a.log.Error("adding %s account: %v", accountType, err)
			a.notice = "Signing in failed."
			return
		}
	}
	a.data.MarkCompleted(page.Key())
}

func (a *App) quit() tea.Cmd {
	a.quitting = true
	if err := a.persist(); err != nil {
		a.log.Error("saving flow state: %v", err)
	} else {
		a.outcome.Saved = a.store != nil
	}
	a.ctrl.Close()
	return tea.Quit
}

// Interrupted saves state after the program stopped without a quit key,
// such as on a signal.
func (a *App) Interrupted() error {
	if a.quitting || a.outcome.Finished {
		return nil
	}
	a.quitting = true
	a.ctrl.Close()
	if err := a.persist(); err != nil {
		return err
	}
	a.outcome.Saved = a.store != nil
	return nil
}

func (a *App) persist() error {
	if a.store == nil {
		return nil
	}
	blob, err := a.data.Save()
	if err != nil {
		return err
	}
	if err := a.store.Save(a.ctx, a.flowID, blob); err != nil {
		return err
	}
	a.record(state.Record{Type: state.RecordSaved})
	return nil
}

// finishRun drops the resumable state, since a finished flow never resumes,
// and starts a fresh journal with the finish record.
func (a *App) finishRun() tea.Cmd {
	a.quitting = true
	if a.store != nil {
		if err := a.store.Clear(a.ctx, a.flowID); err != nil {
			a.log.Warn("clearing flow state: %v", err)
		}
		rec := state.Record{Type: state.RecordFinished}
		if a.outcome.Err != nil {
			rec.Detail = a.outcome.Err.Error()
		}
		a.record(rec)
	}
	return tea.Quit
}

func (a *App) record(rec state.Record) {
	rec.Timestamp = time.Now().UTC()
	if err := a.store.Record(a.ctx, a.flowID, rec); err != nil {
		a.log.Warn("journal: %v", err)
	}
}

// View renders the wizard UI.
func (a *App) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if a.quitting {
		view.AltScreen = false
		view.Content = lipgloss.NewLayer("")
		return view
	}

	width, height := a.size()
	canvas := uv.NewScreenBuffer(width, height)
	uv.NewStyledString(a.render(width, height)).Draw(canvas, canvas.Bounds())

	view.Content = lipgloss.NewLayer(canvas.Render())
	view.BackgroundColor = theme.HexToColor(theme.Current().BgBase)
	return view
}

func (a *App) size() (int, int) {
	width, height := a.width, a.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return width, height
}

// render lays out header, step dots, page body, gate notice, buttons and
// hints inside a centered frame.
func (a *App) render(width, height int) string {
	s := theme.Current().S()
	frameWidth := min(max(width-4, 40), 90)
	inner := frameWidth - 6

	sections := []string{a.renderHeader(), a.renderSteps(), ""}

	if page := a.ctrl.Page(); page != nil {
		desc := page.Descriptor()
		sections = append(sections, s.PageTitle.Render(desc.Title), "", renderMarkdown(desc.Body, inner))
	}

	if gate := a.gatePage(); gate != nil {
		desc := gate.Descriptor()
		action := desc.Action
		if action == "" {
			action = "complete it"
		}
		sections = append(sections, "", s.Notice.Width(inner).Render(fmt.Sprintf(
			"%s is required before you can continue. Press c to %s or s to skip.", desc.Title, action)))
	}

	if a.notice != "" {
		sections = append(sections, "", s.Error.Render(a.notice))
	}

	bar := NewButtonBar(NavButtons(a.ctrl.Buttons(), a.nextUsable()))
	bar.SetWidth(inner)
	sections = append(sections, "", bar.Render(), "",
		RenderHintBar(a.keys.Prev, a.keys.Next, a.keys.Link, a.keys.Skip, a.keys.Quit))

	frame := s.Frame.Width(frameWidth).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, frame)
}

func (a *App) renderHeader() string {
	t := theme.Current()
	s := t.S()

	size := a.data.PageList().Size()
	position := a.ctrl.Position()
	progress := 0.0
	if size > 1 {
		progress = float64(position) / float64(size-1)
	}
	counter := lipgloss.NewStyle().
		Foreground(theme.HexToColor(theme.InterpolateColor(t.Secondary, t.Success, progress))).
		Render(fmt.Sprintf("Step %d of %d", position+1, size))

	return s.HeaderTitle.Render("Device setup") + "  " + counter
}

// renderSteps draws one dot per page: done, current, reachable or locked
// behind the cut-off.
func (a *App) renderSteps() string {
	s := theme.Current().S()
	list := a.data.PageList()
	position := a.ctrl.Position()
	cutOff := a.ctrl.CutOff()

	dots := make([]string, 0, list.Size())
	for i := 0; i < list.Size(); i++ {
		switch {
		case i == position && a.ctrl.Page() != nil:
			dots = append(dots, s.StepCurrent.Render("●"))
		case list.Get(i).Completed() || i < position:
			dots = append(dots, s.StepDone.Render("✓"))
		case i >= cutOff:
			dots = append(dots, s.StepLocked.Render("○"))
		default:
			dots = append(dots, s.StepAhead.Render("·"))
		}
	}
	return strings.Join(dots, " ")
}

// nextUsable reports whether Next would do anything on the current page.
func (a *App) nextUsable() bool {
	page := a.ctrl.Page()
	if page == nil {
		return false
	}
	switch page.ID() {
	case setup.PageSimMissing, setup.PageComplete:
		return true
	}
	return a.ctrl.Position() < a.ctrl.Pager().Count()-1
}
