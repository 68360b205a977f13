package flow

import (
	"context"

	"github.com/mark3labs/setupwizard/internal/device"
	"github.com/mark3labs/setupwizard/internal/logger"
	"github.com/mark3labs/setupwizard/internal/setup"
)

// Finisher commits the finish transition.
type Finisher interface {
	Commit(ctx context.Context) error
}

// Buttons is the state of the navigation bar.
type Buttons struct {
	NextLabel   string
	NextEnabled bool
	PrevVisible bool
}

// Options configures a Controller.
type Options struct {
	// Looper receives deferred work. Defaults to a private Looper, which the
	// caller must then drain through Controller.Looper.
	Looper Poster
	// Finisher runs when Next is pressed on the complete page.
	Finisher Finisher
	// OnFinish runs after the flow has terminated.
	OnFinish func(err error)
}

// Controller is the wizard's navigation state machine. All methods must be
// called from the single goroutine that also drains the Looper.
type Controller struct {
	data    *setup.Data
	env     device.Environment
	list    *setup.PageList
	adapter *Adapter
	pager   *Pager
	looper  Poster
	opts    Options

	buttons    Buttons
	unregister func()
	closed     bool
	finished   bool

	log *logger.Named
}

// New wires a controller to data and shows the first page.
func New(data *setup.Data, env device.Environment, opts Options) *Controller {
	c := &Controller{
		data:    data,
		env:     env,
		adapter: &Adapter{},
		opts:    opts,
		looper:  opts.Looper,
		log:     logger.For("flow"),
	}
	if c.looper == nil {
		c.looper = NewLooper()
	}
	c.pager = NewPager(c.adapter, c.onPageSelected)
	c.unregister = data.RegisterListener(c.handle)
	c.onPageTreeChanged()
	return c
}

// Looper returns the poster deferred work goes to.
func (c *Controller) Looper() Poster { return c.looper }

// Pager returns the paging view model.
func (c *Controller) Pager() *Pager { return c.pager }

// Adapter returns the paging adapter.
func (c *Controller) Adapter() *Adapter { return c.adapter }

// Buttons returns the current navigation bar state.
func (c *Controller) Buttons() Buttons { return c.buttons }

// Position returns the current position.
func (c *Controller) Position() int { return c.pager.Current() }

// CutOff returns the current cut-off.
func (c *Controller) CutOff() int { return c.adapter.CutOff() }

// Finished reports whether the finish transition ran.
func (c *Controller) Finished() bool { return c.finished }

// Page returns the page at the current position, or nil.
func (c *Controller) Page() *setup.Page { return c.pager.Shown() }

// Resume refreshes the tree, schedules reconciliation and turns Wi-Fi on when
// there is no connectivity. Call it whenever the wizard comes to the front.
func (c *Controller) Resume() {
	if c.closed {
		return
	}
	c.onPageTreeChanged()
	c.removeUnneededPages()
	if !c.env.NetworkConnected() {
		if err := c.env.EnableWifi(); err != nil {
			c.log.Warn("enabling wifi: %v", err)
		}
	}
}

// Close detaches the controller from its data. Deferred tasks that are
// still queued become no-ops.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.unregister()
}

// Next advances. On the SIM-missing page it dismisses the page; on the
// complete page it finishes the flow.
func (c *Controller) Next() {
	if c.closed || c.pager.Count() == 0 {
		return
	}
	position := c.pager.Current()
	page := c.list.Get(position)
	switch page.ID() {
	case setup.PageSimMissing:
		c.removePage(page, true)
	case setup.PageComplete:
		c.finish()
	default:
		c.pager.SetCurrentItem(position + 1)
	}
}

// Previous moves back one page; no-op on the first page.
func (c *Controller) Previous() {
	if c.closed {
		return
	}
	if position := c.pager.Current(); position > 0 {
		c.pager.SetCurrentItem(position - 1)
	}
}

// RefreshCutOff recomputes the cut-off and refreshes the pager only when it
// moved. Reports whether it moved.
func (c *Controller) RefreshCutOff() bool {
	if !c.recalculateCutOff() {
		return false
	}
	c.pager.NotifyDataSetChanged()
	return true
}

func (c *Controller) handle(ev setup.Event) {
	if c.closed {
		return
	}
	switch ev.Kind {
	case setup.TreeChanged:
		c.onPageTreeChanged()
	case setup.PageLoaded:
		c.onPageLoaded(ev.Page)
	case setup.PageFinished:
		c.onPageFinished(ev.Page)
	}
}

func (c *Controller) onPageSelected(position int, page *setup.Page) {
	if position < c.list.Size() {
		c.data.NotifyPageLoaded(page)
	}
}

func (c *Controller) onPageLoaded(page *setup.Page) {
	c.buttons.NextLabel = page.NextLabel()
	if page.Required() {
		c.RefreshCutOff()
	}
	c.updateButtons()
}

func (c *Controller) onPageTreeChanged() {
	c.list = c.data.PageList()
	c.adapter.list = c.list
	c.recalculateCutOff()
	c.pager.NotifyDataSetChanged()
	if c.pager.Shown() == nil {
		// Nothing is visible, so no page will report its label.
		c.buttons.NextLabel = ""
	}
	c.updateButtons()
}

// onPageFinished defers handling so the page list is never mutated while the
// page that reported completion is still on the stack.
func (c *Controller) onPageFinished(page *setup.Page) {
	c.looper.Post(func() {
		if c.closed {
			return
		}
		// Completion moved, so the cut-off may have too.
		c.RefreshCutOff()
		if accountType := setup.AccountType(page.ID()); accountType != "" {
			if c.env.AccountExists(accountType) {
				c.removePage(page, true)
			} else {
				c.Next()
			}
		}
		c.onPageTreeChanged()
	})
}

func (c *Controller) recalculateCutOff() bool {
	cutOff := c.list.CutOff()
	if c.adapter.CutOff() == cutOff {
		return false
	}
	c.log.Debug("cut-off %d -> %d", c.adapter.CutOff(), cutOff)
	c.adapter.SetCutOff(cutOff)
	return true
}

func (c *Controller) updateButtons() {
	position := c.pager.Current()
	c.buttons.NextEnabled = position != c.adapter.CutOff()
	c.buttons.PrevVisible = position > 0
}

// removePage drops page from the data. Absent pages are ignored. The
// animated path parks the pager on the first page while the list shifts and
// then returns to the same position, which now shows the following page.
func (c *Controller) removePage(page *setup.Page, animate bool) {
	if page == nil {
		return
	}
	// Resolve by key: a restore may have replaced the page object.
	if page = c.data.FindPage(page.Key()); page == nil {
		return
	}
	if !animate {
		c.data.RemovePage(page)
		return
	}
	position := c.pager.Current()
	c.pager.SetCurrentItem(0)
	c.data.RemovePage(page)
	c.pager.SetCurrentItem(position)
}

// removeUnneededPages drops, on the next idle tick, pages whose reason to
// exist has gone away.
func (c *Controller) removeUnneededPages() {
	c.looper.Post(func() {
		if c.closed {
			return
		}
		if page := c.list.FindByID(setup.PageCMAccount); page != nil && c.env.AccountExists(device.AccountTypeCM) {
			c.removePage(page, false)
		}
		if page := c.list.FindByID(setup.PageGoogleAccount); page != nil &&
			(!c.env.ServicesAvailable() || c.env.AccountExists(device.AccountTypeGoogle)) {
			c.removePage(page, false)
		}
		if !c.env.IsGSMPhone() || !c.env.IsSimMissing() {
			if page := c.list.FindByID(setup.PageSimMissing); page != nil {
				c.removePage(page, false)
			}
		}
		c.onPageTreeChanged()
	})
}

func (c *Controller) finish() {
	var err error
	if c.opts.Finisher != nil {
		err = c.opts.Finisher.Commit(context.Background())
		if err != nil {
			c.log.Error("finish transition: %v", err)
		}
	}
	c.finished = true
	c.Close()
	if c.opts.OnFinish != nil {
		c.opts.OnFinish(err)
	}
}
