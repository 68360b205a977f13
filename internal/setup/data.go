package setup

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/setupwizard/internal/device"
	"github.com/mark3labs/setupwizard/internal/logger"
)

// EventKind tags an Event.
type EventKind int

const (
	// TreeChanged means pages were added or removed.
	TreeChanged EventKind = iota
	// PageLoaded means a page became the visible one.
	PageLoaded
	// PageFinished means a page reports its task done.
	PageFinished
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case TreeChanged:
		return "tree_changed"
	case PageLoaded:
		return "page_loaded"
	case PageFinished:
		return "page_finished"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners. Page is nil for TreeChanged.
type Event struct {
	Kind EventKind
	Page *Page
}

// Listener receives SetupData events synchronously on the caller's goroutine.
type Listener func(Event)

type subscription struct {
	id       uint64
	listener Listener
}

// Data owns the page list for one flow attempt, filters it by environment
// and tells listeners when it changes.
type Data struct {
	env     device.Environment
	pages   *PageList
	known   map[string]*Page // pages Load may restore, by key
	subs    []subscription
	nextSub uint64
	log     *logger.Named
}

// New builds the page list for env.
func New(env device.Environment) *Data {
	d := &Data{
		env:   env,
		known: make(map[string]*Page, len(catalog)),
		log:   logger.For("setup"),
	}
	for id := range catalog {
		p := newPage(id)
		d.known[p.key] = p
	}
	d.pages = d.buildPages()
	return d
}

// NewWithPages creates Data over an explicit page list. Load restores only
// pages from that list.
func NewWithPages(env device.Environment, pages *PageList) *Data {
	d := &Data{
		env:   env,
		pages: pages,
		known: make(map[string]*Page, pages.Size()),
		log:   logger.For("setup"),
	}
	for _, p := range pages.pages {
		d.known[p.key] = p.clone()
	}
	return d
}

// buildPages returns the initial list. Pages that can never apply to this
// device are left out; pages whose relevance can change while the wizard is
// open are kept and reconciled later by the flow.
func (d *Data) buildPages() *PageList {
	l := NewPageList(newPage(PageWelcome))
	if d.env.IsGSMPhone() {
		l.Append(newPage(PageSimMissing))
	}
	if d.env.ServicesAvailable() {
		l.Append(newPage(PageGoogleAccount))
	}
	l.Append(newPage(PageCMAccount))
	l.Append(newPage(PageLocation))
	l.Append(newPage(PageComplete))
	return l
}

// PageList returns the current list.
func (d *Data) PageList() *PageList {
	return d.pages
}

// FindPage returns the page with key, or nil.
func (d *Data) FindPage(key string) *Page {
	return d.pages.FindByKey(key)
}

// RemovePage removes page and announces the new tree. Absent pages are
// ignored without an event.
func (d *Data) RemovePage(page *Page) {
	if !d.pages.Remove(page) {
		return
	}
	d.log.Debug("removed page %s", page.Key())
	d.emit(Event{Kind: TreeChanged})
}

// NotifyPageLoaded is called by the host when page becomes visible.
func (d *Data) NotifyPageLoaded(page *Page) {
	d.emit(Event{Kind: PageLoaded, Page: page})
}

// NotifyPageFinished is called by a page when its task is done.
func (d *Data) NotifyPageFinished(page *Page) {
	d.emit(Event{Kind: PageFinished, Page: page})
}

// NotifyTreeChanged announces a structural change made outside RemovePage.
func (d *Data) NotifyTreeChanged() {
	d.emit(Event{Kind: TreeChanged})
}

// MarkCompleted completes the page with key and reports it finished.
// Unknown keys are ignored.
func (d *Data) MarkCompleted(key string) {
	page := d.pages.FindByKey(key)
	if page == nil {
		return
	}
	page.SetCompleted(true)
	d.NotifyPageFinished(page)
}

// RegisterListener adds l and returns a function that removes it.
func (d *Data) RegisterListener(l Listener) (unregister func()) {
	d.nextSub++
	id := d.nextSub
	d.subs = append(d.subs, subscription{id: id, listener: l})

	return func() {
		for i, s := range d.subs {
			if s.id == id {
				d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
				return
			}
		}
	}
}

// Listeners returns the number of registered listeners.
func (d *Data) Listeners() int {
	return len(d.subs)
}

func (d *Data) emit(ev Event) {
	// Snapshot so listeners may unregister while being notified.
	subs := append([]subscription(nil), d.subs...)
	for _, s := range subs {
		s.listener(ev)
	}
}

// savedState is the resumable state: list membership, order and completion.
type savedState struct {
	Version int         `json:"version"`
	Pages   []savedPage `json:"pages"`
}

type savedPage struct {
	Key       string `json:"key"`
	Completed bool   `json:"completed"`
}

const stateVersion = 1

// Save returns an opaque blob that Load can resume from.
func (d *Data) Save() ([]byte, error) {
	st := savedState{Version: stateVersion, Pages: make([]savedPage, 0, d.pages.Size())}
	for _, p := range d.pages.pages {
		st.Pages = append(st.Pages, savedPage{Key: p.key, Completed: p.completed})
	}

	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshaling flow state: %w", err)
	}
	return data, nil
}

// Load replaces the page list with the one recorded in blob. Keys that name
// none of the pages this Data was built with are dropped. Listeners get a
// TreeChanged.
func (d *Data) Load(blob []byte) error {
	var st savedState
	if err := json.Unmarshal(blob, &st); err != nil {
		return fmt.Errorf("parsing flow state: %w", err)
	}
	if st.Version != stateVersion {
		return fmt.Errorf("unsupported flow state version %d", st.Version)
	}

	l := NewPageList()
	for _, sp := range st.Pages {
		known, ok := d.known[sp.Key]
		if !ok {
			d.log.Warn("dropping unknown page %q from saved state", sp.Key)
			continue
		}
		p := known.clone()
		p.SetCompleted(sp.Completed)
		l.Append(p)
	}

	d.pages = l
	d.log.Debug("restored %d pages", l.Size())
	d.emit(Event{Kind: TreeChanged})
	return nil
}
