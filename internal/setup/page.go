// Package setup holds the first-run page model: pages, the ordered page list
// and the SetupData that owns it and broadcasts changes to listeners.
package setup

// PageID identifies the kind of a page. Flow branching keys off it.
type PageID int

const (
	PageWelcome PageID = iota
	PageSimMissing
	PageGoogleAccount
	PageCMAccount
	PageLocation
	PageComplete
)

// String returns the stable name of the page id.
func (id PageID) String() string {
	switch id {
	case PageWelcome:
		return "welcome"
	case PageSimMissing:
		return "sim_missing"
	case PageGoogleAccount:
		return "google_account"
	case PageCMAccount:
		return "cm_account"
	case PageLocation:
		return "location"
	case PageComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Descriptor is what the host renders for a page. The core never draws.
type Descriptor struct {
	ID     PageID
	Title  string
	Body   string // markdown
	Action string // hint for the page's own task, empty when it has none
}

// Page is a single wizard step. ID, key and required never change after
// construction; completed only moves from false to true.
type Page struct {
	id        PageID
	key       string
	required  bool
	completed bool
	nextLabel string
	desc      Descriptor
}

// NewPage creates a page. The descriptor's ID is forced to id.
func NewPage(id PageID, key string, required bool, nextLabel string, desc Descriptor) *Page {
	desc.ID = id
	return &Page{
		id:        id,
		key:       key,
		required:  required,
		nextLabel: nextLabel,
		desc:      desc,
	}
}

func (p *Page) ID() PageID        { return p.id }
func (p *Page) Key() string       { return p.key }
func (p *Page) Required() bool    { return p.required }
func (p *Page) Completed() bool   { return p.completed }
func (p *Page) NextLabel() string { return p.nextLabel }

// Descriptor returns the render unit for the page.
func (p *Page) Descriptor() Descriptor { return p.desc }

// SetCompleted marks the page completed. Completion is sticky: passing false
// on a completed page does nothing. Reports whether the flag changed.
func (p *Page) SetCompleted(completed bool) bool {
	if !completed || p.completed {
		return false
	}
	p.completed = true
	return true
}

// clone returns an uncompleted copy of p.
func (p *Page) clone() *Page {
	c := *p
	c.completed = false
	return &c
}
