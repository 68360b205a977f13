package flow

import (
	"math"

	"github.com/mark3labs/setupwizard/internal/setup"
)

// Adapter exposes the reachable prefix of the page list to the pager.
// Items are tracked by page identity, so every refresh re-evaluates all
// positions.
type Adapter struct {
	list   *setup.PageList
	cutOff int
}

// Count is min(cutOff, size); 0 with no list.
func (a *Adapter) Count() int {
	if a.list == nil {
		return 0
	}
	return min(a.cutOff, a.list.Size())
}

// ItemAt returns the render unit for position i.
func (a *Adapter) ItemAt(i int) setup.Descriptor {
	return a.list.Get(i).Descriptor()
}

// PageAt returns the page at position i.
func (a *Adapter) PageAt(i int) *setup.Page {
	return a.list.Get(i)
}

// SetCutOff stores the cut-off. Negative values mean unbounded.
func (a *Adapter) SetCutOff(cutOff int) {
	if cutOff < 0 {
		cutOff = math.MaxInt
	}
	a.cutOff = cutOff
}

// CutOff returns the stored cut-off.
func (a *Adapter) CutOff() int {
	return a.cutOff
}

// Pager is the paging view model: a current position over an Adapter. It
// reports the page shown at the current position whenever that changes.
type Pager struct {
	adapter  *Adapter
	current  int
	shown    *setup.Page
	onSelect func(position int, page *setup.Page)

	refreshes int
}

// NewPager creates a pager over adapter. onSelect runs synchronously.
func NewPager(adapter *Adapter, onSelect func(position int, page *setup.Page)) *Pager {
	return &Pager{adapter: adapter, onSelect: onSelect}
}

// Current returns the current position.
func (p *Pager) Current() int {
	return p.current
}

// Count returns the adapter's count.
func (p *Pager) Count() int {
	return p.adapter.Count()
}

// Shown returns the page at the current position, or nil when empty.
func (p *Pager) Shown() *setup.Page {
	return p.shown
}

// Refreshes returns how many times NotifyDataSetChanged ran.
func (p *Pager) Refreshes() int {
	return p.refreshes
}

// SetCurrentItem moves to position, clamped to the adapter's range.
func (p *Pager) SetCurrentItem(position int) {
	count := p.adapter.Count()
	if count == 0 {
		p.current = 0
		p.shown = nil
		return
	}
	p.current = max(0, min(position, count-1))
	p.sync()
}

// NotifyDataSetChanged re-pulls the count and re-resolves the current page.
func (p *Pager) NotifyDataSetChanged() {
	p.refreshes++
	p.SetCurrentItem(p.current)
}

// sync fires onSelect when the page at the current position is a different
// page than the one last shown.
func (p *Pager) sync() {
	page := p.adapter.PageAt(p.current)
	if page == p.shown {
		return
	}
	p.shown = page
	if p.onSelect != nil {
		p.onSelect(p.current, page)
	}
}
