package setup

import "fmt"

// PageList is the ordered set of pages; order is navigation order and keys
// are unique.
type PageList struct {
	pages []*Page
}

// NewPageList builds a list from pages, dropping later duplicates of a key.
func NewPageList(pages ...*Page) *PageList {
	l := &PageList{pages: make([]*Page, 0, len(pages))}
	for _, p := range pages {
		l.Append(p)
	}
	return l
}

// Size returns the number of pages.
func (l *PageList) Size() int {
	if l == nil {
		return 0
	}
	return len(l.pages)
}

// Get returns the page at index i. An out-of-range index is a programming
// error and panics.
func (l *PageList) Get(i int) *Page {
	if i < 0 || i >= len(l.pages) {
		panic(fmt.Sprintf("setup: page index %d out of range [0,%d)", i, len(l.pages)))
	}
	return l.pages[i]
}

// FindByKey returns the page with key, or nil.
func (l *PageList) FindByKey(key string) *Page {
	if i := l.indexOfKey(key); i >= 0 {
		return l.pages[i]
	}
	return nil
}

// FindByID returns the first page with id, or nil.
func (l *PageList) FindByID(id PageID) *Page {
	if l == nil {
		return nil
	}
	for _, p := range l.pages {
		if p.id == id {
			return p
		}
	}
	return nil
}

// IndexOf returns the position of page, or -1.
func (l *PageList) IndexOf(page *Page) int {
	if l == nil || page == nil {
		return -1
	}
	for i, p := range l.pages {
		if p == page {
			return i
		}
	}
	return -1
}

// Append adds page at the end. A page whose key is already present is ignored
// and false is returned.
func (l *PageList) Append(page *Page) bool {
	return l.InsertAt(len(l.pages), page)
}

// InsertAt inserts page before index i (i == Size appends). Panics when i is
// out of range; ignores duplicate keys.
func (l *PageList) InsertAt(i int, page *Page) bool {
	if i < 0 || i > len(l.pages) {
		panic(fmt.Sprintf("setup: insert index %d out of range [0,%d]", i, len(l.pages)))
	}
	if page == nil || l.indexOfKey(page.key) >= 0 {
		return false
	}
	l.pages = append(l.pages, nil)
	copy(l.pages[i+1:], l.pages[i:])
	l.pages[i] = page
	return true
}

// Remove deletes page from the list. Removing an absent page is a no-op.
func (l *PageList) Remove(page *Page) bool {
	i := l.IndexOf(page)
	if i < 0 {
		return false
	}
	l.pages = append(l.pages[:i], l.pages[i+1:]...)
	return true
}

// Keys returns the page keys in order.
func (l *PageList) Keys() []string {
	keys := make([]string, len(l.pages))
	for i, p := range l.pages {
		keys[i] = p.key
	}
	return keys
}

// CutOff returns the index of the first required page that is not yet
// completed, or Size when there is none.
func (l *PageList) CutOff() int {
	for i, p := range l.pages {
		if p.required && !p.completed {
			return i
		}
	}
	return l.Size()
}

func (l *PageList) indexOfKey(key string) int {
	if l == nil {
		return -1
	}
	for i, p := range l.pages {
		if p.key == key {
			return i
		}
	}
	return -1
}
