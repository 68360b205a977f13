// Package flow drives the setup wizard: it keeps the paging view in step with
// the page list, computes the navigation cut-off and performs the finish
// transition.
package flow

// Poster queues a task to run after the current callback returns.
type Poster interface {
	Post(task func())
}

// Looper is a FIFO of deferred tasks drained by the owning event loop when it
// goes idle. It never runs a task inline and never starts goroutines; all
// tasks run on whichever goroutine calls RunPending.
type Looper struct {
	queue []func()
}

// NewLooper creates an empty looper.
func NewLooper() *Looper {
	return &Looper{}
}

// Post appends task to the queue.
func (l *Looper) Post(task func()) {
	l.queue = append(l.queue, task)
}

// Pending returns the number of queued tasks.
func (l *Looper) Pending() int {
	return len(l.queue)
}

// RunPending runs queued tasks in order, including tasks they post, until
// the queue is empty. Returns how many ran.
func (l *Looper) RunPending() int {
	ran := 0
	for len(l.queue) > 0 {
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		task()
		ran++
	}
	return ran
}
