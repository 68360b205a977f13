package tui

// idleMsg asks the model to drain the looper once the current update has
// returned.
type idleMsg struct{}

// ProfileChangedMsg reports that the device profile changed on disk.
type ProfileChangedMsg struct{}
