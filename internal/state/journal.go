package state

import (
	"context"

	"github.com/mark3labs/setupwizard/internal/logger"
	"github.com/mark3labs/setupwizard/internal/setup"
)

// JournalListener returns a setup listener that records every event to
// store. Write failures are logged; the wizard never stalls on its journal.
func JournalListener(ctx context.Context, store Store, flowID string) setup.Listener {
	return func(ev setup.Event) {
		rec := Record{}
		switch ev.Kind {
		case setup.TreeChanged:
			rec.Type = RecordTreeChanged
		case setup.PageLoaded:
			rec.Type = RecordPageLoaded
		case setup.PageFinished:
			rec.Type = RecordPageFinished
		default:
			return
		}
		if ev.Page != nil {
			rec.Page = ev.Page.Key()
		}
		if err := store.Record(ctx, flowID, rec); err != nil {
			logger.Warn("journal: %v", err)
		}
	}
}
