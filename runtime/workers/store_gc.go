package workers

import (
	"context"
	"log/slog"
	"roomchat/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const discardRatio = 0.5

// ValueLogGCWorker reclaims value log space of the message store.
type ValueLogGCWorker struct {
	log      *slog.Logger
	db       *badger.DB
	interval time.Duration
}

func NewValueLogGCWorker(log *slog.Logger, db *badger.DB, interval time.Duration) *ValueLogGCWorker {
	return &ValueLogGCWorker{log: log, db: db, interval: interval}
}

func (w *ValueLogGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rewrites, err := w.Collect()
			if err != nil {
				w.log.Warn("Value log GC failed", "err", err)
				continue
			}
			if rewrites > 0 {
				w.log.Debug("Value log GC done", "rewrites", rewrites)
			}
		}
	}
}

// Collect rewrites value log files until badger has nothing left to reclaim.
func (w *ValueLogGCWorker) Collect() (int, error) {
	rewrites := 0
	for {
		if w.db.IsClosed() {
			return rewrites, nil
		}
		err := w.db.RunValueLogGC(discardRatio)
		switch {
		case err == nil:
			rewrites++
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected):
			return rewrites, nil
		default:
			return rewrites, err
		}
	}
}
