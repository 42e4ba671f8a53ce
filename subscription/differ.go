package subscription

import (
	"context"

	"github.com/mvu-go/mvu/command"
	"go.uber.org/zap"
)

// Differ tracks which subscriptions are running between commits. It is only
// ever used from the program's loop goroutine, so it carries no locking.
type Differ[M any] struct {
	ctx     context.Context
	logger  *zap.Logger
	running map[uint64]runningSub
}

type runningSub struct {
	id     ID
	cancel context.CancelFunc
}

func NewDiffer[M any](ctx context.Context, logger *zap.Logger) *Differ[M] {
	return &Differ[M]{
		ctx:     ctx,
		logger:  logger,
		running: make(map[uint64]runningSub),
	}
}

// Apply reconciles the running set with want: entries that disappeared are
// cancelled, new entries are started in list order. Duplicate ids within
// want keep the first occurrence; the rest are dropped with a warning.
func (d *Differ[M]) Apply(want Sub[M], dispatch command.Dispatch[M]) {
	seen := make(map[uint64]bool, len(want))
	for _, e := range want {
		k := e.ID.key()
		if seen[k] {
			d.logger.Warn("duplicate subscription id", zap.String("sub_id", e.ID.String()))
			continue
		}
		seen[k] = true
		if _, ok := d.running[k]; ok {
			continue
		}

		subCtx, cancel := context.WithCancel(d.ctx)
		d.running[k] = runningSub{id: e.ID, cancel: cancel}
		d.logger.Debug("starting subscription", zap.String("sub_id", e.ID.String()))
		start := e.Start
		go start(subCtx, dispatch)
	}

	for k, rs := range d.running {
		if !seen[k] {
			d.logger.Debug("stopping subscription", zap.String("sub_id", rs.id.String()))
			rs.cancel()
			delete(d.running, k)
		}
	}
}

// StopAll cancels everything still running; called once when the run ends.
func (d *Differ[M]) StopAll() {
	for k, rs := range d.running {
		rs.cancel()
		delete(d.running, k)
	}
}

// Running reports how many subscriptions are currently active.
func (d *Differ[M]) Running() int { return len(d.running) }
