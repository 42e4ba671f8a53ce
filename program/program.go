package program

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mvu-go/mvu/command"
	"github.com/mvu-go/mvu/pure"
	"github.com/mvu-go/mvu/shared/msgqueue"
	"github.com/mvu-go/mvu/shared/timex"
	"github.com/mvu-go/mvu/subscription"
	"go.uber.org/zap"
)

var (
	// ErrDispatchBudget reports that the run processed more messages than
	// its configured budget. Used by test harnesses to detect runaway
	// self-dispatch loops.
	ErrDispatchBudget = errors.New("dispatch budget exhausted")

	// ErrAlreadyRunning reports a second Run call on the same Program.
	ErrAlreadyRunning = errors.New("program is already running")
)

// Transition is one committed state change, as kept by the trace ring.
type Transition[S, M any] struct {
	Msg   M
	State S
	Span  timex.TimeSpan
}

// Program owns the current state and the dispatcher, and serializes every
// update on a single loop goroutine. Construct with New, drive with Run.
type Program[S, M any] struct {
	id     string
	init   func() (S, command.Cmd[M])
	update func(M, S) (S, command.Cmd[M])

	logger        *zap.Logger
	observer      func(S, command.Dispatch[M])
	subscriptions func(S) subscription.Sub[M]
	terminate     func(M) bool
	onExit        func(S)
	budget        int
	traceCap      int
	queueCap      int

	queue   *msgqueue.Queue[M]
	running atomic.Bool
	trace   tracelog[S, M]
}

func New[S, M any](
	init func() (S, command.Cmd[M]),
	update func(M, S) (S, command.Cmd[M]),
	opts ...Option[S, M],
) *Program[S, M] {
	p := &Program[S, M]{
		id:     uuid.New().String(),
		init:   init,
		update: update,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.queue = msgqueue.New[M](p.queueCap)
	if p.traceCap > 0 {
		p.trace.ring = pure.NewRing[Transition[S, M]](p.traceCap)
	}
	return p
}

// ID returns the program's unique id, used for log correlation.
func (p *Program[S, M]) ID() string { return p.id }

// Dispatch enqueues m for processing in arrival order. It never blocks, is
// safe to call from any goroutine, and becomes a no-op once the run ends.
// This is the dispatcher capability handed to every effect executor.
func (p *Program[S, M]) Dispatch(m M) {
	p.queue.In(m)
}

// Run executes init, commits the initial state, then processes messages one
// at a time in dispatch order until ctx is cancelled, a termination message
// arrives, or the dispatch budget trips. update runs synchronously on the
// loop goroutine; a panic out of it is fatal by contract and re-raised after
// logging. Run may be called at most once per Program.
func (p *Program[S, M]) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer p.queue.Close()

	clock := timex.From(runCtx)
	dispatch := command.Dispatch[M](p.Dispatch)

	var differ *subscription.Differ[M]
	if p.subscriptions != nil {
		differ = subscription.NewDiffer[M](runCtx, p.logger)
		defer differ.StopAll()
	}

	state, cmd := p.init()
	p.logger.Debug("program started", zap.String("program_id", p.id))
	p.commit(state, dispatch, differ)
	command.Exec(runCtx, p.logger, cmd, dispatch)

	processed := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-p.queue.Out():
			if !ok {
				return nil
			}

			if p.terminate != nil && p.terminate(m) {
				p.logger.Debug("program terminating",
					zap.String("program_id", p.id),
					zap.Int("processed", processed),
				)
				if p.onExit != nil {
					p.onExit(state)
				}
				return nil
			}

			var next command.Cmd[M]
			state, next = p.applyUpdate(m, state)
			p.trace.record(m, state, clock)
			p.commit(state, dispatch, differ)
			command.Exec(runCtx, p.logger, next, dispatch)

			processed++
			if p.budget > 0 && processed >= p.budget {
				p.logger.Error("dispatch budget exhausted",
					zap.String("program_id", p.id),
					zap.Int("budget", p.budget),
				)
				return fmt.Errorf("%w: %d messages processed", ErrDispatchBudget, processed)
			}
		}
	}
}

// applyUpdate runs one update. update must be pure and non-blocking; an
// escaping panic is a fatal program error, logged and re-raised.
func (p *Program[S, M]) applyUpdate(m M, s S) (S, command.Cmd[M]) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic in update",
				zap.String("program_id", p.id),
				zap.Any("panic", r),
			)
			panic(r)
		}
	}()
	return p.update(m, s)
}

// commit notifies the observer of a newly committed state and reconciles the
// subscription set, atomically with respect to other dispatches: both run on
// the loop goroutine before the next message is taken.
func (p *Program[S, M]) commit(s S, dispatch command.Dispatch[M], differ *subscription.Differ[M]) {
	if p.observer != nil {
		p.observer(s, dispatch)
	}
	if differ != nil {
		differ.Apply(p.subscriptions(s), dispatch)
	}
}

// Trace returns the most recent committed transitions, oldest first. Empty
// unless the program was built with WithTrace.
func (p *Program[S, M]) Trace() []Transition[S, M] {
	return p.trace.snapshot()
}
