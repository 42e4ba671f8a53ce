package program

import (
	"github.com/mvu-go/mvu/command"
	"github.com/mvu-go/mvu/subscription"
	"go.uber.org/zap"
)

type Option[S, M any] func(*Program[S, M])

// WithLogger sets the structured logger for loop lifecycle events, executor
// panics and subscription churn. Defaults to a no-op logger.
func WithLogger[S, M any](logger *zap.Logger) Option[S, M] {
	return func(p *Program[S, M]) { p.logger = logger }
}

// WithObserver installs the render hook: called once after the init commit
// and after every update commit, synchronously on the loop goroutine, with
// the committed state and the dispatcher.
func WithObserver[S, M any](observer func(S, command.Dispatch[M])) Option[S, M] {
	return func(p *Program[S, M]) { p.observer = observer }
}

// WithSubscriptions derives the wanted subscription set from each committed
// state; the loop reconciles it against the running set after every commit.
func WithSubscriptions[S, M any](subs func(S) subscription.Sub[M]) Option[S, M] {
	return func(p *Program[S, M]) { p.subscriptions = subs }
}

// WithTermination ends the run cleanly when pred matches a dequeued message.
// The matching message is not passed to update; exit observes the final
// state.
func WithTermination[S, M any](pred func(M) bool, exit func(S)) Option[S, M] {
	return func(p *Program[S, M]) {
		p.terminate = pred
		p.onExit = exit
	}
}

// WithDispatchBudget fails the run with ErrDispatchBudget after n processed
// messages. Zero, the default, means unlimited. Intended for test harnesses
// guarding against messages that re-dispatch themselves without a base case.
func WithDispatchBudget[S, M any](n int) Option[S, M] {
	return func(p *Program[S, M]) { p.budget = n }
}

// WithTrace keeps a ring of the last n committed transitions, inspectable
// via Trace.
func WithTrace[S, M any](n int) Option[S, M] {
	return func(p *Program[S, M]) { p.traceCap = n }
}

// WithQueueCapacity sets the initial capacity hint of the pending message
// queue. The queue is unbounded either way.
func WithQueueCapacity[S, M any](n int) Option[S, M] {
	return func(p *Program[S, M]) { p.queueCap = n }
}
