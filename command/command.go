// Package command represents pending effects as inert, composable data.
//
// A Cmd is a description of zero or more effects the program loop should
// start after a state commit. Constructing a Cmd never executes anything;
// execution happens only when the loop hands it to Exec together with its
// dispatcher. Effects report outcomes exclusively by calling the dispatcher,
// never by touching program state.
package command

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/mvu-go/mvu/shared/timex"
	"go.uber.org/zap"
)

// Dispatch feeds a message back into the owning program loop. It is the only
// capability an executing effect receives, shared read-only by all of them.
type Dispatch[M any] func(M)

// Effect is one raw effect executor. The context is the program's run
// context; executors should honor cancellation but may only communicate
// results through the dispatcher.
type Effect[M any] func(context.Context, Dispatch[M])

// Cmd is a flat list of pending effects. nil is the empty command.
type Cmd[M any] []Effect[M]

// None returns the empty command. Executing it never invokes the dispatcher.
func None[M any]() Cmd[M] { return nil }

// OfMsg returns a command that dispatches m once when executed.
//
// Dispatching a message from its own update branch this way recurses with no
// base case and loops forever; the runtime does not guard against it. Prefer
// calling the follow-up logic directly and reserve OfMsg for messages that
// must originate from init or from genuinely asynchronous completion.
func OfMsg[M any](m M) Cmd[M] {
	return Cmd[M]{func(_ context.Context, dispatch Dispatch[M]) {
		dispatch(m)
	}}
}

// OfEffect wraps one raw executor. Exec invokes it exactly once per
// execution with the program's dispatcher.
func OfEffect[M any](f Effect[M]) Cmd[M] { return Cmd[M]{f} }

// Batch concatenates commands. Exec starts the constituent effects in list
// order but does not wait for any of them: completions, and therefore their
// dispatches, interleave in whatever order the effects individually finish.
func Batch[M any](cmds ...Cmd[M]) Cmd[M] {
	total := 0
	for _, c := range cmds {
		total += len(c)
	}
	if total == 0 {
		return nil
	}
	out := make(Cmd[M], 0, total)
	for _, c := range cmds {
		out = append(out, c...)
	}
	return out
}

// Map re-types a child command into a parent message space: every a the
// wrapped effects would dispatch arrives as f(a) instead. The relative
// dispatch order of each underlying effect is preserved.
func Map[A, B any](f func(A) B, c Cmd[A]) Cmd[B] {
	if len(c) == 0 {
		return nil
	}
	out := make(Cmd[B], len(c))
	for i, eff := range c {
		eff := eff
		out[i] = func(ctx context.Context, dispatch Dispatch[B]) {
			eff(ctx, func(a A) { dispatch(f(a)) })
		}
	}
	return out
}

// FromAsync wraps an asynchronous computation that cannot fail at the type
// level: encode failure in M, Result-style. The operation runs in its own
// goroutine under Exec and its single result is dispatched on completion.
// This is the recommended constructor for async work.
func FromAsync[M any](op func(context.Context) M) Cmd[M] {
	return Cmd[M]{func(ctx context.Context, dispatch Dispatch[M]) {
		dispatch(op(ctx))
	}}
}

// Perform wraps a fallible computation, mapping failure through onErr. Use
// FromAsync with a Result-typed message where possible; Perform exists as an
// adapter for operations whose signature already returns an error.
func Perform[M any](op func(context.Context) (M, error), onErr func(error) M) Cmd[M] {
	return Cmd[M]{func(ctx context.Context, dispatch Dispatch[M]) {
		m, err := op(ctx)
		if err != nil {
			dispatch(onErr(err))
			return
		}
		dispatch(m)
	}}
}

// Attempt wraps a computation whose success produces no message; only a
// failure is reported, mapped through onErr.
func Attempt[M any](op func(context.Context) error, onErr func(error) M) Cmd[M] {
	return Cmd[M]{func(ctx context.Context, dispatch Dispatch[M]) {
		if err := op(ctx); err != nil {
			dispatch(onErr(err))
		}
	}}
}

// After dispatches m once d has elapsed on the clock found in the run
// context, so virtual time works in tests. Cancelled contexts suppress the
// dispatch.
func After[M any](d time.Duration, m M) Cmd[M] {
	return Cmd[M]{func(ctx context.Context, dispatch Dispatch[M]) {
		select {
		case <-ctx.Done():
		case <-timex.From(ctx).After(d):
			dispatch(m)
		}
	}}
}

// Exec starts every effect of c in its own goroutine, in list order, and
// returns without waiting. A panic inside an effect is recovered and logged:
// effect failure is required to reach the loop as a message, so a panicking
// executor is a programmer error surfaced in logs rather than a crash.
func Exec[M any](ctx context.Context, logger *zap.Logger, c Cmd[M], dispatch Dispatch[M]) {
	for _, eff := range c {
		eff := eff
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic in effect executor",
						zap.Any("panic", r),
						zap.ByteString("stack", debug.Stack()),
					)
				}
			}()
			eff(ctx, dispatch)
		}()
	}
}
