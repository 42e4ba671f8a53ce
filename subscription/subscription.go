// Package subscription models long-lived effects declaratively: the
// application derives the wanted set from its current state, and the program
// loop reconciles it against what is already running after every commit.
package subscription

import (
	"context"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/mvu-go/mvu/command"
	"github.com/mvu-go/mvu/shared/timex"
)

// ID identifies one subscription across commits. Map prefixes it, so child
// ids remain unique after composition.
type ID []string

func (id ID) String() string { return strings.Join(id, "/") }

func (id ID) key() uint64 { return xxhash.Sum64String(id.String()) }

// Start runs a long-lived effect until its context is cancelled, reporting
// back only through the dispatcher.
type Start[M any] func(context.Context, command.Dispatch[M])

type Entry[M any] struct {
	ID    ID
	Start Start[M]
}

// Sub is the set of subscriptions an application wants active for a given
// state. Like Cmd, it is inert data; nil is the empty set.
type Sub[M any] []Entry[M]

func None[M any]() Sub[M] { return nil }

func New[M any](id ID, start Start[M]) Sub[M] {
	return Sub[M]{{ID: id, Start: start}}
}

func Batch[M any](subs ...Sub[M]) Sub[M] {
	total := 0
	for _, s := range subs {
		total += len(s)
	}
	if total == 0 {
		return nil
	}
	out := make(Sub[M], 0, total)
	for _, s := range subs {
		out = append(out, s...)
	}
	return out
}

// Map re-types a child subscription set into a parent message space and
// prefixes every id with the child's name, keeping composed ids unique.
func Map[A, B any](prefix string, f func(A) B, s Sub[A]) Sub[B] {
	if len(s) == 0 {
		return nil
	}
	out := make(Sub[B], len(s))
	for i, e := range s {
		start := e.Start
		id := append(ID{prefix}, e.ID...)
		out[i] = Entry[B]{
			ID: id,
			Start: func(ctx context.Context, dispatch command.Dispatch[B]) {
				start(ctx, func(a A) { dispatch(f(a)) })
			},
		}
	}
	return out
}

// Every emits a message on each tick of period d, using the clock in the
// run context so tests can drive it with virtual time.
func Every[M any](d time.Duration, toMsg func(time.Time) M) Start[M] {
	return func(ctx context.Context, dispatch command.Dispatch[M]) {
		ticker := timex.From(ctx).NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C():
				dispatch(toMsg(t))
			}
		}
	}
}
