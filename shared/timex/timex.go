package timex

import (
	"context"
	"time"

	"github.com/rickb777/date/v2/timespan"
)

// TimeSpan is the interval type used to stamp committed transitions.
type TimeSpan = timespan.TimeSpan

const epsilon = time.Millisecond

// Clock abstracts wall time so timer commands and tick subscriptions can be
// driven by virtual time in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	NewTicker(d time.Duration) Ticker
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Window returns a narrow span around the clock's current instant.
func Window(c Clock) TimeSpan {
	now := c.Now()
	return timespan.BetweenTimes(now.Add(-1*epsilon), now.Add(epsilon))
}

type ctxKey struct{}

// With stores a clock in the context for effects started under it.
func With(ctx context.Context, c Clock) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// From returns the clock stored in the context, or the system clock.
func From(ctx context.Context) Clock {
	if c, ok := ctx.Value(ctxKey{}).(Clock); ok {
		return c
	}
	return System()
}

// System returns the real wall clock.
func System() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (systemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct{ t *time.Ticker }

func (st systemTicker) C() <-chan time.Time { return st.t.C }

func (st systemTicker) Stop() { st.t.Stop() }
