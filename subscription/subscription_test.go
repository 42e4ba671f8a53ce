package subscription_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mvu-go/mvu/command"
	"github.com/mvu-go/mvu/shared/timex"
	"github.com/mvu-go/mvu/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitUntil(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.After(time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestBatch_ConcatenatesEntries(t *testing.T) {
	noop := func(ctx context.Context, _ command.Dispatch[int]) { <-ctx.Done() }

	s := subscription.Batch(
		subscription.New(subscription.ID{"a"}, noop),
		subscription.None[int](),
		subscription.New(subscription.ID{"b"}, noop),
	)

	require.Len(t, s, 2)
	assert.Equal(t, "a", s[0].ID.String())
	assert.Equal(t, "b", s[1].ID.String())
}

func TestMap_PrefixesIDAndMapsMessages(t *testing.T) {
	child := subscription.New(subscription.ID{"ticker"},
		func(_ context.Context, dispatch command.Dispatch[int]) {
			dispatch(7)
		})

	mapped := subscription.Map("child", func(i int) string {
		if i == 7 {
			return "seven"
		}
		return "other"
	}, child)

	require.Len(t, mapped, 1)
	assert.Equal(t, "child/ticker", mapped[0].ID.String())

	var mu sync.Mutex
	var got []string
	mapped[0].Start(context.Background(), func(s string) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"seven"}, got)
}

func TestEvery_TicksOnVirtualClock(t *testing.T) {
	vc := timex.Virtual(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx, cancel := context.WithCancel(timex.With(context.Background(), vc))
	defer cancel()

	var ticks atomic.Int32
	start := subscription.Every(time.Second, func(time.Time) struct{} {
		ticks.Add(1)
		return struct{}{}
	})
	go start(ctx, func(struct{}) {})

	// let the ticker register before advancing
	time.Sleep(10 * time.Millisecond)

	vc.Advance(time.Second)
	waitUntil(t, func() bool { return ticks.Load() == 1 }, "first tick")

	vc.Advance(time.Second)
	waitUntil(t, func() bool { return ticks.Load() == 2 }, "second tick")

	cancel()
	time.Sleep(10 * time.Millisecond)
	vc.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(2), ticks.Load(), "cancelled subscription must stop ticking")
}

func TestDiffer_StartsAndStopsByID(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var started, stopped atomic.Int32
	entry := func(name string) subscription.Sub[int] {
		return subscription.New(subscription.ID{name},
			func(ctx context.Context, _ command.Dispatch[int]) {
				started.Add(1)
				<-ctx.Done()
				stopped.Add(1)
			})
	}

	d := subscription.NewDiffer[int](ctx, zap.NewNop())
	dispatch := func(int) {}

	d.Apply(subscription.Batch(entry("a"), entry("b")), dispatch)
	waitUntil(t, func() bool { return started.Load() == 2 }, "both subscriptions to start")
	assert.Equal(t, 2, d.Running())

	// same set again: nothing new starts
	d.Apply(subscription.Batch(entry("a"), entry("b")), dispatch)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(2), started.Load())

	// b disappears, c appears
	d.Apply(subscription.Batch(entry("a"), entry("c")), dispatch)
	waitUntil(t, func() bool { return stopped.Load() == 1 }, "b to stop")
	waitUntil(t, func() bool { return started.Load() == 3 }, "c to start")
	assert.Equal(t, 2, d.Running())

	d.StopAll()
	waitUntil(t, func() bool { return stopped.Load() == 3 }, "all to stop")
	assert.Equal(t, 0, d.Running())
}

func TestDiffer_DuplicateIDKeepsFirst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var started atomic.Int32
	sub := func(tag int) subscription.Sub[int] {
		return subscription.New(subscription.ID{"dup"},
			func(ctx context.Context, dispatch command.Dispatch[int]) {
				started.Add(1)
				dispatch(tag)
				<-ctx.Done()
			})
	}

	var mu sync.Mutex
	var got []int
	d := subscription.NewDiffer[int](ctx, zap.NewNop())
	d.Apply(subscription.Batch(sub(1), sub(2)), func(m int) {
		mu.Lock()
		got = append(got, m)
		mu.Unlock()
	})

	waitUntil(t, func() bool { return started.Load() == 1 }, "first entry to start")
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, int32(1), started.Load())
	assert.Equal(t, 1, d.Running())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1}, got)
}
