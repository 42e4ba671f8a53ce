package program

import (
	"sync"

	"github.com/mvu-go/mvu/pure"
	"github.com/mvu-go/mvu/shared/timex"
)

// tracelog guards the trace ring: records happen on the loop goroutine,
// snapshots may come from anywhere.
type tracelog[S, M any] struct {
	mu   sync.Mutex
	ring *pure.Ring[Transition[S, M]]
}

func (t *tracelog[S, M]) record(m M, s S, clock timex.Clock) {
	if t.ring == nil {
		return
	}
	t.mu.Lock()
	t.ring.Push(Transition[S, M]{Msg: m, State: s, Span: timex.Window(clock)})
	t.mu.Unlock()
}

func (t *tracelog[S, M]) snapshot() []Transition[S, M] {
	if t.ring == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ring.Snapshot()
}
