package msgqueue_test

import (
	"sync"
	"testing"
	"time"

	"github.com/mvu-go/mvu/shared/msgqueue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_PreservesInsertionOrder(t *testing.T) {
	q := msgqueue.New[int](4)
	defer q.Close()

	for i := 0; i < 100; i++ {
		require.True(t, q.In(i))
	}

	for i := 0; i < 100; i++ {
		select {
		case got := <-q.Out():
			require.Equal(t, i, got)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for element %d", i)
		}
	}
}

func TestQueue_InNeverBlocks(t *testing.T) {
	q := msgqueue.New[int](1)
	defer q.Close()

	// no consumer; a bounded channel would deadlock here
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10_000; i++ {
			q.In(i)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer blocked")
	}
}

func TestQueue_InAfterCloseIsNoop(t *testing.T) {
	q := msgqueue.New[string](1)
	q.Close()

	assert.False(t, q.In("late"))

	select {
	case _, ok := <-q.Out():
		assert.False(t, ok, "expected closed out channel")
	case <-time.After(time.Second):
		t.Fatal("out channel never closed")
	}
}

func TestQueue_CloseIsIdempotent(t *testing.T) {
	q := msgqueue.New[int](1)
	q.Close()
	q.Close()
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := msgqueue.New[int](16)
	defer q.Close()

	const producers = 8
	const perProducer = 250

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.In(p*perProducer + i)
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[int]bool, producers*perProducer)
	for i := 0; i < producers*perProducer; i++ {
		select {
		case v := <-q.Out():
			require.False(t, seen[v], "duplicate element %d", v)
			seen[v] = true
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d elements", i)
		}
	}
}
