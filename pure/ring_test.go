package pure_test

import (
	"testing"

	"github.com/mvu-go/mvu/pure"

	"github.com/stretchr/testify/assert"
)

func TestRing_PushBelowCapacity(t *testing.T) {
	r := pure.NewRing[int](4)
	r.Push(1)
	r.Push(2)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 4, r.Cap())
	assert.Equal(t, []int{1, 2}, r.Snapshot())
}

func TestRing_OverwritesOldest(t *testing.T) {
	r := pure.NewRing[int](3)
	for i := 1; i <= 5; i++ {
		r.Push(i)
	}

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{3, 4, 5}, r.Snapshot())
}

func TestRing_ZeroCapacityClamped(t *testing.T) {
	r := pure.NewRing[string](0)
	r.Push("a")
	r.Push("b")

	assert.Equal(t, 1, r.Cap())
	assert.Equal(t, []string{"b"}, r.Snapshot())
}

func TestRing_SnapshotEmpty(t *testing.T) {
	r := pure.NewRing[int](2)
	assert.Empty(t, r.Snapshot())
}
