package pure

// Ring is a fixed-capacity ring buffer. Once full, every Push overwrites the
// oldest element. Not safe for concurrent use; callers synchronize.
type Ring[T any] struct {
	data  []T
	head  int
	count int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{data: make([]T, capacity)}
}

func (r *Ring[T]) Push(v T) {
	idx := (r.head + r.count) % len(r.data)
	r.data[idx] = v
	if r.count < len(r.data) {
		r.count++
	} else {
		r.head = (r.head + 1) % len(r.data)
	}
}

func (r *Ring[T]) Len() int { return r.count }

func (r *Ring[T]) Cap() int { return len(r.data) }

// Snapshot returns the buffered elements, oldest first.
func (r *Ring[T]) Snapshot() []T {
	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.data[(r.head+i)%len(r.data)]
	}
	return out
}
