package history

import "github.com/annel0/voxel-edit/internal/voxel"

// ring ограниченный стек действий на кольцевом буфере.
// При переполнении push вытесняет самое старое (нижнее) действие.
type ring struct {
	buf  []*voxel.Action
	head int // индекс нижнего элемента
	size int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]*voxel.Action, max(1, capacity))}
}

func (r *ring) len() int {
	return r.size
}

func (r *ring) slot(i int) int {
	return (r.head + i) % len(r.buf)
}

// push кладёт действие на вершину и возвращает вытесненное, если было
func (r *ring) push(a *voxel.Action) (evicted *voxel.Action) {
	if r.size == len(r.buf) {
		evicted = r.buf[r.head]
		r.buf[r.head] = a
		r.head = r.slot(1)
		return evicted
	}
	r.buf[r.slot(r.size)] = a
	r.size++
	return nil
}

func (r *ring) pop() (*voxel.Action, bool) {
	if r.size == 0 {
		return nil, false
	}
	i := r.slot(r.size - 1)
	a := r.buf[i]
	r.buf[i] = nil
	r.size--
	return a, true
}

func (r *ring) clear() {
	clear(r.buf)
	r.head, r.size = 0, 0
}

// newestFirst копия содержимого от вершины ко дну
func (r *ring) newestFirst() []*voxel.Action {
	out := make([]*voxel.Action, 0, r.size)
	for i := r.size - 1; i >= 0; i-- {
		out = append(out, r.buf[r.slot(i)])
	}
	return out
}
