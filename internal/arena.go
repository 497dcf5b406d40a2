package internal

// An arena stores mesh records by index. Released slots go on a free list and
// get their generation bumped, so a handle taken before the release no longer
// validates even after the slot is reused.
type arena[T any] struct {
	items []T
	gens  []uint32
	alive []bool
	free  []int
	count int
}

func (a *arena[T]) alloc(item T) int {
	var i int
	if n := len(a.free); n > 0 {
		i = a.free[n-1]
		a.free = a.free[:n-1]
		a.items[i] = item
	} else {
		i = len(a.items)
		a.items = append(a.items, item)
		a.gens = append(a.gens, 0)
		a.alive = append(a.alive, false)
	}
	a.alive[i] = true
	a.count++
	return i
}

func (a *arena[T]) release(i int) {
	if !a.alive[i] {
		fatalf("double release of arena slot %d", i)
	}
	var zero T
	a.items[i] = zero
	a.alive[i] = false
	a.gens[i]++
	a.free = append(a.free, i)
	a.count--
}

func (a *arena[T]) get(i int) *T {
	return &a.items[i]
}

func (a *arena[T]) isAlive(i int) bool {
	return i >= 0 && i < len(a.items) && a.alive[i]
}

func (a *arena[T]) valid(i int, gen uint32) bool {
	return a.isAlive(i) && a.gens[i] == gen
}

func (a *arena[T]) gen(i int) uint32 {
	return a.gens[i]
}

// Number of live slots.
func (a *arena[T]) len() int {
	return a.count
}

// Upper bound (exclusive) of slot indices, live or not.
func (a *arena[T]) cap() int {
	return len(a.items)
}

// Places an item at a specific slot with a specific generation. Used when
// rebuilding from a snapshot; the free list must be rebuilt afterwards with
// rebuildFreeList.
func (a *arena[T]) restore(i int, gen uint32, item T) {
	for len(a.items) <= i {
		var zero T
		a.items = append(a.items, zero)
		a.gens = append(a.gens, 0)
		a.alive = append(a.alive, false)
	}
	if a.alive[i] {
		fatalf("arena slot %d restored twice", i)
	}
	a.items[i] = item
	a.gens[i] = gen
	a.alive[i] = true
	a.count++
}

// Sets the generation of a dead slot. Snapshots carry generations of freed
// vertex slots so stale handles stay stale across a round trip.
func (a *arena[T]) restoreDead(i int, gen uint32) {
	for len(a.items) <= i {
		var zero T
		a.items = append(a.items, zero)
		a.gens = append(a.gens, 0)
		a.alive = append(a.alive, false)
	}
	a.gens[i] = gen
}

func (a *arena[T]) rebuildFreeList() {
	a.free = a.free[:0]
	for i := len(a.items) - 1; i >= 0; i-- {
		if !a.alive[i] {
			a.free = append(a.free, i)
		}
	}
}
