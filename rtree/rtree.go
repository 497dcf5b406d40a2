// Package rtree is a small R-tree over points in the plane, keyed by integer
// ids. It answers nearest neighbor and rectangle queries and supports removal,
// so it can shadow a dynamic point set such as the vertices of a mesh.
//
// A Tree is not safe for concurrent mutation. Concurrent queries are fine as
// long as nothing mutates the tree meanwhile.
package rtree

import (
	"container/heap"
	"math"
	"sort"

	"github.com/golang/geo/r2"
)

const (
	maxEntries = 8
	minEntries = 3
)

type entry struct {
	rect  r2.Rect
	child *node
	id    uint64
}

type node struct {
	leaf    bool
	entries []entry
}

type Tree struct {
	root   *node
	points map[uint64]r2.Point
}

func New() *Tree {
	return &Tree{
		root:   &node{leaf: true},
		points: make(map[uint64]r2.Point),
	}
}

func (t *Tree) Len() int {
	return len(t.points)
}

// Bounding rectangle of every point in the tree. Empty when the tree is.
func (t *Tree) Bounds() r2.Rect {
	return t.root.bounds()
}

// Position stored for id.
func (t *Tree) Point(id uint64) (r2.Point, bool) {
	p, ok := t.points[id]
	return p, ok
}

// Adds a point under id. If the id is already present, its point is moved.
func (t *Tree) Insert(p r2.Point, id uint64) {
	if _, ok := t.points[id]; ok {
		t.Remove(id)
	}
	t.points[id] = p
	t.insertEntry(entry{rect: r2.RectFromPoints(p), id: id})
}

func (t *Tree) insertEntry(e entry) {
	if split := t.insert(t.root, e); split != nil {
		old := t.root
		t.root = &node{entries: []entry{
			{rect: old.bounds(), child: old},
			{rect: split.bounds(), child: split},
		}}
	}
}

func (t *Tree) insert(n *node, e entry) *node {
	if n.leaf {
		n.entries = append(n.entries, e)
	} else {
		i := chooseSubtree(n, e.rect)
		child := n.entries[i].child
		split := t.insert(child, e)
		n.entries[i].rect = child.bounds()
		if split != nil {
			n.entries = append(n.entries, entry{rect: split.bounds(), child: split})
		}
	}
	if len(n.entries) > maxEntries {
		return n.split()
	}
	return nil
}

// Picks the child needing the least enlargement, breaking ties by area.
func chooseSubtree(n *node, r r2.Rect) int {
	best := 0
	bestGrowth, bestArea := math.Inf(1), math.Inf(1)
	for i, e := range n.entries {
		a := area(e.rect)
		growth := area(e.rect.AddRect(r)) - a
		if growth < bestGrowth || (growth == bestGrowth && a < bestArea) {
			best, bestGrowth, bestArea = i, growth, a
		}
	}
	return best
}

// Sorts the entries along the axis where their centers spread the most and
// moves the upper half into a new sibling.
func (n *node) split() *node {
	centers := r2.EmptyRect()
	for _, e := range n.entries {
		centers = centers.AddPoint(e.rect.Center())
	}
	spread := centers.Size()
	byX := spread.X >= spread.Y
	sort.SliceStable(n.entries, func(i, j int) bool {
		ci, cj := n.entries[i].rect.Center(), n.entries[j].rect.Center()
		if byX {
			return ci.X < cj.X
		}
		return ci.Y < cj.Y
	})
	half := len(n.entries) / 2
	sibling := &node{leaf: n.leaf}
	sibling.entries = append(sibling.entries, n.entries[half:]...)
	n.entries = append([]entry(nil), n.entries[:half]...)
	return sibling
}

func (n *node) bounds() r2.Rect {
	r := r2.EmptyRect()
	for _, e := range n.entries {
		r = r.AddRect(e.rect)
	}
	return r
}

func area(r r2.Rect) float64 {
	if r.IsEmpty() {
		return 0
	}
	s := r.Size()
	return s.X * s.Y
}

// Removes id from the tree. Nodes left under-full are dissolved and their
// points reinserted.
func (t *Tree) Remove(id uint64) bool {
	p, ok := t.points[id]
	if !ok {
		return false
	}
	delete(t.points, id)

	var orphans []entry
	if !t.remove(t.root, id, p, &orphans) {
		// The map and the tree disagree, which means the tree is corrupt.
		panic("rtree: id present in index but not in tree")
	}
	for !t.root.leaf && len(t.root.entries) == 1 {
		t.root = t.root.entries[0].child
	}
	if !t.root.leaf && len(t.root.entries) == 0 {
		t.root = &node{leaf: true}
	}
	for _, e := range orphans {
		t.insertEntry(e)
	}
	return true
}

func (t *Tree) remove(n *node, id uint64, p r2.Point, orphans *[]entry) bool {
	if n.leaf {
		for i, e := range n.entries {
			if e.id == id {
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
				return true
			}
		}
		return false
	}
	for i := range n.entries {
		e := &n.entries[i]
		if !e.rect.ContainsPoint(p) {
			continue
		}
		if !t.remove(e.child, id, p, orphans) {
			continue
		}
		if len(e.child.entries) < minEntries {
			e.child.collect(orphans)
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
		} else {
			e.rect = e.child.bounds()
		}
		return true
	}
	return false
}

// Appends every leaf entry below n.
func (n *node) collect(out *[]entry) {
	if n.leaf {
		*out = append(*out, n.entries...)
		return
	}
	for _, e := range n.entries {
		e.child.collect(out)
	}
}

// Ids of every point inside r, boundary included.
func (t *Tree) InRect(r r2.Rect) []uint64 {
	var result []uint64
	var visit func(n *node)
	visit = func(n *node) {
		for _, e := range n.entries {
			if !e.rect.Intersects(r) {
				continue
			}
			if n.leaf {
				if r.ContainsPoint(e.rect.Lo()) {
					result = append(result, e.id)
				}
			} else {
				visit(e.child)
			}
		}
	}
	visit(t.root)
	return result
}

// The id whose point is closest to p.
func (t *Tree) Nearest(p r2.Point) (uint64, bool) {
	ids := t.NearestN(p, 1)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// Up to n ids ordered by increasing distance to p. Best-first search: nodes
// and points share one queue ordered by their distance to p.
func (t *Tree) NearestN(p r2.Point, n int) []uint64 {
	if n <= 0 || t.Len() == 0 {
		return nil
	}
	result := make([]uint64, 0, n)
	q := &queue{}
	heap.Push(q, candidate{dist: 0, node: t.root})
	for q.Len() > 0 && len(result) < n {
		c := heap.Pop(q).(candidate)
		if c.node == nil {
			result = append(result, c.id)
			continue
		}
		for _, e := range c.node.entries {
			d := rectDistance2(e.rect, p)
			if c.node.leaf {
				heap.Push(q, candidate{dist: d, id: e.id})
			} else {
				heap.Push(q, candidate{dist: d, node: e.child})
			}
		}
	}
	return result
}

func rectDistance2(r r2.Rect, p r2.Point) float64 {
	d := r.ClampPoint(p).Sub(p)
	return d.Dot(d)
}

type candidate struct {
	dist float64
	node *node
	id   uint64
}

type queue []candidate

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	// Points before nodes at equal distance, then by id, so ties resolve the
	// same way every time.
	if (q[i].node == nil) != (q[j].node == nil) {
		return q[i].node == nil
	}
	return q[i].id < q[j].id
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x interface{}) { *q = append(*q, x.(candidate)) }

func (q *queue) Pop() interface{} {
	old := *q
	c := old[len(old)-1]
	*q = old[:len(old)-1]
	return c
}
