package rtree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPoints(seed int64, n int) []r2.Point {
	rng := rand.New(rand.NewSource(seed))
	points := make([]r2.Point, n)
	for i := range points {
		points[i] = r2.Point{X: rng.Float64() * 100, Y: rng.Float64() * 100}
	}
	return points
}

func bruteNearest(points map[uint64]r2.Point, p r2.Point) float64 {
	best := -1.0
	for _, q := range points {
		d := q.Sub(p)
		if dist := d.Dot(d); best < 0 || dist < best {
			best = dist
		}
	}
	return best
}

func distance2(a, b r2.Point) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

func TestEmptyTree(t *testing.T) {
	tree := New()
	_, ok := tree.Nearest(r2.Point{X: 1, Y: 1})
	assert.False(t, ok)
	assert.Equal(t, 0, tree.Len())
	assert.True(t, tree.Bounds().IsEmpty())
	assert.False(t, tree.Remove(3))
}

func TestNearestMatchesBruteForce(t *testing.T) {
	tree := New()
	live := make(map[uint64]r2.Point)
	for i, p := range randomPoints(1, 500) {
		tree.Insert(p, uint64(i))
		live[uint64(i)] = p
	}
	require.Equal(t, 500, tree.Len())

	for _, q := range randomPoints(2, 200) {
		id, ok := tree.Nearest(q)
		require.True(t, ok)
		assert.InDelta(t, bruteNearest(live, q), distance2(live[id], q), 1e-12)
	}
}

func TestRemove(t *testing.T) {
	tree := New()
	live := make(map[uint64]r2.Point)
	for i, p := range randomPoints(3, 300) {
		tree.Insert(p, uint64(i))
		live[uint64(i)] = p
	}
	for i := uint64(0); i < 300; i += 2 {
		require.True(t, tree.Remove(i))
		delete(live, i)
	}
	assert.False(t, tree.Remove(0), "already removed")
	assert.Equal(t, len(live), tree.Len())

	for _, q := range randomPoints(4, 100) {
		id, ok := tree.Nearest(q)
		require.True(t, ok)
		_, present := live[id]
		require.True(t, present, "nearest returned removed id %d", id)
		assert.InDelta(t, bruteNearest(live, q), distance2(live[id], q), 1e-12)
	}

	for id := range live {
		require.True(t, tree.Remove(id))
	}
	assert.Equal(t, 0, tree.Len())
	_, ok := tree.Nearest(r2.Point{})
	assert.False(t, ok)
}

func TestInsertMovesExistingId(t *testing.T) {
	tree := New()
	tree.Insert(r2.Point{X: 0, Y: 0}, 7)
	tree.Insert(r2.Point{X: 5, Y: 5}, 7)
	assert.Equal(t, 1, tree.Len())
	p, ok := tree.Point(7)
	require.True(t, ok)
	assert.Equal(t, r2.Point{X: 5, Y: 5}, p)
	assert.Empty(t, tree.InRect(r2.RectFromPoints(r2.Point{X: -1, Y: -1}, r2.Point{X: 1, Y: 1})))
}

func TestNearestN(t *testing.T) {
	tree := New()
	points := randomPoints(5, 100)
	for i, p := range points {
		tree.Insert(p, uint64(i))
	}
	q := r2.Point{X: 50, Y: 50}
	ids := tree.NearestN(q, 10)
	require.Len(t, ids, 10)

	expected := make([]float64, len(points))
	for i, p := range points {
		expected[i] = distance2(p, q)
	}
	sort.Float64s(expected)
	for i, id := range ids {
		assert.InDelta(t, expected[i], distance2(points[id], q), 1e-12)
	}
	assert.Len(t, tree.NearestN(q, 1000), 100)
}

func TestInRect(t *testing.T) {
	tree := New()
	points := randomPoints(6, 400)
	for i, p := range points {
		tree.Insert(p, uint64(i))
	}
	r := r2.RectFromPoints(r2.Point{X: 20, Y: 30}, r2.Point{X: 60, Y: 45})
	got := tree.InRect(r)
	var want []uint64
	for i, p := range points {
		if r.ContainsPoint(p) {
			want = append(want, uint64(i))
		}
	}
	assert.ElementsMatch(t, want, got)

	bounds := tree.Bounds()
	for _, p := range points {
		assert.True(t, bounds.ContainsPoint(p))
	}
}
