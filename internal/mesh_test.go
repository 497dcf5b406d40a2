package internal

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaGenerations(t *testing.T) {
	var a arena[string]
	first := a.alloc("a")
	second := a.alloc("b")
	assert.Equal(t, 2, a.len())
	assert.True(t, a.valid(first, 0))

	a.release(first)
	assert.Equal(t, 1, a.len())
	assert.False(t, a.isAlive(first))
	assert.False(t, a.valid(first, 0))
	assert.Equal(t, uint32(1), a.gen(first))
	assert.Panics(t, func() { a.release(first) })

	reused := a.alloc("c")
	assert.Equal(t, first, reused)
	assert.True(t, a.valid(reused, 1))
	assert.False(t, a.valid(reused, 0))
	assert.Equal(t, "c", *a.get(reused))
	assert.Equal(t, "b", *a.get(second))
	assert.Equal(t, 2, a.cap())
	assert.False(t, a.isAlive(-1))
	assert.False(t, a.isAlive(7))
}

func TestArenaRestore(t *testing.T) {
	var a arena[int]
	a.restore(2, 5, 42)
	a.restoreDead(0, 3)
	a.rebuildFreeList()
	assert.Equal(t, 1, a.len())
	assert.Equal(t, 3, a.cap())
	assert.True(t, a.valid(2, 5))

	i := a.alloc(1)
	assert.Equal(t, 0, i)
	assert.True(t, a.valid(0, 3))
	assert.Equal(t, 1, a.alloc(2))
	assert.Equal(t, 3, a.alloc(3))
}

func meshWithVertices(points ...r2.Point) (mesh, []int) {
	m := newMesh()
	indices := make([]int, len(points))
	for i, p := range points {
		indices[i] = m.vertices.alloc(vertex{pos: p, out: noEdge})
	}
	return m, indices
}

func TestCreateAndSplitTriangle(t *testing.T) {
	m, v := meshWithVertices(
		r2.Point{X: 0, Y: 0}, r2.Point{X: 4, Y: 0}, r2.Point{X: 0, Y: 4}, r2.Point{X: 1, Y: 1})
	f := m.createTriangle(v[0], v[1], v[2])
	require.NoError(t, m.sanityCheck())
	assert.Equal(t, 2, m.faces.len())
	assert.Equal(t, 3, m.edges.len())
	assert.Len(t, m.faceEdges(infiniteFace), 3)
	for _, corner := range v[:3] {
		assert.True(t, m.isHullVertex(corner))
	}

	outer := m.splitTriangle(f, v[3])
	require.NoError(t, m.sanityCheck())
	assert.Equal(t, 4, m.faces.len())
	assert.Equal(t, 6, m.edges.len())
	assert.Len(t, m.outEdges(v[3]), 3)
	assert.False(t, m.isHullVertex(v[3]))
	for _, e := range outer {
		assert.NotEqual(t, v[3], m.org(e))
		assert.NotEqual(t, v[3], m.dest(e))
	}

	h := m.removeVertexStar(v[3])
	require.NoError(t, m.sanityCheck())
	assert.False(t, h.onHull())
	assert.Len(t, h.links, 3)
	assert.Equal(t, 2, m.faces.len())
	assert.Equal(t, 3, m.edges.len())
	m.vertices.release(v[3])

	m.clearTopology()
	require.NoError(t, m.sanityCheck())
	assert.Zero(t, m.edges.len())
	assert.Equal(t, 1, m.faces.len())
	assert.Nil(t, m.outEdges(v[0]))
}

func TestSplitHullEdge(t *testing.T) {
	m, v := meshWithVertices(
		r2.Point{X: 0, Y: 0}, r2.Point{X: 2, Y: 0}, r2.Point{X: 0, Y: 2}, r2.Point{X: 1, Y: 0})
	m.createTriangle(v[0], v[1], v[2])
	e := m.findEdge(v[0], v[1])
	require.NotEqual(t, noEdge, e)
	m.setConstrained(e, true)

	outer := m.splitEdge(e, v[3])
	require.NoError(t, m.sanityCheck())
	// Only the finite side is split.
	assert.Len(t, outer, 2)
	assert.Equal(t, 3, m.faces.len())
	assert.Len(t, m.faceEdges(infiniteFace), 4)

	left, right := m.findEdge(v[0], v[3]), m.findEdge(v[3], v[1])
	require.NotEqual(t, noEdge, left)
	require.NotEqual(t, noEdge, right)
	assert.True(t, m.isConstrained(left))
	assert.True(t, m.isConstrained(right))
	assert.Equal(t, noEdge, m.findEdge(v[0], v[1]))
}

func TestFlipSquareDiagonal(t *testing.T) {
	tri := New()
	handles := insertAll(t, tri, []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}})
	v := make([]int, len(handles))
	for i, h := range handles {
		v[i], _ = tri.resolveVertex(h)
	}

	diagonal := tri.findEdge(v[0], v[2])
	require.NotEqual(t, noEdge, diagonal)
	tri.flip(diagonal)
	require.NoError(t, tri.SanityCheck())
	assert.Equal(t, noEdge, tri.findEdge(v[0], v[2]))
	assert.NotEqual(t, noEdge, tri.findEdge(v[1], v[3]))

	tri.flip(diagonal)
	require.NoError(t, tri.SanityCheck())
	assert.NotEqual(t, noEdge, tri.findEdge(v[0], v[2]))
	assert.Equal(t, noEdge, tri.findEdge(v[1], v[3]))
}

func TestEdgeStack(t *testing.T) {
	var s edgeStack
	assert.True(t, s.Empty())
	s.Push(1, 2, 3)
	assert.Equal(t, 3, s.Pop())
	assert.Equal(t, 2, s.Pop())
	assert.False(t, s.Empty())
	assert.Equal(t, 1, s.Pop())
	assert.True(t, s.Empty())

	assert.Equal(t, 2, CircularIndex(-1, 3))
	assert.Equal(t, 0, CircularIndex(3, 3))
}
