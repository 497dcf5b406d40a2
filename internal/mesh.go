package internal

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// The mesh is a doubly connected edge list stored in three arenas. Half-edges
// are allocated in twin pairs, so edge e and edge e^1 are always twins and the
// even one is canonical. Face slot 0 is the infinite face; its loop runs
// clockwise around the convex hull, keeping the exterior on the left of every
// hull edge.

const infiniteFace = 0

// Sentinels for missing indices.
const (
	noEdge   = -1
	noVertex = -1
	noFace   = -1
)

type halfEdge struct {
	origin int
	face   int
	next   int
	prev   int
}

type edgePair struct {
	half        [2]halfEdge
	constrained bool
}

type vertex struct {
	pos  r2.Point
	data interface{}
	// Any half-edge leaving this vertex, or noEdge while the vertex is not
	// part of any face.
	out int
}

type face struct {
	edge int
}

type mesh struct {
	vertices arena[vertex]
	edges    arena[edgePair]
	faces    arena[face]
}

func newMesh() mesh {
	var m mesh
	m.faces.alloc(face{edge: noEdge})
	return m
}

func twin(e int) int {
	return e ^ 1
}

func canonical(e int) int {
	return e &^ 1
}

func (m *mesh) half(e int) *halfEdge {
	return &m.edges.get(e >> 1).half[e&1]
}

func (m *mesh) org(e int) int {
	return m.half(e).origin
}

func (m *mesh) dest(e int) int {
	return m.half(twin(e)).origin
}

func (m *mesh) next(e int) int {
	return m.half(e).next
}

func (m *mesh) prev(e int) int {
	return m.half(e).prev
}

func (m *mesh) face(e int) int {
	return m.half(e).face
}

func (m *mesh) pos(v int) r2.Point {
	return m.vertices.get(v).pos
}

func (m *mesh) isConstrained(e int) bool {
	return m.edges.get(e >> 1).constrained
}

func (m *mesh) setConstrained(e int, constrained bool) {
	m.edges.get(e >> 1).constrained = constrained
}

func (m *mesh) edgeAlive(e int) bool {
	return e >= 0 && m.edges.isAlive(e>>1)
}

// The next half-edge counterclockwise around the origin of e.
func (m *mesh) ccw(e int) int {
	return twin(m.prev(e))
}

// The next half-edge clockwise around the origin of e.
func (m *mesh) cw(e int) int {
	return m.next(twin(e))
}

func (m *mesh) link(a, b int) {
	m.half(a).next = b
	m.half(b).prev = a
}

func (m *mesh) newPair(a, b int) int {
	i := m.edges.alloc(edgePair{half: [2]halfEdge{
		{origin: a, face: noFace, next: noEdge, prev: noEdge},
		{origin: b, face: noFace, next: noEdge, prev: noEdge},
	}})
	return i << 1
}

func (m *mesh) setLoopFace(start, f int) {
	e := start
	for steps := 0; ; steps++ {
		if steps > m.edges.cap()*2 {
			fatalf("face loop starting at edge %d does not close", start)
		}
		m.half(e).face = f
		e = m.next(e)
		if e == start {
			return
		}
	}
}

// The half-edges leaving v, in counterclockwise order.
func (m *mesh) outEdges(v int) []int {
	start := m.vertices.get(v).out
	if start == noEdge {
		return nil
	}
	var result []int
	e := start
	for {
		result = append(result, e)
		if len(result) > m.edges.cap()*2 {
			fatalf("edges around vertex %d do not close", v)
		}
		e = m.ccw(e)
		if e == start {
			return result
		}
	}
}

func (m *mesh) faceEdges(f int) []int {
	start := m.faces.get(f).edge
	if start == noEdge {
		return nil
	}
	var result []int
	e := start
	for {
		result = append(result, e)
		if len(result) > m.edges.cap()*2 {
			fatalf("loop of face %d does not close", f)
		}
		e = m.next(e)
		if e == start {
			return result
		}
	}
}

// The three vertices of a finite face, counterclockwise.
func (m *mesh) triangle(f int) (a, b, c int) {
	e := m.faces.get(f).edge
	return m.org(e), m.org(m.next(e)), m.org(m.prev(e))
}

// Half-edge from a to b, or noEdge.
func (m *mesh) findEdge(a, b int) int {
	for _, e := range m.outEdges(a) {
		if m.dest(e) == b {
			return e
		}
	}
	return noEdge
}

func (m *mesh) isHullVertex(v int) bool {
	for _, e := range m.outEdges(v) {
		if m.face(e) == infiniteFace {
			return true
		}
	}
	return false
}

// A finite face incident to v, or the infinite face if v is isolated.
func (m *mesh) faceAround(v int) int {
	for _, e := range m.outEdges(v) {
		if f := m.face(e); f != infiniteFace {
			return f
		}
	}
	return infiniteFace
}

// Builds the first triangle from three isolated vertices given
// counterclockwise.
func (m *mesh) createTriangle(a, b, c int) int {
	e0 := m.newPair(a, b)
	e1 := m.newPair(b, c)
	e2 := m.newPair(c, a)
	f := m.faces.alloc(face{edge: e0})

	m.link(e0, e1)
	m.link(e1, e2)
	m.link(e2, e0)
	m.link(twin(e2), twin(e1))
	m.link(twin(e1), twin(e0))
	m.link(twin(e0), twin(e2))
	for _, e := range []int{e0, e1, e2} {
		m.half(e).face = f
		m.half(twin(e)).face = infiniteFace
	}
	m.faces.get(infiniteFace).edge = twin(e0)

	m.vertices.get(a).out = e0
	m.vertices.get(b).out = e1
	m.vertices.get(c).out = e2
	return f
}

// Hangs the isolated vertex v off the destination of prev, inside the face of
// prev. Returns the new half-edge pointing at v.
func (m *mesh) attachVertex(prev, v int) int {
	f := m.face(prev)
	e := m.newPair(m.dest(prev), v)
	t := twin(e)
	after := m.next(prev)
	m.link(prev, e)
	m.link(e, t)
	m.link(t, after)
	m.half(e).face = f
	m.half(t).face = f
	m.vertices.get(v).out = t
	return e
}

// Splits the face containing prev and next with a new edge from dest(prev) to
// org(next). The loop next ... prev gets a new face; the twin stays in the
// original face. Returns the new half-edge.
func (m *mesh) splitFace(prev, next int) int {
	f := m.face(prev)
	if m.face(next) != f {
		fatalf("cannot split face: edges %d and %d are in different faces", prev, next)
	}
	e := m.newPair(m.dest(prev), m.org(next))
	t := twin(e)
	prevNext := m.next(prev)
	nextPrev := m.prev(next)
	m.link(prev, e)
	m.link(e, next)
	m.link(nextPrev, t)
	m.link(t, prevNext)
	m.half(t).face = f
	m.faces.get(f).edge = t
	g := m.faces.alloc(face{edge: e})
	m.setLoopFace(e, g)
	return e
}

// Splits finite face f into three around v. Returns the three edges of the
// original triangle, which are the ones that may need legalizing.
func (m *mesh) splitTriangle(f, v int) [3]int {
	e0 := m.faces.get(f).edge
	e1 := m.next(e0)
	e2 := m.prev(e0)
	toV := m.attachVertex(e0, v)
	m.splitFace(toV, e0)
	m.splitFace(e1, twin(toV))
	return [3]int{e0, e1, e2}
}

// Splits edge e at v, which must lie on it. The new half of the edge inherits
// the constrained flag. Each finite face beside the edge is split in two.
// Returns the edges of the surrounding quadrilateral.
func (m *mesh) splitEdge(e, v int) []int {
	t := twin(e)
	b := m.dest(e)
	f, g := m.face(e), m.face(t)
	en := m.next(e)
	tp := m.prev(t)

	n := m.newPair(v, b)
	nt := twin(n)
	m.setConstrained(n, m.isConstrained(e))
	m.half(t).origin = v
	m.link(e, n)
	m.link(n, en)
	m.half(n).face = f
	m.link(tp, nt)
	m.link(nt, t)
	m.half(nt).face = g
	m.vertices.get(v).out = n
	if m.vertices.get(b).out == t {
		m.vertices.get(b).out = nt
	}

	var outer []int
	if f != infiniteFace {
		ep := m.prev(e)
		m.splitFace(en, n)
		outer = append(outer, en, ep)
	}
	if g != infiniteFace {
		tn := m.next(t)
		m.splitFace(tn, t)
		outer = append(outer, tn, tp)
	}
	return outer
}

// Replaces the diagonal e of the quadrilateral formed by its two faces with
// the other diagonal. Both faces must be finite; the caller checks convexity.
func (m *mesh) flip(e int) {
	t := twin(e)
	en, ep := m.next(e), m.prev(e)
	tn, tp := m.next(t), m.prev(t)
	a, b := m.org(e), m.org(t)
	c, d := m.org(ep), m.org(tp)
	f, g := m.face(e), m.face(t)

	m.half(e).origin = d
	m.half(t).origin = c
	m.link(e, ep)
	m.link(ep, tn)
	m.link(tn, e)
	m.link(t, tp)
	m.link(tp, en)
	m.link(en, t)
	m.half(tn).face = f
	m.half(en).face = g

	m.vertices.get(a).out = tn
	m.vertices.get(b).out = en
	m.faces.get(f).edge = e
	m.faces.get(g).edge = t
}

// What is left after a vertex star is deleted. For an interior vertex the
// links form the loop of the finite hole face. For a hull vertex the links are
// spliced into the infinite face, running from first to last.
type hole struct {
	face  int
	links []int
}

func (h hole) onHull() bool {
	return h.face == infiniteFace
}

// Deletes every edge incident to v and merges its faces into one. The vertex
// record itself is left for the caller to release. v must have at least two
// neighbors.
func (m *mesh) removeVertexStar(v int) hole {
	spokes := m.outEdges(v)
	k := len(spokes)
	if k < 2 {
		fatalf("cannot remove star of vertex %d with %d spokes", v, k)
	}
	hull := -1
	for i, s := range spokes {
		if m.face(s) == infiniteFace {
			hull = i
		}
	}

	links := make([]int, 0, k)
	var h hole
	if hull < 0 {
		for _, s := range spokes {
			links = append(links, m.next(s))
		}
		hf := m.face(spokes[0])
		for i, l := range links {
			m.link(l, links[(i+1)%k])
			m.half(l).face = hf
			m.vertices.get(m.org(l)).out = l
		}
		m.faces.get(hf).edge = links[0]
		for _, s := range spokes[1:] {
			m.faces.release(m.face(s))
		}
		h = hole{face: hf, links: links}
	} else {
		before := m.prev(m.prev(spokes[hull]))
		after := m.next(spokes[hull])
		for step := 1; step < k; step++ {
			links = append(links, m.next(spokes[(hull+step)%k]))
		}
		last := before
		for _, l := range links {
			m.link(last, l)
			m.half(l).face = infiniteFace
			m.vertices.get(m.org(l)).out = l
			last = l
		}
		m.link(last, after)
		m.vertices.get(m.org(after)).out = after
		m.faces.get(infiniteFace).edge = after
		for i, s := range spokes {
			if i != hull {
				m.faces.release(m.face(s))
			}
		}
		h = hole{face: infiniteFace, links: links}
	}

	for _, s := range spokes {
		m.edges.release(s >> 1)
	}
	m.vertices.get(v).out = noEdge
	return h
}

// Drops every edge and finite face, leaving all vertices isolated.
func (m *mesh) clearTopology() {
	for i := 0; i < m.edges.cap(); i++ {
		if m.edges.isAlive(i) {
			m.edges.release(i)
		}
	}
	for i := 1; i < m.faces.cap(); i++ {
		if m.faces.isAlive(i) {
			m.faces.release(i)
		}
	}
	m.faces.get(infiniteFace).edge = noEdge
	for i := 0; i < m.vertices.cap(); i++ {
		if m.vertices.isAlive(i) {
			m.vertices.get(i).out = noEdge
		}
	}
}

// Checks the structural invariants of the edge list. Geometry is not checked
// here.
func (m *mesh) sanityCheck() error {
	for i := 0; i < m.edges.cap(); i++ {
		if !m.edges.isAlive(i) {
			continue
		}
		for _, e := range []int{i << 1, i<<1 | 1} {
			h := m.half(e)
			if !m.edgeAlive(h.next) || !m.edgeAlive(h.prev) {
				return errors.Errorf("edge %d links to a released edge", e)
			}
			if m.prev(h.next) != e || m.next(h.prev) != e {
				return errors.Errorf("edge %d: next/prev links are not symmetric", e)
			}
			if m.org(h.next) != m.dest(e) {
				return errors.Errorf("edge %d: next edge does not start at its destination", e)
			}
			if m.face(h.next) != h.face {
				return errors.Errorf("edge %d: next edge is in face %d, not %d", e, m.face(h.next), h.face)
			}
			if !m.faces.isAlive(h.face) {
				return errors.Errorf("edge %d is in released face %d", e, h.face)
			}
			if !m.vertices.isAlive(h.origin) {
				return errors.Errorf("edge %d starts at released vertex %d", e, h.origin)
			}
			if h.origin == m.dest(e) {
				return errors.Errorf("edge %d is a loop", e)
			}
		}
	}
	for f := 1; f < m.faces.cap(); f++ {
		if !m.faces.isAlive(f) {
			continue
		}
		edges := m.faceEdges(f)
		if len(edges) != 3 {
			return errors.Errorf("face %d has %d edges", f, len(edges))
		}
		for _, e := range edges {
			if m.face(e) != f {
				return errors.Errorf("face %d: edge %d belongs to face %d", f, e, m.face(e))
			}
		}
	}
	for _, e := range m.faceEdges(infiniteFace) {
		if m.face(e) != infiniteFace {
			return errors.Errorf("hull edge %d belongs to face %d", e, m.face(e))
		}
	}
	for v := 0; v < m.vertices.cap(); v++ {
		if !m.vertices.isAlive(v) {
			continue
		}
		out := m.vertices.get(v).out
		if out == noEdge {
			continue
		}
		if !m.edgeAlive(out) || m.org(out) != v {
			return errors.Errorf("vertex %d has a bad outgoing edge %d", v, out)
		}
	}
	return nil
}
