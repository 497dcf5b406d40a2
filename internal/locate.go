package internal

import (
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

type LocationKind int

const (
	OnFace LocationKind = iota
	OnEdge
	OnVertex
	OutsideHull
)

func (k LocationKind) String() string {
	switch k {
	case OnFace:
		return "OnFace"
	case OnEdge:
		return "OnEdge"
	case OnVertex:
		return "OnVertex"
	}
	return "OutsideHull"
}

// Where a query point sits in the mesh.
//
// Face is the containing face for OnFace, the face on the finite side of Edge
// for OnEdge, and the infinite face for OutsideHull. Edge is set for OnEdge and,
// once the mesh has faces, for OutsideHull, where it is a hull edge (finite
// side) that the point lies strictly to the right of. Vertex is set for
// OnVertex.
type Location struct {
	Kind        LocationKind
	Face        FaceHandle
	Edge        EdgeHandle
	Vertex      VertexHandle
	Constrained bool
}

type location struct {
	kind   LocationKind
	face   int
	edge   int
	vertex int
}

// A Locator answers point queries and remembers where the last one ended, so
// that a run of nearby queries walks only a short distance each. Locators are
// not safe for concurrent use; give each goroutine its own.
type Locator struct {
	t    *Triangulation
	hint int
	gen  uint32
	rng  *rand.Rand
}

func (t *Triangulation) NewLocator() *Locator {
	return &Locator{
		t:    t,
		hint: noFace,
		rng:  rand.New(rand.NewSource(t.seed)),
	}
}

func (l *Locator) Locate(p r2.Point) (result Location, err error) {
	defer recoverError(&err)
	if !finite(p) {
		return Location{}, errors.Wrapf(ErrDegenerateInput, "point %v", p)
	}
	return l.t.publicLocation(l.locate(p)), nil
}

// Turns an internal mesh error raised by a query into a miss.
func (l *Locator) recoverMiss(ok *bool) {
	if err := HandlePanicRecover(recover()); err != nil {
		l.t.logger.WithError(err).Error("query failed")
		*ok = false
	}
}

// Locate with the triangulation's own locator.
func (t *Triangulation) Locate(p r2.Point) (Location, error) {
	return t.locator.Locate(p)
}

func (t *Triangulation) publicLocation(loc location) Location {
	result := Location{Kind: loc.kind, Face: t.faceHandle(loc.face)}
	if loc.edge != noEdge {
		result.Edge = t.edgeHandle(loc.edge)
		result.Constrained = t.isConstrained(loc.edge)
	}
	if loc.vertex != noVertex {
		result.Vertex = t.vertexHandle(loc.vertex)
	}
	return result
}

func (l *Locator) locate(p r2.Point) location {
	t := l.t
	if t.state != Triangulated {
		return t.locateLoose(p)
	}
	loc := t.walk(l.startFace(p), p, l.rng)
	l.remember(loc)
	return loc
}

func (l *Locator) startFace(p r2.Point) int {
	t := l.t
	if t.index != nil {
		if id, ok := t.index.Nearest(p); ok {
			if v, ok := t.resolveVertex(VertexHandle(id)); ok {
				if f := t.faceAround(v); f != infiniteFace {
					return f
				}
			}
		}
	}
	if l.hint != noFace && l.hint != infiniteFace && t.faces.valid(l.hint, l.gen) {
		return l.hint
	}
	return t.anyFace()
}

func (l *Locator) remember(loc location) {
	f := loc.face
	if f == infiniteFace && loc.edge != noEdge {
		f = l.t.face(loc.edge)
	}
	if loc.kind == OnVertex {
		f = l.t.faceAround(loc.vertex)
	}
	if f != infiniteFace {
		l.rememberFace(f)
	}
}

func (l *Locator) rememberFace(f int) {
	l.hint = f
	l.gen = l.t.faces.gen(f)
}

func (t *Triangulation) anyFace() int {
	for f := 1; f < t.faces.cap(); f++ {
		if t.faces.isAlive(f) {
			return f
		}
	}
	fatalf("triangulated mesh has no finite face")
	return infiniteFace
}

// Without faces a point is either one of the vertices or outside everything.
func (t *Triangulation) locateLoose(p r2.Point) location {
	for _, v := range t.loose {
		if t.pos(v) == p {
			return location{kind: OnVertex, face: infiniteFace, edge: noEdge, vertex: v}
		}
	}
	return location{kind: OutsideHull, face: infiniteFace, edge: noEdge, vertex: noVertex}
}

// Visibility walk. At each face the edges are tried in a random rotation and
// the walk crosses the first one that has p strictly on its far side. The
// randomness keeps the walk from cycling. If the walk runs past its step budget
// the faces are scanned instead.
func (t *Triangulation) walk(f int, p r2.Point, rng *rand.Rand) location {
	budget := 4*t.faces.len() + 64
	for step := 0; step < budget; step++ {
		e0 := t.faces.get(f).edge
		edges := [3]int{e0, t.next(e0), t.prev(e0)}
		var orientations [3]Orientation
		offset := rng.Intn(3)
		crossed := false
		for i := 0; i < 3; i++ {
			j := (i + offset) % 3
			e := edges[j]
			o := t.kernel.Orient(t.pos(t.org(e)), t.pos(t.dest(e)), p)
			orientations[j] = o
			if o == Clockwise {
				g := t.face(twin(e))
				if g == infiniteFace {
					return location{kind: OutsideHull, face: infiniteFace, edge: e, vertex: noVertex}
				}
				f = g
				crossed = true
				break
			}
		}
		if !crossed {
			return t.classify(f, edges, orientations)
		}
	}
	return t.locateByScan(p)
}

// Turns the three orientations of a point that is not outside any edge of face
// f into a location: no collinear edge means inside, one means on that edge,
// two means on their shared vertex.
func (t *Triangulation) classify(f int, edges [3]int, orientations [3]Orientation) location {
	var collinear []int
	for i, o := range orientations {
		if o == Collinear {
			collinear = append(collinear, i)
		}
	}
	switch len(collinear) {
	case 0:
		return location{kind: OnFace, face: f, edge: noEdge, vertex: noVertex}
	case 1:
		return location{kind: OnEdge, face: f, edge: edges[collinear[0]], vertex: noVertex}
	case 2:
		first, second := edges[collinear[0]], edges[collinear[1]]
		shared := t.dest(first)
		if t.next(first) != second {
			shared = t.dest(second)
		}
		return location{kind: OnVertex, face: f, edge: noEdge, vertex: shared}
	}
	fatalf("face %d is degenerate", f)
	return location{}
}

func (t *Triangulation) locateByScan(p r2.Point) location {
	t.logger.WithField("point", p).Debug("walk exceeded its budget, scanning faces")
	for f := 1; f < t.faces.cap(); f++ {
		if !t.faces.isAlive(f) {
			continue
		}
		e0 := t.faces.get(f).edge
		edges := [3]int{e0, t.next(e0), t.prev(e0)}
		var orientations [3]Orientation
		inside := true
		for i, e := range edges {
			orientations[i] = t.kernel.Orient(t.pos(t.org(e)), t.pos(t.dest(e)), p)
			if orientations[i] == Clockwise {
				inside = false
				break
			}
		}
		if inside {
			return t.classify(f, edges, orientations)
		}
	}
	for _, h := range t.faceEdges(infiniteFace) {
		e := twin(h)
		if t.kernel.Orient(t.pos(t.org(e)), t.pos(t.dest(e)), p) == Clockwise {
			return location{kind: OutsideHull, face: infiniteFace, edge: e, vertex: noVertex}
		}
	}
	fatalf("point %v is in no face and outside no hull edge", p)
	return location{}
}
