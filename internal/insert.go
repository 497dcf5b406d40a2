package internal

import (
	"math/rand"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Inserts a point with a payload. Inserting at the position of an existing
// vertex changes nothing and returns that vertex with existed set; its payload
// is left alone.
func (t *Triangulation) Insert(p r2.Point, data interface{}) (h VertexHandle, existed bool, err error) {
	defer recoverError(&err)
	if !finite(p) {
		return 0, false, errors.Wrapf(ErrDegenerateInput, "cannot insert point %v", p)
	}
	if t.state != Triangulated {
		return t.insertLoose(p, data)
	}

	loc := t.locator.locate(p)
	if loc.kind == OnVertex {
		return t.vertexHandle(loc.vertex), true, nil
	}
	v := t.newVertex(p, data)
	t.insertAt(v, loc)
	return t.vertexHandle(v), false, nil
}

// Builds a triangulation from a point list. The points are inserted in a
// shuffled order, which keeps the expected cost low for sorted or clustered
// input. The returned handles line up with the input; duplicates share a
// handle.
func NewFromPoints(points []r2.Point, opts ...Option) (t *Triangulation, handles []VertexHandle, err error) {
	t = New(opts...)
	for i, p := range points {
		if !finite(p) {
			return nil, nil, errors.Wrapf(ErrDegenerateInput, "point %d is %v", i, p)
		}
	}
	order := rand.New(rand.NewSource(t.seed)).Perm(len(points))
	handles = make([]VertexHandle, len(points))
	for _, i := range order {
		h, _, err := t.Insert(points[i], nil)
		if err != nil {
			return nil, nil, err
		}
		handles[i] = h
	}
	t.logger.WithField("vertices", t.NumVertices()).Debug("bulk load finished")
	return t, handles, nil
}

func (t *Triangulation) newVertex(p r2.Point, data interface{}) int {
	v := t.vertices.alloc(vertex{pos: p, data: data, out: noEdge})
	if t.index != nil {
		t.index.Insert(p, uint64(t.vertexHandle(v)))
	}
	return v
}

// Links the isolated vertex v into the mesh at loc and restores the Delaunay
// property around it.
func (t *Triangulation) insertAt(v int, loc location) {
	var stack edgeStack
	switch loc.kind {
	case OnFace:
		edges := t.splitTriangle(loc.face, v)
		stack.Push(edges[:]...)
	case OnEdge:
		e := loc.edge
		if t.face(e) == infiniteFace {
			e = twin(e)
		}
		if t.isConstrained(e) {
			t.constraints++
			t.logger.WithField("vertex", v).Debug("splitting constrained edge")
		}
		stack.Push(t.splitEdge(e, v)...)
	case OutsideHull:
		stack.Push(t.extendHull(loc.edge, v)...)
	default:
		fatalf("cannot link vertex %d at a %v location", v, loc.kind)
	}
	t.legalize(&stack)
	if f := t.faceAround(v); f != infiniteFace {
		t.locator.rememberFace(f)
	}
}

// Connects v, which lies strictly right of the hull edge e (finite side), to
// every hull edge it can see. Returns the formerly hull edges, now interior.
func (t *Triangulation) extendHull(e, v int) []int {
	p := t.pos(v)
	covered := []int{e}
	h := twin(e)
	toV := t.attachVertex(h, v)
	fromV := t.splitFace(toV, h)

	// Forward along the infinite loop, which continues v->a, a->x.
	out := twin(toV)
	for {
		ax := t.next(out)
		a, x := t.org(ax), t.dest(ax)
		if x == v || t.kernel.Orient(t.pos(a), t.pos(x), p) != CounterClockwise {
			break
		}
		covered = append(covered, twin(ax))
		out = twin(t.splitFace(ax, out))
	}

	// Backward, where the loop reads z->b, b->v.
	in := twin(fromV)
	for {
		zb := t.prev(in)
		z, b := t.org(zb), t.dest(zb)
		if z == v || t.kernel.Orient(t.pos(z), t.pos(b), p) != CounterClockwise {
			break
		}
		covered = append(covered, twin(zb))
		in = twin(t.splitFace(in, zb))
	}
	return covered
}

// Handles insertion before the first triangle exists.
func (t *Triangulation) insertLoose(p r2.Point, data interface{}) (VertexHandle, bool, error) {
	if loc := t.locateLoose(p); loc.kind == OnVertex {
		return t.vertexHandle(loc.vertex), true, nil
	}
	if len(t.loose) >= 2 {
		lo, hi := t.looseExtremes()
		if t.kernel.Orient(t.pos(lo), t.pos(hi), p) != Collinear {
			run, err := t.looseRun(p, lo, hi)
			if err != nil {
				return 0, false, err
			}
			v := t.newVertex(p, data)
			t.triangulateLoose(v, run)
			return t.vertexHandle(v), false, nil
		}
	}
	v := t.newVertex(p, data)
	t.loose = append(t.loose, v)
	t.updateLooseState()
	return t.vertexHandle(v), false, nil
}

func (t *Triangulation) updateLooseState() {
	previous := t.state
	switch len(t.loose) {
	case 0:
		t.state = Empty
	case 1:
		t.state = SinglePoint
	default:
		t.state = Segment
	}
	if previous != t.state {
		t.logger.WithFields(logrus.Fields{
			"from": previous,
			"to":   t.state,
		}).Debug("state changed")
	}
}

// The two loose vertices furthest apart along the line they share.
func (t *Triangulation) looseExtremes() (lo, hi int) {
	origin := t.pos(t.loose[0])
	far := t.loose[1]
	for _, v := range t.loose[2:] {
		if t.kernel.Distance2(origin, t.pos(v)) > t.kernel.Distance2(origin, t.pos(far)) {
			far = v
		}
	}
	direction := t.pos(far).Sub(origin)
	lo, hi = t.loose[0], t.loose[0]
	loDot, hiDot := 0.0, 0.0
	for _, v := range t.loose {
		d := t.pos(v).Sub(origin).Dot(direction)
		if d < loDot {
			lo, loDot = v, d
		}
		if d > hiDot {
			hi, hiDot = v, d
		}
	}
	return lo, hi
}

// Orders the loose vertices from lo to hi and checks that p, the apex of the
// first triangles, sees every consecutive pair on the same side. The kernel
// may judge two vertices that were distinct along the line to coincide when
// seen from p, in which case p is rejected and nothing changes.
func (t *Triangulation) looseRun(p r2.Point, lo, hi int) ([]int, error) {
	origin := t.pos(lo)
	axis := t.pos(hi).Sub(origin)
	run := append([]int(nil), t.loose...)
	sort.SliceStable(run, func(i, j int) bool {
		return t.pos(run[i]).Sub(origin).Dot(axis) < t.pos(run[j]).Sub(origin).Dot(axis)
	})
	side := t.kernel.Orient(t.pos(lo), t.pos(hi), p)
	for i := 1; i < len(run); i++ {
		a, b := t.pos(run[i-1]), t.pos(run[i])
		if t.kernel.Orient(a, b, p) != side {
			return nil, errors.Wrapf(ErrDegenerateInput, "point %v does not separate collinear vertices %v and %v", p, a, b)
		}
	}
	return run, nil
}

// Builds the first triangle from v and the ends of the collinear run, then
// splits its base at the rest of the run, in order along the line.
func (t *Triangulation) triangulateLoose(v int, run []int) {
	lo, hi := run[0], run[len(run)-1]
	if t.kernel.Orient(t.pos(lo), t.pos(hi), t.pos(v)) == CounterClockwise {
		t.createTriangle(lo, hi, v)
	} else {
		t.createTriangle(hi, lo, v)
	}
	t.loose = nil
	t.state = Triangulated
	t.logger.WithField("vertices", len(run)+1).Debug("state changed to Triangulated")
	t.locator.rememberFace(t.faceAround(v))

	for i := 1; i < len(run)-1; i++ {
		base := t.findEdge(run[i-1], hi)
		if base == noEdge {
			fatalf("base edge %d-%d missing", run[i-1], hi)
		}
		t.insertAt(run[i], location{kind: OnEdge, face: t.face(base), edge: base, vertex: noVertex})
	}
}
