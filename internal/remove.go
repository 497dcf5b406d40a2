package internal

import (
	"github.com/pkg/errors"
)

// Removes a vertex and returns its payload. Constraints ending at the vertex
// go with it. Removing down to fewer than three vertices, or to a set that is
// all collinear, returns the triangulation to a degenerate state.
func (t *Triangulation) Remove(h VertexHandle) (data interface{}, err error) {
	defer recoverError(&err)
	v, ok := t.resolveVertex(h)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidHandle, "cannot remove vertex %v", h)
	}
	data = t.vertices.get(v).data

	switch {
	case t.state != Triangulated:
		t.removeLoose(v)
	case t.vertices.len() <= 3 || t.removalDegenerates(v):
		t.tearDown(v)
	default:
		t.removeFromMesh(v)
	}
	if t.index != nil {
		t.index.Remove(uint64(h))
	}
	return data, nil
}

func (t *Triangulation) removeLoose(v int) {
	for i, u := range t.loose {
		if u == v {
			t.loose = append(t.loose[:i], t.loose[i+1:]...)
			break
		}
	}
	t.vertices.release(v)
	t.updateLooseState()
}

// Whether removing the hull vertex v leaves only collinear points. If some
// face does not touch v, its corners survive and the answer is no. Otherwise
// every other vertex is a neighbor of v.
func (t *Triangulation) removalDegenerates(v int) bool {
	if !t.isHullVertex(v) {
		return false
	}
	out := t.outEdges(v)
	if t.NumFaces() > len(out)-1 {
		return false
	}
	first, last := t.pos(t.dest(out[0])), t.pos(t.dest(out[len(out)-1]))
	for _, e := range out[1 : len(out)-1] {
		if t.kernel.Orient(first, last, t.pos(t.dest(e))) != Collinear {
			return false
		}
	}
	return true
}

// Drops all topology and goes back to keeping a plain vertex list.
// Constraints between the surviving vertices are lost.
func (t *Triangulation) tearDown(v int) {
	t.clearTopology()
	t.vertices.release(v)
	t.constraints = 0
	t.loose = t.loose[:0]
	for u := 0; u < t.vertices.cap(); u++ {
		if t.vertices.isAlive(u) {
			t.loose = append(t.loose, u)
		}
	}
	t.state = Triangulated
	t.updateLooseState()
}

func (t *Triangulation) removeFromMesh(v int) {
	for _, e := range t.outEdges(v) {
		if t.isConstrained(e) {
			t.constraints--
		}
	}
	h := t.removeVertexStar(v)
	t.vertices.release(v)

	var diagonals []int
	if h.onHull() {
		diagonals = t.fillHullGap(h.links)
	} else {
		diagonals = t.fillHole(h.face)
	}
	t.logger.WithField("vertex", v).WithField("diagonals", len(diagonals)).Debug("removed vertex")

	var stack edgeStack
	stack.Push(h.links...)
	stack.Push(diagonals...)
	t.legalize(&stack)

	e := h.links[0]
	if t.face(e) == infiniteFace {
		e = twin(e)
	}
	t.locator.rememberFace(t.face(e))
}
