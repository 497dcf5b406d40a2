package internal

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// A piece of a requested constraint between two vertices with no vertex in
// between, and the edges it currently crosses.
type constraintPiece struct {
	from, to int
	crossed  []int
}

// Makes the segment between two vertices an edge of the mesh and marks it
// constrained. Vertices lying exactly on the segment split it into several
// constrained edges. Fails with a *ConstraintConflictError, before touching
// the mesh, if the segment crosses an existing constraint.
func (t *Triangulation) AddConstraint(from, to VertexHandle) (err error) {
	defer recoverError(&err)
	v0, ok := t.resolveVertex(from)
	if !ok {
		return errors.Wrapf(ErrInvalidHandle, "constraint start %v", from)
	}
	v1, ok := t.resolveVertex(to)
	if !ok {
		return errors.Wrapf(ErrInvalidHandle, "constraint end %v", to)
	}
	if v0 == v1 {
		return errors.Wrapf(ErrDegenerateInput, "constraint %v-%v has no length", from, to)
	}
	if t.state != Triangulated {
		return errors.Wrapf(ErrDegenerateInput, "cannot add constraint in state %v", t.state)
	}

	pieces := t.planConstraint(v0, v1)
	for _, piece := range pieces {
		for _, e := range piece.crossed {
			if t.isConstrained(e) {
				return &ConstraintConflictError{
					From:         from,
					To:           to,
					BlockingFrom: t.vertexHandle(t.org(e)),
					BlockingTo:   t.vertexHandle(t.dest(e)),
				}
			}
		}
	}
	for _, piece := range pieces {
		// Legalizing an earlier piece may have flipped edges this one crosses.
		t.realizeConstraint(t.tracePiece(piece.from, piece.to))
	}
	t.logger.WithField("from", from).WithField("to", to).WithField("pieces", len(pieces)).Debug("added constraint")
	return nil
}

// Inserts both points and constrains the segment between them.
func (t *Triangulation) InsertConstraint(p0, p1 r2.Point) (from, to VertexHandle, err error) {
	from, _, err = t.Insert(p0, nil)
	if err != nil {
		return 0, 0, err
	}
	to, _, err = t.Insert(p1, nil)
	if err != nil {
		return 0, 0, err
	}
	return from, to, t.AddConstraint(from, to)
}

// Clears the constraint flag of the edge between two vertices and restores
// the Delaunay property around it. Returns false if there was no such
// constraint.
func (t *Triangulation) RemoveConstraint(from, to VertexHandle) (removed bool, err error) {
	defer recoverError(&err)
	e, err := t.edgeBetween(from, to)
	if err != nil || e == noEdge || !t.isConstrained(e) {
		return false, err
	}
	t.setConstrained(e, false)
	t.constraints--
	stack := edgeStack{e}
	t.legalize(&stack)
	return true, nil
}

// Whether the edge between two vertices exists and is constrained.
func (t *Triangulation) IsConstraintEdge(from, to VertexHandle) (bool, error) {
	e, err := t.edgeBetween(from, to)
	if err != nil || e == noEdge {
		return false, err
	}
	return t.isConstrained(e), nil
}

func (t *Triangulation) edgeBetween(from, to VertexHandle) (int, error) {
	v0, ok := t.resolveVertex(from)
	if !ok {
		return noEdge, errors.Wrapf(ErrInvalidHandle, "vertex %v", from)
	}
	v1, ok := t.resolveVertex(to)
	if !ok {
		return noEdge, errors.Wrapf(ErrInvalidHandle, "vertex %v", to)
	}
	return t.findEdge(v0, v1), nil
}

// Walks from v0 to v1 through the mesh without editing it.
func (t *Triangulation) planConstraint(v0, v1 int) []constraintPiece {
	var pieces []constraintPiece
	for s := v0; s != v1; {
		piece := t.tracePiece(s, v1)
		pieces = append(pieces, piece)
		s = piece.to
		if len(pieces) > t.vertices.len() {
			fatalf("constraint walk from %d to %d does not advance", v0, v1)
		}
	}
	return pieces
}

// Follows the segment from s toward target until it reaches target or another
// vertex on the segment, recording the edges it crosses on the way. Crossed
// edges are stored pointing from the right side of the segment to its left.
func (t *Triangulation) tracePiece(s, target int) constraintPiece {
	ps, q := t.pos(s), t.pos(target)
	if t.findEdge(s, target) != noEdge {
		return constraintPiece{from: s, to: target}
	}

	out := t.outEdges(s)
	for _, e := range out {
		u := t.dest(e)
		pu := t.pos(u)
		if t.kernel.Orient(ps, q, pu) == Collinear && pu.Sub(ps).Dot(q.Sub(ps)) > 0 {
			return constraintPiece{from: s, to: u}
		}
	}

	c := noEdge
	for _, e := range out {
		if t.face(e) == infiniteFace {
			continue
		}
		u, w := t.dest(e), t.dest(t.next(e))
		if t.kernel.Orient(ps, q, t.pos(u)) == Clockwise && t.kernel.Orient(ps, q, t.pos(w)) == CounterClockwise {
			c = t.next(e)
			break
		}
	}
	if c == noEdge {
		fatalf("no face around vertex %d faces toward vertex %d", s, target)
	}

	crossed := []int{c}
	for {
		if len(crossed) > t.edges.len() {
			fatalf("constraint walk from %d to %d does not terminate", s, target)
		}
		tc := twin(c)
		if t.face(tc) == infiniteFace {
			fatalf("constraint from %d to %d leaves the hull", s, target)
		}
		z := t.dest(t.next(tc))
		if z == target {
			return constraintPiece{from: s, to: target, crossed: crossed}
		}
		switch t.kernel.Orient(ps, q, t.pos(z)) {
		case Collinear:
			return constraintPiece{from: s, to: z, crossed: crossed}
		case CounterClockwise:
			c = t.next(tc)
		default:
			c = t.prev(tc)
		}
		crossed = append(crossed, c)
	}
}

// Flips the crossed edges out of the way (Sloan's method), marks the resulting
// edge constrained and legalizes the edges the flips created.
func (t *Triangulation) realizeConstraint(piece constraintPiece) {
	queue := append([]int(nil), piece.crossed...)
	var created edgeStack
	limit := 16*len(queue)*len(queue) + 64
	for iterations := 0; len(queue) > 0; iterations++ {
		if iterations > limit {
			fatalf("constraint %d-%d could not be realized", piece.from, piece.to)
		}
		e := queue[0]
		queue = queue[1:]
		te := twin(e)
		a, b := t.pos(t.org(e)), t.pos(t.org(te))
		c, d := t.pos(t.org(t.prev(e))), t.pos(t.org(t.prev(te)))
		if !t.flippable(a, b, c, d) {
			queue = append(queue, e)
			continue
		}
		t.flip(e)
		if t.crossesPiece(e, piece) {
			queue = append(queue, e)
		} else {
			created.Push(e)
		}
	}

	e := t.findEdge(piece.from, piece.to)
	if e == noEdge {
		fatalf("constraint %d-%d missing after flips", piece.from, piece.to)
	}
	if !t.isConstrained(e) {
		t.setConstrained(e, true)
		t.constraints++
	}
	t.legalize(&created)
}

func (t *Triangulation) crossesPiece(e int, piece constraintPiece) bool {
	u, w := t.org(e), t.dest(e)
	if u == piece.from || u == piece.to || w == piece.from || w == piece.to {
		return false
	}
	ps, pt := t.pos(piece.from), t.pos(piece.to)
	ou := t.kernel.Orient(ps, pt, t.pos(u))
	ow := t.kernel.Orient(ps, pt, t.pos(w))
	return ou != Collinear && ow != Collinear && ou != ow
}

// Inserts a chain of points and constrains each consecutive pair, closing the
// loop if asked. Returns the handles of the chain's points in order.
func (t *Triangulation) InsertPolyline(points []r2.Point, closed bool) ([]VertexHandle, error) {
	handles := make([]VertexHandle, len(points))
	for i, p := range points {
		h, _, err := t.Insert(p, nil)
		if err != nil {
			return nil, err
		}
		handles[i] = h
	}
	segments := len(handles) - 1
	if closed && len(handles) > 2 {
		segments++
	}
	for i := 0; i < segments; i++ {
		from, to := handles[i], handles[CircularIndex(i+1, len(handles))]
		if from == to {
			continue
		}
		if err := t.AddConstraint(from, to); err != nil {
			return nil, err
		}
	}
	return handles, nil
}
