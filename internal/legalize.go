package internal

import "github.com/golang/geo/r2"

// Flips edges off the stack until every edge it reached is locally Delaunay.
// Constrained edges and hull edges are never flipped.
func (t *Triangulation) legalize(stack *edgeStack) {
	limit := 64*t.edges.len() + 1024
	flips := 0
	for !stack.Empty() {
		e := canonical(stack.Pop())
		if !t.edgeAlive(e) || t.isConstrained(e) {
			continue
		}
		te := twin(e)
		if t.face(e) == infiniteFace || t.face(te) == infiniteFace {
			continue
		}
		en, ep := t.next(e), t.prev(e)
		tn, tp := t.next(te), t.prev(te)
		a, b := t.pos(t.org(e)), t.pos(t.org(te))
		c, d := t.pos(t.org(ep)), t.pos(t.org(tp))
		if !t.shouldFlip(a, b, c, d) {
			continue
		}
		if flips++; flips > limit {
			fatalf("legalization did not settle after %d flips", flips)
		}
		t.flip(e)
		stack.Push(en, ep, tn, tp)
	}
}

// Decides whether the diagonal a-b of the quadrilateral a, d, b, c should be
// replaced by c-d. a, b, c is the counterclockwise triangle on one side and d
// is the opposite vertex. When all four points are cocircular both diagonals
// are Delaunay; the one whose endpoint pair sorts first wins, so the result
// does not depend on insertion order.
func (t *Triangulation) shouldFlip(a, b, c, d r2.Point) bool {
	switch t.kernel.InCircle(a, b, c, d) {
	case Outside:
		return false
	case Inside:
		return t.flippable(a, b, c, d)
	}
	return t.flippable(a, b, c, d) && edgeKeyLess(c, d, a, b)
}

// Whether flipping a-b to c-d gives two counterclockwise triangles, that is,
// whether the quadrilateral is strictly convex.
func (t *Triangulation) flippable(a, b, c, d r2.Point) bool {
	return t.kernel.Orient(a, d, c) == CounterClockwise &&
		t.kernel.Orient(d, b, c) == CounterClockwise
}

// Compares undirected edges by their lexicographically sorted endpoints.
func edgeKeyLess(p1, p2, q1, q2 r2.Point) bool {
	if lexLess(p2, p1) {
		p1, p2 = p2, p1
	}
	if lexLess(q2, q1) {
		q1, q2 = q2, q1
	}
	if p1 != q1 {
		return lexLess(p1, q1)
	}
	return lexLess(p2, q2)
}
