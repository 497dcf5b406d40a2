package internal

// Re-triangulation of the polygon left behind when a vertex star is deleted.
//
// An interior vertex leaves a star-shaped hole, which is filled by clipping
// ears. Among the ears, one whose circumcircle holds no other corner of the
// hole is preferred; such an ear always exists when the mesh around the hole
// was Delaunay, so in the unconstrained case the fill is already Delaunay and
// the legalization pass that follows has little to do.
//
// A hull vertex leaves a concave dent in the hull instead. That is closed by a
// Graham scan along the exposed chain: every left turn is cut off as a
// triangle, backing up one step after each cut.

// Fills the finite face f, which must be a simple polygon, with triangles.
// Returns the new diagonals.
func (t *Triangulation) fillHole(f int) []int {
	var diagonals []int
	for {
		edges := t.faceEdges(f)
		if len(edges) < 3 {
			fatalf("hole face %d has only %d edges", f, len(edges))
		}
		if len(edges) == 3 {
			return diagonals
		}
		e := edges[t.chooseEar(edges)]
		diagonals = append(diagonals, t.splitFace(t.next(e), e))
	}
}

// Index of the edge that starts the best ear of the loop.
func (t *Triangulation) chooseEar(edges []int) int {
	n := len(edges)
	corners := make([]int, n)
	for i, e := range edges {
		corners[i] = t.org(e)
	}
	fallback := -1
	for i := range edges {
		a := corners[i]
		b := corners[CircularIndex(i+1, n)]
		c := corners[CircularIndex(i+2, n)]
		pa, pb, pc := t.pos(a), t.pos(b), t.pos(c)
		if t.kernel.Orient(pa, pb, pc) != CounterClockwise {
			continue
		}
		ear, delaunay := true, true
		for j := 3; j < n; j++ {
			q := t.pos(corners[CircularIndex(i+j, n)])
			if t.kernel.Orient(pa, pb, q) != Clockwise &&
				t.kernel.Orient(pb, pc, q) != Clockwise &&
				t.kernel.Orient(pc, pa, q) != Clockwise {
				ear = false
				break
			}
			if t.kernel.InCircle(pa, pb, pc, q) == Inside {
				delaunay = false
			}
		}
		if !ear {
			continue
		}
		if delaunay {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	if fallback < 0 {
		fatalf("polygon with %d corners has no ear", n)
	}
	return fallback
}

// Closes the dent left in the hull by removing a hull vertex. chain holds the
// exposed edges in order along the infinite face. Returns the new diagonals.
func (t *Triangulation) fillHullGap(chain []int) []int {
	first := t.org(chain[0])
	last := t.dest(chain[len(chain)-1])
	var diagonals []int
	e := chain[0]
	for steps := 0; t.dest(e) != last; steps++ {
		if steps > 4*len(chain)*len(chain)+16 {
			fatalf("hull repair did not finish")
		}
		n := t.next(e)
		a, b, c := t.org(e), t.dest(e), t.dest(n)
		if t.kernel.Orient(t.pos(a), t.pos(b), t.pos(c)) != CounterClockwise {
			e = n
			continue
		}
		d := t.splitFace(n, e)
		diagonals = append(diagonals, d)
		if a == first {
			e = twin(d)
		} else {
			e = t.prev(twin(d))
		}
	}
	return diagonals
}
