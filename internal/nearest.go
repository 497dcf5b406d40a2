package internal

import "github.com/golang/geo/r2"

// The vertex closest to p. Reports false for an empty triangulation.
func (t *Triangulation) NearestNeighbor(p r2.Point) (VertexHandle, bool) {
	return t.locator.NearestNeighbor(p)
}

// With a tree locator the R-tree answers directly. Otherwise, on a Delaunay
// mesh, a greedy descent from the located face ends at the nearest vertex.
// Constraints break that guarantee, so constrained and degenerate meshes are
// scanned.
func (l *Locator) NearestNeighbor(p r2.Point) (h VertexHandle, ok bool) {
	defer l.recoverMiss(&ok)
	t := l.t
	if t.vertices.len() == 0 || !finite(p) {
		return 0, false
	}
	if t.index != nil {
		id, ok := t.index.Nearest(p)
		return VertexHandle(id), ok
	}
	if t.state != Triangulated || t.constraints > 0 {
		return t.vertexHandle(t.nearestByScan(p)), true
	}

	loc := l.locate(p)
	var v int
	switch loc.kind {
	case OnVertex:
		return t.vertexHandle(loc.vertex), true
	case OnFace:
		v, _, _ = t.triangle(loc.face)
	default:
		v = t.org(loc.edge)
	}
	return t.vertexHandle(t.descend(v, p)), true
}

func (t *Triangulation) descend(v int, p r2.Point) int {
	best := t.kernel.Distance2(t.pos(v), p)
	for {
		next := v
		for _, e := range t.outEdges(v) {
			u := t.dest(e)
			if d := t.kernel.Distance2(t.pos(u), p); d < best {
				next, best = u, d
			}
		}
		if next == v {
			return v
		}
		v = next
	}
}

func (t *Triangulation) nearestByScan(p r2.Point) int {
	nearest := noVertex
	best := 0.0
	for v := 0; v < t.vertices.cap(); v++ {
		if !t.vertices.isAlive(v) {
			continue
		}
		if d := t.kernel.Distance2(t.pos(v), p); nearest == noVertex || d < best {
			nearest, best = v, d
		}
	}
	return nearest
}
