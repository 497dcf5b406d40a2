package internal

import (
	"math"

	"github.com/golang/geo/r2"
)

// Scattered data interpolation over the mesh. Every method reproduces linear
// functions exactly and reports false for points outside the convex hull.

// Value of the interpolated function at a vertex.
type ValueFunc func(Vertex) float64

// Gradient of the interpolated function at a vertex.
type GradientFunc func(Vertex) r2.Point

// A natural neighbor of a query point and its Sibson coordinate.
type NaturalNeighbor struct {
	Vertex VertexHandle
	Weight float64
}

// Linear interpolation inside the triangle containing p.
func (l *Locator) Barycentric(p r2.Point, f ValueFunc) (value float64, ok bool) {
	defer l.recoverMiss(&ok)
	if !finite(p) {
		return 0, false
	}
	t := l.t
	loc := l.locate(p)
	switch loc.kind {
	case OnVertex:
		return f(t.publicVertex(loc.vertex)), true
	case OnEdge:
		return t.interpolateOnEdge(loc.edge, p, f), true
	case OnFace:
		a, b, c := t.triangle(loc.face)
		pa, pb, pc := t.pos(a), t.pos(b), t.pos(c)
		area := triangleArea(pa, pb, pc)
		la := triangleArea(p, pb, pc) / area
		lb := triangleArea(pa, p, pc) / area
		lc := 1 - la - lb
		return la*f(t.publicVertex(a)) + lb*f(t.publicVertex(b)) + lc*f(t.publicVertex(c)), true
	}
	return 0, false
}

// Twice the signed area of a, b, c.
func triangleArea(a, b, c r2.Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

func (t *Triangulation) edgeParameter(e int, p r2.Point) float64 {
	a, b := t.pos(t.org(e)), t.pos(t.dest(e))
	ab := b.Sub(a)
	return p.Sub(a).Dot(ab) / ab.Dot(ab)
}

func (t *Triangulation) interpolateOnEdge(e int, p r2.Point, f ValueFunc) float64 {
	s := t.edgeParameter(e, p)
	return (1-s)*f(t.publicVertex(t.org(e))) + s*f(t.publicVertex(t.dest(e)))
}

// Sibson's natural neighbor coordinates of p: the share of p's Voronoi cell,
// were p inserted, taken from each existing cell. Points on a hull edge get
// linear coordinates along that edge, since their cell would be unbounded.
func (l *Locator) NaturalNeighbors(p r2.Point) (neighbors []NaturalNeighbor, ok bool) {
	defer l.recoverMiss(&ok)
	if !finite(p) {
		return nil, false
	}
	t := l.t
	loc := l.locate(p)
	switch loc.kind {
	case OnVertex:
		return []NaturalNeighbor{{Vertex: t.vertexHandle(loc.vertex), Weight: 1}}, true
	case OutsideHull:
		return nil, false
	case OnEdge:
		e := loc.edge
		if t.face(e) == infiniteFace || t.face(twin(e)) == infiniteFace {
			s := t.edgeParameter(e, p)
			return []NaturalNeighbor{
				{Vertex: t.vertexHandle(t.org(e)), Weight: 1 - s},
				{Vertex: t.vertexHandle(t.dest(e)), Weight: s},
			}, true
		}
	}

	start := loc.face
	if loc.kind == OnEdge {
		start = t.face(loc.edge)
	}
	boundary := t.insertionCavity(start, p)
	n := len(boundary)

	// Circumcenters of the triangles p would form with each boundary edge.
	fresh := make([]r2.Point, n)
	for i, e := range boundary {
		fresh[i] = circumcenter(t.pos(t.org(e)), t.pos(t.dest(e)), p)
	}

	areas := make([]float64, n)
	total := 0.0
	for i, e := range boundary {
		incoming := boundary[CircularIndex(i-1, n)]
		polygon := []r2.Point{fresh[i]}
		// Old Voronoi vertices around this neighbor that p takes over: the
		// circumcenters of the cavity faces between the outgoing boundary edge
		// and the reversed incoming one.
		for spoke, steps := e, 0; spoke != twin(incoming); spoke = t.ccw(spoke) {
			if steps++; steps > t.edges.len() {
				fatalf("cavity around vertex %d does not close", t.org(e))
			}
			a, b, c := t.triangle(t.face(spoke))
			polygon = append(polygon, circumcenter(t.pos(a), t.pos(b), t.pos(c)))
		}
		polygon = append(polygon, fresh[CircularIndex(i-1, n)])
		areas[i] = math.Abs(polygonArea(polygon))
		total += areas[i]
	}

	result := make([]NaturalNeighbor, 0, n)
	for i, e := range boundary {
		if areas[i] == 0 {
			continue
		}
		result = append(result, NaturalNeighbor{Vertex: t.vertexHandle(t.org(e)), Weight: areas[i] / total})
	}
	return result, true
}

// The boundary of the Bowyer-Watson cavity of p, the faces whose circumcircle
// strictly contains p, as a counterclockwise cycle of half-edges.
func (t *Triangulation) insertionCavity(start int, p r2.Point) []int {
	inCavity := map[int]bool{start: true}
	queue := []int{start}
	var boundary []int
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		for _, e := range t.faceEdges(f) {
			g := t.face(twin(e))
			if inCavity[g] {
				continue
			}
			if g != infiniteFace {
				a, b, c := t.triangle(g)
				if t.kernel.InCircle(t.pos(a), t.pos(b), t.pos(c), p) == Inside {
					inCavity[g] = true
					queue = append(queue, g)
					continue
				}
			}
			boundary = append(boundary, e)
		}
	}

	// A face may have been tested as a neighbor before it joined the cavity,
	// leaving an edge between two cavity faces in the list.
	leaving := make(map[int]int, len(boundary))
	first := noEdge
	for _, e := range boundary {
		if !inCavity[t.face(twin(e))] {
			leaving[t.org(e)] = e
			if first == noEdge {
				first = e
			}
		}
	}
	ordered := make([]int, 0, len(leaving))
	e := first
	for {
		ordered = append(ordered, e)
		if len(ordered) > len(leaving) {
			fatalf("cavity boundary does not close")
		}
		e = leaving[t.dest(e)]
		if e == first {
			return ordered
		}
	}
}

// Signed area by the shoelace formula.
func polygonArea(points []r2.Point) float64 {
	sum := 0.0
	for i, p := range points {
		sum += p.Cross(points[CircularIndex(i+1, len(points))])
	}
	return sum / 2
}

func (l *Locator) NaturalNeighbor(p r2.Point, f ValueFunc) (value float64, ok bool) {
	defer l.recoverMiss(&ok)
	neighbors, ok := l.NaturalNeighbors(p)
	if !ok {
		return 0, false
	}
	for _, n := range neighbors {
		v, _ := l.t.Vertex(n.Vertex)
		value += n.Weight * f(v)
	}
	return value, true
}

type weightedVertex struct {
	vertex Vertex
	weight float64
}

func (l *Locator) weightedNeighbors(p r2.Point) ([]weightedVertex, bool) {
	neighbors, ok := l.NaturalNeighbors(p)
	if !ok {
		return nil, false
	}
	result := make([]weightedVertex, len(neighbors))
	for i, n := range neighbors {
		v, _ := l.t.Vertex(n.Vertex)
		result[i] = weightedVertex{vertex: v, weight: n.Weight}
	}
	return result, true
}

// Sibson's C1 interpolant. The natural neighbor value is blended with the
// values each neighbor predicts from its gradient. Larger flatness values
// flatten the surface around the data points; 1 is the classic choice.
func (l *Locator) SibsonC1(p r2.Point, flatness float64, f ValueFunc, g GradientFunc) (value float64, ok bool) {
	defer l.recoverMiss(&ok)
	neighbors, ok := l.weightedNeighbors(p)
	if !ok {
		return 0, false
	}
	var c0, c1, c1Weights, alpha, beta float64
	for _, n := range neighbors {
		d := p.Sub(n.vertex.Position)
		r := math.Pow(d.Norm(), flatness)
		value := f(n.vertex)
		if r == 0 {
			return value, true
		}
		c0 += n.weight * value
		zeta := value + g(n.vertex).Dot(d)
		c1 += n.weight / r * zeta
		c1Weights += n.weight / r
		alpha += n.weight * r
		beta += n.weight * r * r
	}
	alpha /= c1Weights
	c1 /= c1Weights
	return (alpha*c0 + beta*c1) / (alpha + beta), true
}

// Farin's C1 interpolant: a cubic Bernstein-Bezier polynomial over the
// natural neighbor coordinates, with control values from the vertex values and
// gradients.
func (l *Locator) FarinC1(p r2.Point, f ValueFunc, g GradientFunc) (value float64, ok bool) {
	defer l.recoverMiss(&ok)
	neighbors, ok := l.weightedNeighbors(p)
	if !ok {
		return 0, false
	}
	n := len(neighbors)
	values := make([]float64, n)
	gradients := make([]r2.Point, n)
	for i, neighbor := range neighbors {
		values[i] = f(neighbor.vertex)
		gradients[i] = g(neighbor.vertex)
	}
	// Control value on the edge from i toward j, a third of the way.
	edge := func(i, j int) float64 {
		d := neighbors[j].vertex.Position.Sub(neighbors[i].vertex.Position)
		return values[i] + gradients[i].Dot(d)/3
	}
	control := func(i, j, k int) float64 {
		switch {
		case i == j && j == k:
			return values[i]
		case i == j:
			return edge(i, k)
		case j == k:
			return edge(j, i)
		case i == k:
			return edge(i, j)
		}
		sum := edge(i, j) + edge(i, k) + edge(j, i) + edge(j, k) + edge(k, i) + edge(k, j)
		return sum/4 - (values[i]+values[j]+values[k])/6
	}

	result := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				weight := neighbors[i].weight * neighbors[j].weight * neighbors[k].weight
				result += weight * control(i, j, k)
			}
		}
	}
	return result, true
}

func (t *Triangulation) Barycentric(p r2.Point, f ValueFunc) (float64, bool) {
	return t.locator.Barycentric(p, f)
}

func (t *Triangulation) NaturalNeighbors(p r2.Point) ([]NaturalNeighbor, bool) {
	return t.locator.NaturalNeighbors(p)
}

func (t *Triangulation) NaturalNeighbor(p r2.Point, f ValueFunc) (float64, bool) {
	return t.locator.NaturalNeighbor(p, f)
}

func (t *Triangulation) SibsonC1(p r2.Point, flatness float64, f ValueFunc, g GradientFunc) (float64, bool) {
	return t.locator.SibsonC1(p, flatness, f, g)
}

func (t *Triangulation) FarinC1(p r2.Point, f ValueFunc, g GradientFunc) (float64, bool) {
	return t.locator.FarinC1(p, f, g)
}
