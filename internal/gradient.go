package internal

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Estimates the gradient of f at a vertex from the values at its Delaunay
// neighbors, by least squares weighted with the inverse squared distance. The
// estimate is exact for linear functions. A vertex whose neighbors do not span
// the plane gets a zero gradient.
func (t *Triangulation) EstimateGradient(h VertexHandle, f ValueFunc) (gradient r2.Point, err error) {
	defer recoverError(&err)
	v, ok := t.resolveVertex(h)
	if !ok {
		return r2.Point{}, errors.Wrapf(ErrInvalidHandle, "vertex %v", h)
	}
	return t.estimateGradient(v, f), nil
}

// Gradient estimates for every vertex, as a GradientFunc for SibsonC1 and
// FarinC1. Vertices inserted afterwards get a zero gradient.
func (t *Triangulation) EstimateGradients(f ValueFunc) GradientFunc {
	gradients := make(map[VertexHandle]r2.Point, t.vertices.len())
	for v := 0; v < t.vertices.cap(); v++ {
		if t.vertices.isAlive(v) {
			gradients[t.vertexHandle(v)] = t.estimateGradient(v, f)
		}
	}
	t.logger.WithField("vertices", len(gradients)).Debug("estimated gradients")
	return func(v Vertex) r2.Point {
		return gradients[v.Handle]
	}
}

func (t *Triangulation) estimateGradient(v int, f ValueFunc) r2.Point {
	if t.state != Triangulated || t.vertices.get(v).out == noEdge {
		return r2.Point{}
	}
	origin := t.publicVertex(v)
	value := f(origin)

	// Normal equations of the weighted fit: A g = b.
	var a [3]float64
	var b [2]float64
	for _, e := range t.outEdges(v) {
		neighbor := t.publicVertex(t.dest(e))
		d := neighbor.Position.Sub(origin.Position)
		w := 1 / d.Dot(d)
		df := f(neighbor) - value
		a[0] += w * d.X * d.X
		a[1] += w * d.X * d.Y
		a[2] += w * d.Y * d.Y
		b[0] += w * d.X * df
		b[1] += w * d.Y * df
	}

	normal := mat.NewSymDense(2, []float64{a[0], a[1], a[1], a[2]})
	var g mat.VecDense
	if err := g.SolveVec(normal, mat.NewVecDense(2, b[:])); err != nil {
		t.logger.WithField("vertex", v).WithError(err).Debug("no gradient")
		return r2.Point{}
	}
	return r2.Point{X: g.AtVec(0), Y: g.AtVec(1)}
}
