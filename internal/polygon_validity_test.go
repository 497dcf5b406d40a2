package internal

// This contains no actual tests. It is just a helper for testing triangulation
// validity.

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to check that a triangulation is valid. The rules are:
// 1. The mesh passes its own structural sanity check.
// 2. Every edge that is not constrained is locally Delaunay.
// 3. The faces exactly cover the convex hull of the vertices: their areas sum
// to the hull area, and every corner of the hull is a hull vertex of the mesh.
// 4. A mesh that is not triangulated has no faces.
func AssertValidTriangulation(t *testing.T, tri *Triangulation) {
	t.Helper()
	require.NoError(t, tri.SanityCheck())
	if tri.State() != Triangulated {
		require.Zero(t, tri.NumFaces())
		return
	}

	for i := 0; i < tri.edges.cap(); i++ {
		if !tri.edges.isAlive(i) || tri.edges.get(i).constrained {
			continue
		}
		e := i << 1
		te := twin(e)
		if tri.face(e) == infiniteFace || tri.face(te) == infiniteFace {
			continue
		}
		a, b := tri.pos(tri.org(e)), tri.pos(tri.org(te))
		c, d := tri.pos(tri.org(tri.prev(e))), tri.pos(tri.org(tri.prev(te)))
		require.NotEqual(t, Inside, tri.kernel.InCircle(a, b, c, d), "edge %v-%v is not locally Delaunay", a, b)
	}

	var points []r2.Point
	for _, h := range tri.Vertices() {
		p, err := tri.Position(h)
		require.NoError(t, err)
		points = append(points, p)
	}
	hull := bruteForceHull(points)

	faceArea := 0.0
	for _, f := range tri.Faces() {
		corners, err := tri.FaceVertices(f)
		require.NoError(t, err)
		var p [3]r2.Point
		for i, h := range corners {
			p[i], _ = tri.Position(h)
		}
		faceArea += polygonArea(p[:])
	}
	hullArea := polygonArea(hull)
	require.InDelta(t, hullArea, faceArea, 1e-9*math.Max(1, hullArea), "faces do not cover the hull")

	meshHull := make(map[r2.Point]bool)
	for _, h := range tri.ConvexHull() {
		p, _ := tri.Position(h)
		meshHull[p] = true
	}
	for _, p := range hull {
		require.True(t, meshHull[p], "hull corner %v is not on the mesh hull", p)
	}
}

// Andrew's monotone chain. Collinear points on the hull are dropped.
func bruteForceHull(points []r2.Point) []r2.Point {
	sorted := append([]r2.Point(nil), points...)
	sort.Slice(sorted, func(i, j int) bool {
		return lexLess(sorted[i], sorted[j])
	})
	cross := func(o, a, b r2.Point) float64 {
		return a.Sub(o).Cross(b.Sub(o))
	}
	var hull []r2.Point
	for pass := 0; pass < 2; pass++ {
		start := len(hull)
		for _, p := range sorted {
			for len(hull) >= start+2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
				hull = hull[:len(hull)-1]
			}
			hull = append(hull, p)
		}
		hull = hull[:len(hull)-1]
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
	}
	return hull
}

// Used to compare meshes by geometry rather than by handles: a triangle keyed
// by its corners in sorted order.
type normalizedTriangle [3]r2.Point

func newNormalizedTriangle(a, b, c r2.Point) normalizedTriangle {
	corners := []r2.Point{a, b, c}
	sort.Slice(corners, func(i, j int) bool {
		return lexLess(corners[i], corners[j])
	})
	return normalizedTriangle{corners[0], corners[1], corners[2]}
}

type normalizedTriangleSet map[normalizedTriangle]struct{}

func trianglesOf(t *testing.T, tri *Triangulation) normalizedTriangleSet {
	set := make(normalizedTriangleSet)
	for _, f := range tri.Faces() {
		corners, err := tri.FaceVertices(f)
		require.NoError(t, err)
		var p [3]r2.Point
		for i, h := range corners {
			p[i], _ = tri.Position(h)
		}
		set[newNormalizedTriangle(p[0], p[1], p[2])] = struct{}{}
	}
	return set
}

// Same as above, for undirected edges.
type normalizedSegment struct {
	lower, upper r2.Point
}

func newNormalizedSegment(a, b r2.Point) normalizedSegment {
	if lexLess(a, b) {
		return normalizedSegment{a, b}
	}
	return normalizedSegment{b, a}
}

func segmentsOf(tri *Triangulation) map[normalizedSegment]bool {
	set := make(map[normalizedSegment]bool)
	for i := 0; i < tri.edges.cap(); i++ {
		if tri.edges.isAlive(i) {
			segment := newNormalizedSegment(tri.pos(tri.org(i<<1)), tri.pos(tri.dest(i<<1)))
			set[segment] = tri.edges.get(i).constrained
		}
	}
	return set
}

// Locates a grid of points, padded past the vertices' bounding box, in two
// meshes over the same points and checks that they agree. Faces and edges are
// compared by their corners.
func validateLocationsBySampling(t *testing.T, actual, expected *Triangulation) {
	minX, minY, maxX, maxY := math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)
	for _, h := range expected.Vertices() {
		p, _ := expected.Position(h)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	// Pad the bounding box by 10%
	xPadding := (maxX - minX) * 0.1
	yPadding := (maxY - minY) * 0.1
	minX -= xPadding
	minY -= yPadding
	maxX += xPadding
	maxY += yPadding

	step := math.Max(maxX-minX, maxY-minY) / 40
	for y := minY; y <= maxY; y += step {
		for x := minX; x <= maxX; x += step {
			p := r2.Point{X: x, Y: y}
			got, err := actual.Locate(p)
			require.NoError(t, err)
			want, err := expected.Locate(p)
			require.NoError(t, err)
			require.Equal(t, want.Kind, got.Kind, "location kind of %v", p)
			switch want.Kind {
			case OnFace:
				assert.Equal(t, faceKey(t, expected, want.Face), faceKey(t, actual, got.Face), "face of %v", p)
			case OnEdge:
				assert.Equal(t, edgeKey(t, expected, want.Edge), edgeKey(t, actual, got.Edge), "edge of %v", p)
			case OnVertex:
				a, _ := expected.Position(want.Vertex)
				b, _ := actual.Position(got.Vertex)
				assert.Equal(t, a, b, "vertex at %v", p)
			}
		}
	}
}

func faceKey(t *testing.T, tri *Triangulation, f FaceHandle) normalizedTriangle {
	corners, err := tri.FaceVertices(f)
	require.NoError(t, err)
	var p [3]r2.Point
	for i, h := range corners {
		p[i], _ = tri.Position(h)
	}
	return newNormalizedTriangle(p[0], p[1], p[2])
}

func edgeKey(t *testing.T, tri *Triangulation, e EdgeHandle) normalizedSegment {
	from, to, err := tri.EdgeVertices(e)
	require.NoError(t, err)
	a, _ := tri.Position(from)
	b, _ := tri.Position(to)
	return newNormalizedSegment(a, b)
}

// Deterministic random points in a square.
func randomPoints(seed int64, n int, size float64) []r2.Point {
	rng := rand.New(rand.NewSource(seed))
	points := make([]r2.Point, n)
	for i := range points {
		points[i] = r2.Point{X: rng.Float64() * size, Y: rng.Float64() * size}
	}
	return points
}
