package internal

import (
	"io"
	"math"
	"time"

	"github.com/golang/geo/r2"
	"github.com/osuushi/delaunay/rtree"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// State of the insertion state machine. Until three non-collinear vertices
// exist there are no faces, and vertices are only kept in a list.
type State int

const (
	Empty State = iota
	SinglePoint
	Segment
	Triangulated
)

func (s State) String() string {
	switch s {
	case Empty:
		return "Empty"
	case SinglePoint:
		return "SinglePoint"
	case Segment:
		return "Segment"
	case Triangulated:
		return "Triangulated"
	}
	return "Unknown"
}

// How a locator picks the face its walk starts from.
type LocatorKind int

const (
	// Start from the face of the previous query.
	LocateWalk LocatorKind = iota
	// Start from a face around the nearest vertex, found with an R-tree.
	LocateTree
)

func (k LocatorKind) String() string {
	if k == LocateTree {
		return "tree"
	}
	return "walk"
}

// A Vertex as seen by callers: its handle, position and payload.
type Vertex struct {
	Handle   VertexHandle
	Position r2.Point
	Data     interface{}
}

// Triangulation is an incremental constrained Delaunay triangulation.
//
// Mutating methods must not run concurrently with anything else. Read-only
// queries may run concurrently with each other if each goroutine uses its own
// Locator from NewLocator; the methods on Triangulation itself share a single
// default locator.
type Triangulation struct {
	mesh
	kernel      Kernel
	locatorKind LocatorKind
	index       *rtree.Tree
	logger      logrus.FieldLogger
	seed        int64
	state       State
	// Vertices in insertion order while the state is not Triangulated.
	loose       []int
	locator     *Locator
	constraints int
}

type Option func(*Triangulation)

// Geometric kernel for every predicate. Defaults to FloatKernel.
func WithKernel(kernel Kernel) Option {
	return func(t *Triangulation) {
		t.kernel = kernel
	}
}

func WithLocator(kind LocatorKind) Option {
	return func(t *Triangulation) {
		t.locatorKind = kind
	}
}

// Logger for debug output. By default nothing is logged.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(t *Triangulation) {
		t.logger = logger
	}
}

// Seed for the randomness in point location and bulk loading. Runs with the
// same seed and the same input build the same mesh.
func WithSeed(seed int64) Option {
	return func(t *Triangulation) {
		t.seed = seed
	}
}

// Seed from the clock instead. Mostly useful to shake out order dependent
// bugs.
func WithRandomSeed() Option {
	return func(t *Triangulation) {
		t.seed = time.Now().UnixNano()
	}
}

func New(opts ...Option) *Triangulation {
	t := &Triangulation{
		mesh:   newMesh(),
		kernel: FloatKernel{},
		seed:   1,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		logger := logrus.New()
		logger.Out = io.Discard
		t.logger = logger
	}
	if t.locatorKind == LocateTree {
		t.index = rtree.New()
	}
	t.locator = t.NewLocator()
	return t
}

func recoverError(err *error) {
	if recovered := HandlePanicRecover(recover()); recovered != nil {
		*err = recovered
	}
}

func finite(p r2.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func (t *Triangulation) State() State {
	return t.state
}

func (t *Triangulation) Kernel() Kernel {
	return t.kernel
}

func (t *Triangulation) LocatorKind() LocatorKind {
	return t.locatorKind
}

func (t *Triangulation) NumVertices() int {
	return t.vertices.len()
}

// Number of finite faces.
func (t *Triangulation) NumFaces() int {
	return t.faces.len() - 1
}

// Number of undirected edges.
func (t *Triangulation) NumEdges() int {
	return t.edges.len()
}

func (t *Triangulation) NumConstraints() int {
	return t.constraints
}

func (t *Triangulation) Vertices() []VertexHandle {
	result := make([]VertexHandle, 0, t.vertices.len())
	for v := 0; v < t.vertices.cap(); v++ {
		if t.vertices.isAlive(v) {
			result = append(result, t.vertexHandle(v))
		}
	}
	return result
}

// Finite faces.
func (t *Triangulation) Faces() []FaceHandle {
	result := make([]FaceHandle, 0, t.NumFaces())
	for f := 1; f < t.faces.cap(); f++ {
		if t.faces.isAlive(f) {
			result = append(result, t.faceHandle(f))
		}
	}
	return result
}

// Canonical half of every undirected edge.
func (t *Triangulation) Edges() []EdgeHandle {
	result := make([]EdgeHandle, 0, t.edges.len())
	for i := 0; i < t.edges.cap(); i++ {
		if t.edges.isAlive(i) {
			result = append(result, t.edgeHandle(i<<1))
		}
	}
	return result
}

func (t *Triangulation) publicVertex(v int) Vertex {
	record := t.vertices.get(v)
	return Vertex{Handle: t.vertexHandle(v), Position: record.pos, Data: record.data}
}

func (t *Triangulation) Vertex(h VertexHandle) (Vertex, error) {
	v, ok := t.resolveVertex(h)
	if !ok {
		return Vertex{}, errors.Wrapf(ErrInvalidHandle, "vertex %v", h)
	}
	return t.publicVertex(v), nil
}

func (t *Triangulation) Position(h VertexHandle) (r2.Point, error) {
	v, ok := t.resolveVertex(h)
	if !ok {
		return r2.Point{}, errors.Wrapf(ErrInvalidHandle, "vertex %v", h)
	}
	return t.pos(v), nil
}

// Replaces the payload of a vertex.
func (t *Triangulation) SetData(h VertexHandle, data interface{}) error {
	v, ok := t.resolveVertex(h)
	if !ok {
		return errors.Wrapf(ErrInvalidHandle, "vertex %v", h)
	}
	t.vertices.get(v).data = data
	return nil
}

// The vertices of a finite face in counterclockwise order.
func (t *Triangulation) FaceVertices(h FaceHandle) ([3]VertexHandle, error) {
	f, ok := t.resolveFace(h)
	if !ok {
		return [3]VertexHandle{}, errors.Wrapf(ErrInvalidHandle, "face %v", h)
	}
	if f == infiniteFace {
		return [3]VertexHandle{}, errors.Wrap(ErrDegenerateInput, "the infinite face has no vertices")
	}
	a, b, c := t.triangle(f)
	return [3]VertexHandle{t.vertexHandle(a), t.vertexHandle(b), t.vertexHandle(c)}, nil
}

// The three half-edges of a finite face, or the hull loop of the infinite
// face.
func (t *Triangulation) FaceEdges(h FaceHandle) ([]EdgeHandle, error) {
	f, ok := t.resolveFace(h)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidHandle, "face %v", h)
	}
	edges := t.faceEdges(f)
	result := make([]EdgeHandle, len(edges))
	for i, e := range edges {
		result[i] = t.edgeHandle(e)
	}
	return result, nil
}

func (t *Triangulation) EdgeVertices(h EdgeHandle) (from, to VertexHandle, err error) {
	e, ok := t.resolveEdge(h)
	if !ok {
		return 0, 0, errors.Wrapf(ErrInvalidHandle, "edge %v", h)
	}
	return t.vertexHandle(t.org(e)), t.vertexHandle(t.dest(e)), nil
}

func (t *Triangulation) EdgeTwin(h EdgeHandle) (EdgeHandle, error) {
	e, ok := t.resolveEdge(h)
	if !ok {
		return 0, errors.Wrapf(ErrInvalidHandle, "edge %v", h)
	}
	return t.edgeHandle(twin(e)), nil
}

// The face on the left of a half-edge.
func (t *Triangulation) EdgeFace(h EdgeHandle) (FaceHandle, error) {
	e, ok := t.resolveEdge(h)
	if !ok {
		return 0, errors.Wrapf(ErrInvalidHandle, "edge %v", h)
	}
	return t.faceHandle(t.face(e)), nil
}

func (t *Triangulation) EdgeIsConstrained(h EdgeHandle) (bool, error) {
	e, ok := t.resolveEdge(h)
	if !ok {
		return false, errors.Wrapf(ErrInvalidHandle, "edge %v", h)
	}
	return t.isConstrained(e), nil
}

// Delaunay neighbors of a vertex, counterclockwise.
func (t *Triangulation) Neighbors(h VertexHandle) ([]VertexHandle, error) {
	v, ok := t.resolveVertex(h)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidHandle, "vertex %v", h)
	}
	out := t.outEdges(v)
	result := make([]VertexHandle, len(out))
	for i, e := range out {
		result[i] = t.vertexHandle(t.dest(e))
	}
	return result, nil
}

// Hull vertices in counterclockwise order. Empty until the state is
// Triangulated.
func (t *Triangulation) ConvexHull() []VertexHandle {
	hull := t.faceEdges(infiniteFace)
	result := make([]VertexHandle, len(hull))
	// The infinite face runs clockwise, so walk it backwards.
	for i, e := range hull {
		result[len(hull)-1-i] = t.vertexHandle(t.org(e))
	}
	return result
}

// Checks the structure of the mesh and the bookkeeping around it. Used by
// tests after every operation.
func (t *Triangulation) SanityCheck() error {
	if err := t.sanityCheck(); err != nil {
		return err
	}
	constrained := 0
	for i := 0; i < t.edges.cap(); i++ {
		if t.edges.isAlive(i) && t.edges.get(i).constrained {
			constrained++
		}
	}
	if constrained != t.constraints {
		return errors.Errorf("%d constrained edges but %d counted", constrained, t.constraints)
	}
	if t.state == Triangulated {
		if len(t.loose) != 0 {
			return errors.Errorf("%d loose vertices in a triangulated mesh", len(t.loose))
		}
		for v := 0; v < t.vertices.cap(); v++ {
			if t.vertices.isAlive(v) && t.vertices.get(v).out == noEdge {
				return errors.Errorf("vertex %d is not part of the mesh", v)
			}
		}
		for f := 1; f < t.faces.cap(); f++ {
			if !t.faces.isAlive(f) {
				continue
			}
			a, b, c := t.triangle(f)
			if t.kernel.Orient(t.pos(a), t.pos(b), t.pos(c)) != CounterClockwise {
				return errors.Errorf("face %d is not counterclockwise", f)
			}
		}
		return nil
	}
	if t.edges.len() != 0 || t.faces.len() != 1 {
		return errors.Errorf("degenerate state %v still has edges or faces", t.state)
	}
	if len(t.loose) != t.vertices.len() {
		return errors.Errorf("%d loose vertices but %d allocated", len(t.loose), t.vertices.len())
	}
	return nil
}
