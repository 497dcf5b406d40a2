// An incremental constrained Delaunay triangulation for Go.
//
// Points can be inserted and removed one at a time, and segments between
// vertices can be constrained so that they stay edges of the mesh. On top of
// the mesh the package answers point location and nearest neighbor queries,
// and interpolates scattered data with barycentric, natural neighbor and C1
// smooth interpolants.
//
// Vertices, edges and faces are addressed by handles. A handle stays valid
// until the thing it refers to is removed; after that every operation taking
// it fails with ErrInvalidHandle, even if the slot has been reused.
package delaunay

import (
	"io"

	"github.com/golang/geo/r2"
	"github.com/osuushi/delaunay/internal"
	"github.com/sirupsen/logrus"
)

type Point = r2.Point

type Triangulation = internal.Triangulation
type Option = internal.Option
type State = internal.State
type Vertex = internal.Vertex

type VertexHandle = internal.VertexHandle
type EdgeHandle = internal.EdgeHandle
type FaceHandle = internal.FaceHandle

type Kernel = internal.Kernel
type FloatKernel = internal.FloatKernel
type AdaptiveKernel = internal.AdaptiveKernel
type Orientation = internal.Orientation
type CircleSide = internal.CircleSide

type Locator = internal.Locator
type LocatorKind = internal.LocatorKind
type Location = internal.Location
type LocationKind = internal.LocationKind

type ValueFunc = internal.ValueFunc
type GradientFunc = internal.GradientFunc
type NaturalNeighbor = internal.NaturalNeighbor

type Snapshot = internal.Snapshot
type Drawing = internal.Drawing
type Chain = internal.Chain

type ConstraintConflictError = internal.ConstraintConflictError

const (
	Empty        = internal.Empty
	SinglePoint  = internal.SinglePoint
	Segment      = internal.Segment
	Triangulated = internal.Triangulated
)

const (
	LocateWalk = internal.LocateWalk
	LocateTree = internal.LocateTree
)

const (
	OnFace      = internal.OnFace
	OnEdge      = internal.OnEdge
	OnVertex    = internal.OnVertex
	OutsideHull = internal.OutsideHull
)

const InfiniteFace = internal.InfiniteFace

const DefaultTolerance = internal.DefaultTolerance

var (
	ErrDegenerateInput    = internal.ErrDegenerateInput
	ErrInvalidHandle      = internal.ErrInvalidHandle
	ErrConstraintConflict = internal.ErrConstraintConflict
	ErrInvalidSnapshot    = internal.ErrInvalidSnapshot
)

// An empty triangulation.
func New(opts ...Option) *Triangulation {
	return internal.New(opts...)
}

// Builds a triangulation from a point list in one go. The returned handles
// line up with the points.
func NewFromPoints(points []Point, opts ...Option) (*Triangulation, []VertexHandle, error) {
	return internal.NewFromPoints(points, opts...)
}

func WithKernel(kernel Kernel) Option {
	return internal.WithKernel(kernel)
}

func WithLocator(kind LocatorKind) Option {
	return internal.WithLocator(kind)
}

func WithLogger(logger logrus.FieldLogger) Option {
	return internal.WithLogger(logger)
}

func WithSeed(seed int64) Option {
	return internal.WithSeed(seed)
}

func WithRandomSeed() Option {
	return internal.WithRandomSeed()
}

// Reads a triangulation written with Triangulation.Encode.
func Decode(r io.Reader, opts ...Option) (*Triangulation, error) {
	return internal.Decode(r, opts...)
}

func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	return internal.DecodeSnapshot(r)
}

func FromSnapshot(s *Snapshot, opts ...Option) (*Triangulation, error) {
	return internal.FromSnapshot(s, opts...)
}

func ParseSVG(r io.Reader) (*Drawing, error) {
	return internal.ParseSVG(r)
}
