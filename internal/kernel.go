package internal

import (
	"math"
	"math/big"

	"github.com/golang/geo/r2"
)

// Every geometric decision the triangulation makes goes through a Kernel. A
// kernel must be consistent: the same inputs always give the same verdict.
// Collinear and OnCircle are ordinary answers, not errors.
type Kernel interface {
	// Orientation of c relative to the directed line a->b.
	Orient(a, b, c r2.Point) Orientation
	// Position of d relative to the circumcircle of the counterclockwise
	// triangle a, b, c.
	InCircle(a, b, c, d r2.Point) CircleSide
	Distance2(a, b r2.Point) float64
}

type Orientation int8

const (
	Clockwise        Orientation = -1
	Collinear        Orientation = 0
	CounterClockwise Orientation = 1
)

func (o Orientation) String() string {
	switch o {
	case Clockwise:
		return "Clockwise"
	case CounterClockwise:
		return "CounterClockwise"
	}
	return "Collinear"
}

type CircleSide int8

const (
	Outside  CircleSide = -1
	OnCircle CircleSide = 0
	Inside   CircleSide = 1
)

func (s CircleSide) String() string {
	switch s {
	case Outside:
		return "Outside"
	case Inside:
		return "Inside"
	}
	return "OnCircle"
}

// Relative tolerance used by the zero value of FloatKernel.
const DefaultTolerance = 1e-12

// FloatKernel evaluates the predicates in float64. A determinant whose
// magnitude is within Tolerance times the magnitude of the terms that produced
// it is treated as zero. A zero Tolerance means DefaultTolerance; a negative
// one disables the band entirely.
type FloatKernel struct {
	Tolerance float64
}

func (k FloatKernel) tolerance() float64 {
	if k.Tolerance == 0 {
		return DefaultTolerance
	}
	if k.Tolerance < 0 {
		return 0
	}
	return k.Tolerance
}

// The determinant is evaluated on the arguments sorted lexicographically, so
// that permuting them flips the sign exactly and never changes the magnitude.
func (k FloatKernel) Orient(a, b, c r2.Point) Orientation {
	sign := CounterClockwise
	if lexLess(b, a) {
		a, b = b, a
		sign = -sign
	}
	if lexLess(c, b) {
		b, c = c, b
		sign = -sign
	}
	if lexLess(b, a) {
		a, b = b, a
		sign = -sign
	}
	det, mag := orientDeterminant(a, b, c)
	if math.Abs(det) <= k.tolerance()*mag {
		return Collinear
	}
	if det > 0 {
		return sign
	}
	return -sign
}

func (k FloatKernel) InCircle(a, b, c, d r2.Point) CircleSide {
	det, mag := inCircleDeterminant(a, b, c, d)
	if math.Abs(det) <= k.tolerance()*mag {
		return OnCircle
	}
	if det > 0 {
		return Inside
	}
	return Outside
}

func (k FloatKernel) Distance2(a, b r2.Point) float64 {
	return distance2(a, b)
}

// AdaptiveKernel answers exactly for the float64 inputs it is given. The
// float determinant is trusted when it clears a static forward error bound;
// otherwise the predicate is recomputed in rational arithmetic.
type AdaptiveKernel struct{}

// Error bounds for the float filters, after Shewchuk's robust predicates.
var (
	machineEpsilon   = math.Ldexp(1, -53)
	orientErrorBound = (3 + 16*machineEpsilon) * machineEpsilon
	circleErrorBound = (10 + 96*machineEpsilon) * machineEpsilon
)

func (AdaptiveKernel) Orient(a, b, c r2.Point) Orientation {
	det, mag := orientDeterminant(a, b, c)
	if det > orientErrorBound*mag {
		return CounterClockwise
	}
	if det < -orientErrorBound*mag {
		return Clockwise
	}
	return Orientation(exactOrient(a, b, c))
}

func (AdaptiveKernel) InCircle(a, b, c, d r2.Point) CircleSide {
	det, mag := inCircleDeterminant(a, b, c, d)
	if det > circleErrorBound*mag {
		return Inside
	}
	if det < -circleErrorBound*mag {
		return Outside
	}
	return CircleSide(exactInCircle(a, b, c, d))
}

func (AdaptiveKernel) Distance2(a, b r2.Point) float64 {
	return distance2(a, b)
}

// Orders points by x, then y.
func lexLess(a, b r2.Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func distance2(a, b r2.Point) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

// Returns the orientation determinant and the sum of the magnitudes of its
// products, which bounds the rounding error.
func orientDeterminant(a, b, c r2.Point) (det, mag float64) {
	left := (b.X - a.X) * (c.Y - a.Y)
	right := (b.Y - a.Y) * (c.X - a.X)
	return left - right, math.Abs(left) + math.Abs(right)
}

func inCircleDeterminant(a, b, c, d r2.Point) (det, mag float64) {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y

	bc := bdx*cdy - cdx*bdy
	ca := cdx*ady - adx*cdy
	ab := adx*bdy - bdx*ady
	alift := adx*adx + ady*ady
	blift := bdx*bdx + bdy*bdy
	clift := cdx*cdx + cdy*cdy

	det = alift*bc + blift*ca + clift*ab
	mag = alift*(math.Abs(bdx*cdy)+math.Abs(cdx*bdy)) +
		blift*(math.Abs(cdx*ady)+math.Abs(adx*cdy)) +
		clift*(math.Abs(adx*bdy)+math.Abs(bdx*ady))
	return det, mag
}

func rat(f float64) *big.Rat {
	return new(big.Rat).SetFloat64(f)
}

func ratSub(x, y float64) *big.Rat {
	return new(big.Rat).Sub(rat(x), rat(y))
}

func ratMul(x, y *big.Rat) *big.Rat {
	return new(big.Rat).Mul(x, y)
}

func exactOrient(a, b, c r2.Point) int {
	left := ratMul(ratSub(b.X, a.X), ratSub(c.Y, a.Y))
	right := ratMul(ratSub(b.Y, a.Y), ratSub(c.X, a.X))
	return left.Cmp(right)
}

func exactInCircle(a, b, c, d r2.Point) int {
	adx, ady := ratSub(a.X, d.X), ratSub(a.Y, d.Y)
	bdx, bdy := ratSub(b.X, d.X), ratSub(b.Y, d.Y)
	cdx, cdy := ratSub(c.X, d.X), ratSub(c.Y, d.Y)

	lift := func(x, y *big.Rat) *big.Rat {
		return new(big.Rat).Add(ratMul(x, x), ratMul(y, y))
	}
	cross := func(x1, y1, x2, y2 *big.Rat) *big.Rat {
		return new(big.Rat).Sub(ratMul(x1, y2), ratMul(x2, y1))
	}

	det := ratMul(lift(adx, ady), cross(bdx, bdy, cdx, cdy))
	det.Add(det, ratMul(lift(bdx, bdy), cross(cdx, cdy, adx, ady)))
	det.Add(det, ratMul(lift(cdx, cdy), cross(adx, ady, bdx, bdy)))
	return det.Sign()
}

// Circumcenter of a triangle. Not a predicate, so it is plain float math; used
// by the natural neighbor code to build Voronoi cells.
func circumcenter(a, b, c r2.Point) r2.Point {
	bx, by := b.X-a.X, b.Y-a.Y
	cx, cy := c.X-a.X, c.Y-a.Y
	d := 2 * (bx*cy - by*cx)
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	return r2.Point{
		X: a.X + (cy*b2-by*c2)/d,
		Y: a.Y + (bx*c2-cx*b2)/d,
	}
}
