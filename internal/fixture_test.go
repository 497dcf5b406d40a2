package internal

import (
	"embed"
	"log"
	"math"

	"github.com/golang/geo/r2"
)

// Test drawings. SVG fixtures live in the fixtures/ directory and are loaded
// by name, sans extension. The rest are built in code. Every closed chain is
// a constraint loop; none of them cross.

//go:embed fixtures
var fixtures embed.FS

func LoadFixture(name string) *Drawing {
	fixture, err := fixtures.Open("fixtures/" + name + ".svg")
	if err != nil {
		log.Fatalf("Could not load fixture %q: %v", name, err)
	}
	defer fixture.Close()

	drawing, err := ParseSVG(fixture)
	if err != nil {
		log.Fatalf("Failed to parse fixture %q: %v", name, err)
	}
	return drawing
}

func loop(points ...r2.Point) Chain {
	return Chain{Points: points, Closed: true}
}

func starPoints(x, y, outerRadius, innerRadius float64) []r2.Point {
	var points []r2.Point
	for i := 0; i < 10; i++ {
		r := outerRadius
		if i%2 == 1 {
			r = innerRadius
		}
		angle := 2 * math.Pi * float64(i) / 10
		points = append(points, r2.Point{X: x + r*math.Cos(angle), Y: y + r*math.Sin(angle)})
	}
	return points
}

func SimpleStar() *Drawing {
	return &Drawing{Chains: []Chain{loop(starPoints(0, 0, 5, 2)...)}}
}

func SquareWithHole() *Drawing {
	return &Drawing{Chains: []Chain{
		loop(r2.Point{X: -5, Y: -5}, r2.Point{X: 5, Y: -5}, r2.Point{X: 5, Y: 5}, r2.Point{X: -5, Y: 5}),
		loop(r2.Point{X: -2, Y: -2}, r2.Point{X: -2, Y: 2}, r2.Point{X: 2, Y: 2}, r2.Point{X: 2, Y: -2}),
	}}
}

// A star with a smaller, thinner star inside it and a point in the gap.
func StarOutline() *Drawing {
	return &Drawing{
		Points: []r2.Point{{X: 8.5, Y: 0.5}},
		Chains: []Chain{
			loop(starPoints(0, 0, 10, 5)...),
			loop(starPoints(0, 0, 8, 3)...),
		},
	}
}

// Nested stars, each a scaled copy of the one outside it.
func StarStripes() *Drawing {
	const (
		outerRadius = 10
		n           = 20
		indentScale = 0.7
		gapScale    = 0.9
	)
	drawing := &Drawing{}
	scale := 1.0
	for i := 0; i < n; i++ {
		r := outerRadius * scale
		drawing.Chains = append(drawing.Chains, loop(starPoints(0, 0, r, r*indentScale)...))
		scale *= gapScale
	}
	return drawing
}

func chainSegments(d *Drawing) int {
	segments := 0
	for _, chain := range d.Chains {
		segments += len(chain.Points) - 1
		if chain.Closed && len(chain.Points) > 2 {
			segments++
		}
	}
	return segments
}
