package internal

import (
	"io"
	"math"

	"github.com/fogleman/gg"
	imgcat "github.com/martinlindhe/imgcat/lib"
	"github.com/pkg/errors"
)

// Padding in pixels so hull vertices are not drawn on the image border.
const drawPadding = 20

// Renders the mesh into a square image size pixels wide. Faces are filled,
// constrained edges are drawn thicker and in a different color, and vertices
// are dots.
func (t *Triangulation) Draw(size int) *gg.Context {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for v := 0; v < t.vertices.cap(); v++ {
		if !t.vertices.isAlive(v) {
			continue
		}
		p := t.pos(v)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	c := gg.NewContext(size, size)
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, float64(size), float64(size))
	c.Fill()
	if t.vertices.len() == 0 {
		return c
	}

	extent := math.Max(maxX-minX, maxY-minY)
	if extent == 0 {
		extent = 1
	}
	scale := float64(size-2*drawPadding) / extent
	// Flip the context so the origin is at the bottom left
	c.Translate(0, float64(size))
	c.Scale(1, -1)
	c.Translate(drawPadding, drawPadding)
	c.Scale(scale, scale)
	c.Translate(-minX, -minY)

	for f := 1; f < t.faces.cap(); f++ {
		if !t.faces.isAlive(f) {
			continue
		}
		a, b, cc := t.triangle(f)
		pa, pb, pc := t.pos(a), t.pos(b), t.pos(cc)
		c.MoveTo(pa.X, pa.Y)
		c.LineTo(pb.X, pb.Y)
		c.LineTo(pc.X, pc.Y)
		c.ClosePath()
		c.SetRGBA(0.3, 0.2, 1, 0.5)
		c.Fill()
	}

	for i := 0; i < t.edges.cap(); i++ {
		if !t.edges.isAlive(i) {
			continue
		}
		a, b := t.pos(t.org(i<<1)), t.pos(t.dest(i<<1))
		c.DrawLine(a.X, a.Y, b.X, b.Y)
		if t.edges.get(i).constrained {
			c.SetRGB(1, 0.4, 0)
			c.SetLineWidth(3)
		} else {
			c.SetRGB(0, 1, 0)
			c.SetLineWidth(1)
		}
		c.Stroke()
	}

	c.SetRGB(1, 1, 1)
	for v := 0; v < t.vertices.cap(); v++ {
		if t.vertices.isAlive(v) {
			p := t.pos(v)
			// Two pixel radius.
			c.DrawCircle(p.X, p.Y, 2/scale)
			c.Fill()
		}
	}
	return c
}

func (t *Triangulation) SavePNG(path string, size int) error {
	return errors.Wrapf(t.Draw(size).SavePNG(path), "saving %s", path)
}

// Saves the rendering to path and prints it inline (iTerm only).
func (t *Triangulation) Preview(path string, size int, w io.Writer) error {
	if err := t.SavePNG(path, size); err != nil {
		return err
	}
	imgcat.CatFile(path, w)
	return nil
}
