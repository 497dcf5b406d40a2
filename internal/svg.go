package internal

import (
	"io"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// This is not a full SVG reader. It only looks at a few element types and
// ignores transforms, styles and units. Coordinates are taken as written, so
// the picture comes out upside down relative to the SVG viewer.

// A polyline read from a drawing, to be inserted as a chain of constraints.
type Chain struct {
	Points []r2.Point
	Closed bool
}

// Everything a drawing contributes to a triangulation. Circles are free
// points (their centers); lines, polylines and polygons are chains.
type Drawing struct {
	Points []r2.Point
	Chains []Chain
}

func ParseSVG(r io.Reader) (*Drawing, error) {
	root, err := svgparser.Parse(r, false)
	if err != nil {
		return nil, errors.Wrap(err, "parsing svg")
	}
	drawing := &Drawing{}
	for _, el := range root.FindAll("circle") {
		p, err := attributePoint(el, "cx", "cy")
		if err != nil {
			return nil, err
		}
		drawing.Points = append(drawing.Points, p)
	}
	for _, el := range root.FindAll("line") {
		start, err := attributePoint(el, "x1", "y1")
		if err != nil {
			return nil, err
		}
		end, err := attributePoint(el, "x2", "y2")
		if err != nil {
			return nil, err
		}
		drawing.Chains = append(drawing.Chains, Chain{Points: []r2.Point{start, end}})
	}
	for _, name := range []string{"polyline", "polygon"} {
		for _, el := range root.FindAll(name) {
			points, err := parsePointList(el.Attributes["points"])
			if err != nil {
				return nil, errors.Wrapf(err, "%s element", name)
			}
			drawing.Chains = append(drawing.Chains, Chain{Points: points, Closed: name == "polygon"})
		}
	}
	return drawing, nil
}

// Inserts every point and chain of the drawing, points first.
func (t *Triangulation) InsertDrawing(d *Drawing) error {
	for _, p := range d.Points {
		if _, _, err := t.Insert(p, nil); err != nil {
			return err
		}
	}
	// All chain points go in before any constraint, so that a short first
	// chain cannot leave the mesh without faces.
	for _, chain := range d.Chains {
		for _, p := range chain.Points {
			if _, _, err := t.Insert(p, nil); err != nil {
				return err
			}
		}
	}
	for _, chain := range d.Chains {
		if _, err := t.InsertPolyline(chain.Points, chain.Closed); err != nil {
			return err
		}
	}
	return nil
}

func attributePoint(el *svgparser.Element, xName, yName string) (r2.Point, error) {
	x, err := strconv.ParseFloat(el.Attributes[xName], 64)
	if err != nil {
		return r2.Point{}, errors.Wrapf(err, "%s attribute %s", el.Name, xName)
	}
	y, err := strconv.ParseFloat(el.Attributes[yName], 64)
	if err != nil {
		return r2.Point{}, errors.Wrapf(err, "%s attribute %s", el.Name, yName)
	}
	return r2.Point{X: x, Y: y}, nil
}

// Parses "x1,y1 x2,y2 ..." in any mix of commas and whitespace.
func parsePointList(list string) ([]r2.Point, error) {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields)%2 != 0 {
		return nil, errors.Errorf("odd number of coordinates in %q", list)
	}
	points := make([]r2.Point, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid x value %q", fields[i])
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid y value %q", fields[i+1])
		}
		points = append(points, r2.Point{X: x, Y: y})
	}
	return points, nil
}
