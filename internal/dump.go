package internal

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"
	"github.com/osuushi/delaunay/internal/dbg"
)

// Writes a colored listing of the mesh for debugging. Vertices get readable
// names: hull vertices are cyan, interior ones green. Constrained edges are
// red.
func (t *Triangulation) Dump(w io.Writer) {
	fmt.Fprintf(w, "%v: %d vertices, %d faces, %d edges, %d constrained\n",
		t.state, t.NumVertices(), t.NumFaces(), t.NumEdges(), t.constraints)

	for v := 0; v < t.vertices.cap(); v++ {
		if !t.vertices.isAlive(v) {
			continue
		}
		var neighbors []string
		for _, e := range t.outEdges(v) {
			neighbors = append(neighbors, t.dumpEdge(e))
		}
		fmt.Fprintf(w, "%s %v (%g, %g) -> %v\n", t.dumpName(v), t.vertexHandle(v), t.pos(v).X, t.pos(v).Y, neighbors)
	}
	for f := 1; f < t.faces.cap(); f++ {
		if !t.faces.isAlive(f) {
			continue
		}
		a, b, c := t.triangle(f)
		fmt.Fprintf(w, "%v [%s %s %s]\n", t.faceHandle(f), t.dumpName(a), t.dumpName(b), t.dumpName(c))
	}
}

func (t *Triangulation) dumpName(v int) string {
	name := dbg.Name(t.vertexHandle(v))
	if t.state == Triangulated && t.isHullVertex(v) {
		return aurora.Cyan(name).String()
	}
	return aurora.Green(name).String()
}

func (t *Triangulation) dumpEdge(e int) string {
	name := dbg.Name(t.vertexHandle(t.dest(e)))
	if t.isConstrained(e) {
		return aurora.Red(name).String()
	}
	return name
}
