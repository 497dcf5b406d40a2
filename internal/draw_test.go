package internal

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fogleman/gg"
	"github.com/osuushi/delaunay/internal/dbg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawFixture(t *testing.T) {
	tri := New()
	require.NoError(t, tri.InsertDrawing(LoadFixture("outline")))

	path := filepath.Join(t.TempDir(), "outline.png")
	require.NoError(t, tri.SavePNG(path, 300))
	img, err := gg.LoadPNG(path)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())

	// The padding stays background.
	r, g, b, _ := img.At(2, 2).RGBA()
	assert.Zero(t, r+g+b)
}

func TestDrawEmpty(t *testing.T) {
	c := New().Draw(50)
	assert.Equal(t, 50, c.Width())
	r, g, b, a := c.Image().At(25, 25).RGBA()
	assert.Zero(t, r+g+b)
	assert.NotZero(t, a)
}

func TestDump(t *testing.T) {
	tri, v := unitSquare(t)
	require.NoError(t, tri.AddConstraint(v[0], v[2]))

	var buf bytes.Buffer
	tri.Dump(&buf)
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// A header, one line per vertex, one per face.
	assert.Len(t, lines, 1+4+2)
	assert.True(t, strings.HasPrefix(lines[0], "Triangulated: 4 vertices, 2 faces, 5 edges, 1 constrained"))
	for _, h := range v {
		assert.Contains(t, out, dbg.Name(h))
	}
}
