package internal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		tri := New(WithSeed(7))
		var handles []VertexHandle
		for i, p := range randomPoints(51, 40, 100) {
			h, _, err := tri.Insert(p, i)
			require.NoError(t, err)
			handles = append(handles, h)
		}
		chain, err := tri.InsertPolyline([]r2.Point{{X: 20, Y: 20}, {X: 80, Y: 30}, {X: 60, Y: 70}}, false)
		require.NoError(t, err)
		removed := handles[:5]
		for _, h := range removed {
			_, err := tri.Remove(h)
			require.NoError(t, err)
		}

		var buf bytes.Buffer
		require.NoError(t, tri.Encode(&buf, compress))
		assert.Equal(t, compress, bytes.HasPrefix(buf.Bytes(), xzMagic))

		restored, err := Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, int64(7), restored.seed)
		assert.Equal(t, Triangulated, restored.State())
		assert.Equal(t, tri.Vertices(), restored.Vertices())
		assert.Equal(t, trianglesOf(t, tri), trianglesOf(t, restored))
		assert.Equal(t, segmentsOf(tri), segmentsOf(restored))
		assert.Equal(t, 2, restored.NumConstraints())
		requireConstrained(t, restored, chain[0], chain[1])
		AssertValidTriangulation(t, restored)

		// Payloads come back as JSON values.
		v, err := restored.Vertex(handles[10])
		require.NoError(t, err)
		assert.Equal(t, float64(10), v.Data)
		for _, h := range removed {
			_, err := restored.Position(h)
			assert.True(t, errors.Is(err, ErrInvalidHandle))
		}

		fresh, _, err := restored.Insert(r2.Point{X: 50, Y: 50}, nil)
		require.NoError(t, err)
		for _, h := range removed {
			assert.NotEqual(t, h, fresh)
		}
		AssertValidTriangulation(t, restored)
	}
}

func TestSnapshotWithTreeLocator(t *testing.T) {
	tri, _, err := NewFromPoints(randomPoints(52, 30, 10))
	require.NoError(t, err)
	s, err := tri.Snapshot()
	require.NoError(t, err)

	restored, err := FromSnapshot(s, WithLocator(LocateTree))
	require.NoError(t, err)
	for _, q := range randomPoints(53, 20, 10) {
		want, _ := tri.NearestNeighbor(q)
		got, ok := restored.NearestNeighbor(q)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestSnapshotOfDegenerateStates(t *testing.T) {
	tri := New()
	insertAll(t, tri, []r2.Point{{X: 3, Y: 3}, {X: 1, Y: 1}, {X: 2, Y: 2}})
	require.Equal(t, Segment, tri.State())

	var buf bytes.Buffer
	require.NoError(t, tri.Encode(&buf, false))
	restored, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, Segment, restored.State())
	assert.Equal(t, tri.loose, restored.loose)

	// The restored mesh picks up where the original left off.
	_, _, err = restored.Insert(r2.Point{X: 0, Y: 5}, nil)
	require.NoError(t, err)
	assert.Equal(t, Triangulated, restored.State())
	AssertValidTriangulation(t, restored)

	empty, err := FromSnapshot(&Snapshot{Format: snapshotFormat})
	require.NoError(t, err)
	assert.Equal(t, Empty, empty.State())
}

func TestInvalidSnapshots(t *testing.T) {
	corners := []SnapshotVertex{
		{Index: 0, X: 0, Y: 0},
		{Index: 1, X: 1, Y: 0},
		{Index: 2, X: 0, Y: 1},
	}
	cases := map[string]*Snapshot{
		"clockwise face":     {Format: snapshotFormat, Vertices: corners, Faces: [][3]int{{0, 2, 1}}},
		"missing vertex":     {Format: snapshotFormat, Vertices: corners, Faces: [][3]int{{0, 1, 3}}},
		"repeated vertex":    {Format: snapshotFormat, Vertices: corners, Faces: [][3]int{{0, 1, 1}}},
		"unused vertex":      {Format: snapshotFormat, Vertices: append(corners, SnapshotVertex{Index: 3, X: 5, Y: 5}), Faces: [][3]int{{0, 1, 2}}},
		"missing faces":      {Format: snapshotFormat, Vertices: corners},
		"loose constraint":   {Format: snapshotFormat, Vertices: corners[:2], Constraints: [][2]int{{0, 1}}},
		"constraint no edge": {Format: snapshotFormat, Vertices: corners, Faces: [][3]int{{0, 1, 2}}, Constraints: [][2]int{{0, 0}}},
		"slot used twice":    {Format: snapshotFormat, Vertices: append(corners, corners[0])},
		"live dead slot":     {Format: snapshotFormat, Vertices: corners[:1], Dead: []SnapshotSlot{{Index: 0}}},
		"slot out of range":  {Format: snapshotFormat, Vertices: []SnapshotVertex{{Index: 1e9}}},
		"dead out of range":  {Format: snapshotFormat, Vertices: corners, Faces: [][3]int{{0, 1, 2}}, Dead: []SnapshotSlot{{Index: 1 << 30}}},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromSnapshot(s)
			assert.True(t, errors.Is(err, ErrInvalidSnapshot), "got %v", err)
		})
	}

	_, err := DecodeSnapshot(strings.NewReader(`{"format": 99}`))
	assert.True(t, errors.Is(err, ErrInvalidSnapshot))
	_, err = DecodeSnapshot(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestSnapshotNeedsMarshalablePayloads(t *testing.T) {
	tri := New()
	h, _, err := tri.Insert(r2.Point{X: 1, Y: 2}, make(chan int))
	require.NoError(t, err)
	_, err = tri.Snapshot()
	assert.Error(t, err)

	require.NoError(t, tri.SetData(h, "fine"))
	_, err = tri.Snapshot()
	assert.NoError(t, err)
}
