package internal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

const snapshotFormat = 1

// A Snapshot is the serializable form of a triangulation. Vertices keep their
// slot and generation, so handles issued before encoding stay valid after
// decoding, and stale ones stay stale. Faces and constraints refer to vertex
// slots.
type Snapshot struct {
	Format      int              `json:"format"`
	Seed        int64            `json:"seed"`
	Vertices    []SnapshotVertex `json:"vertices"`
	Dead        []SnapshotSlot   `json:"dead,omitempty"`
	Faces       [][3]int         `json:"faces,omitempty"`
	Constraints [][2]int         `json:"constraints,omitempty"`
}

type SnapshotVertex struct {
	Index      int             `json:"i"`
	Generation uint32          `json:"g"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Data       json.RawMessage `json:"data,omitempty"`
}

type SnapshotSlot struct {
	Index      int    `json:"i"`
	Generation uint32 `json:"g"`
}

// Captures the current mesh. Payloads are stored as JSON, so they must be
// marshalable; after a round trip they come back as generic JSON values.
func (t *Triangulation) Snapshot() (*Snapshot, error) {
	s := &Snapshot{Format: snapshotFormat, Seed: t.seed}
	addVertex := func(v int) error {
		record := t.vertices.get(v)
		sv := SnapshotVertex{Index: v, Generation: t.vertices.gen(v), X: record.pos.X, Y: record.pos.Y}
		if record.data != nil {
			data, err := json.Marshal(record.data)
			if err != nil {
				return errors.Wrapf(err, "payload of vertex %v", t.vertexHandle(v))
			}
			sv.Data = data
		}
		s.Vertices = append(s.Vertices, sv)
		return nil
	}

	if t.state != Triangulated {
		// Keep the insertion order of loose vertices.
		for _, v := range t.loose {
			if err := addVertex(v); err != nil {
				return nil, err
			}
		}
	}
	for v := 0; v < t.vertices.cap(); v++ {
		switch {
		case !t.vertices.isAlive(v):
			s.Dead = append(s.Dead, SnapshotSlot{Index: v, Generation: t.vertices.gen(v)})
		case t.state == Triangulated:
			if err := addVertex(v); err != nil {
				return nil, err
			}
		}
	}
	for f := 1; f < t.faces.cap(); f++ {
		if t.faces.isAlive(f) {
			a, b, c := t.triangle(f)
			s.Faces = append(s.Faces, [3]int{a, b, c})
		}
	}
	for i := 0; i < t.edges.cap(); i++ {
		if t.edges.isAlive(i) && t.edges.get(i).constrained {
			s.Constraints = append(s.Constraints, [2]int{t.org(i << 1), t.dest(i << 1)})
		}
	}
	return s, nil
}

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// Writes the snapshot as JSON, optionally xz compressed.
func (s *Snapshot) Encode(w io.Writer, compress bool) error {
	if !compress {
		return errors.Wrap(json.NewEncoder(w).Encode(s), "encoding snapshot")
	}
	zw, err := xz.NewWriter(w)
	if err != nil {
		return errors.Wrap(err, "creating xz stream")
	}
	if err := json.NewEncoder(zw).Encode(s); err != nil {
		zw.Close()
		return errors.Wrap(err, "encoding snapshot")
	}
	return errors.Wrap(zw.Close(), "finishing xz stream")
}

// Reads a snapshot written by Encode, compressed or not.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	br := bufio.NewReader(r)
	var source io.Reader = br
	if magic, err := br.Peek(len(xzMagic)); err == nil && bytes.Equal(magic, xzMagic) {
		zr, err := xz.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "opening xz stream")
		}
		source = zr
	}
	var s Snapshot
	if err := json.NewDecoder(source).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decoding snapshot")
	}
	if s.Format != snapshotFormat {
		return nil, errors.Wrapf(ErrInvalidSnapshot, "unknown format %d", s.Format)
	}
	return &s, nil
}

func (t *Triangulation) Encode(w io.Writer, compress bool) error {
	s, err := t.Snapshot()
	if err != nil {
		return err
	}
	return s.Encode(w, compress)
}

func Decode(r io.Reader, opts ...Option) (*Triangulation, error) {
	s, err := DecodeSnapshot(r)
	if err != nil {
		return nil, err
	}
	return FromSnapshot(s, opts...)
}

// Rebuilds a triangulation from a snapshot. The seed stored in the snapshot
// applies unless an option overrides it.
func FromSnapshot(s *Snapshot, opts ...Option) (t *Triangulation, err error) {
	defer recoverError(&err)
	t = New(append([]Option{WithSeed(s.Seed)}, opts...)...)
	// Every slot below the highest one is listed, live or dead.
	slots := len(s.Vertices) + len(s.Dead)
	if uint64(slots) > math.MaxUint32 {
		return nil, errors.Wrapf(ErrInvalidSnapshot, "%d vertex slots", slots)
	}
	for _, sv := range s.Vertices {
		p := r2.Point{X: sv.X, Y: sv.Y}
		if sv.Index < 0 || sv.Index >= slots || !finite(p) {
			return nil, errors.Wrapf(ErrInvalidSnapshot, "vertex %d at %v", sv.Index, p)
		}
		if t.vertices.isAlive(sv.Index) {
			return nil, errors.Wrapf(ErrInvalidSnapshot, "vertex slot %d used twice", sv.Index)
		}
		var data interface{}
		if len(sv.Data) > 0 {
			if err := json.Unmarshal(sv.Data, &data); err != nil {
				return nil, errors.Wrapf(err, "payload of vertex %d", sv.Index)
			}
		}
		t.vertices.restore(sv.Index, sv.Generation, vertex{pos: p, data: data, out: noEdge})
	}
	for _, slot := range s.Dead {
		if slot.Index < 0 || slot.Index >= slots || t.vertices.isAlive(slot.Index) {
			return nil, errors.Wrapf(ErrInvalidSnapshot, "dead slot %d", slot.Index)
		}
		t.vertices.restoreDead(slot.Index, slot.Generation)
	}
	t.vertices.rebuildFreeList()

	if len(s.Faces) == 0 {
		if err := t.restoreLoose(s); err != nil {
			return nil, err
		}
	} else if err := t.restoreFaces(s); err != nil {
		return nil, err
	}

	if t.index != nil {
		for v := 0; v < t.vertices.cap(); v++ {
			if t.vertices.isAlive(v) {
				t.index.Insert(t.pos(v), uint64(t.vertexHandle(v)))
			}
		}
	}
	if err := t.SanityCheck(); err != nil {
		return nil, errors.Wrapf(ErrInvalidSnapshot, "%v", err)
	}
	t.logger.WithField("vertices", t.NumVertices()).WithField("faces", t.NumFaces()).Debug("restored snapshot")
	return t, nil
}

func (t *Triangulation) restoreLoose(s *Snapshot) error {
	if len(s.Constraints) > 0 {
		return errors.Wrap(ErrInvalidSnapshot, "constraints without faces")
	}
	for _, sv := range s.Vertices {
		t.loose = append(t.loose, sv.Index)
	}
	if len(t.loose) >= 3 {
		lo, hi := t.looseExtremes()
		for _, v := range t.loose {
			if t.kernel.Orient(t.pos(lo), t.pos(hi), t.pos(v)) != Collinear {
				return errors.Wrap(ErrInvalidSnapshot, "vertices span an area but there are no faces")
			}
		}
	}
	t.updateLooseState()
	return nil
}

func (t *Triangulation) restoreFaces(s *Snapshot) error {
	t.state = Triangulated
	halves := make(map[[2]int]int)
	for _, corners := range s.Faces {
		for _, v := range corners {
			if !t.vertices.isAlive(v) {
				return errors.Wrapf(ErrInvalidSnapshot, "face %v uses missing vertex %d", corners, v)
			}
		}
		f := t.faces.alloc(face{edge: noEdge})
		var loop [3]int
		for i := range corners {
			u, w := corners[i], corners[CircularIndex(i+1, 3)]
			if u == w {
				return errors.Wrapf(ErrInvalidSnapshot, "face %v repeats a vertex", corners)
			}
			if _, ok := halves[[2]int{u, w}]; ok {
				return errors.Wrapf(ErrInvalidSnapshot, "edge %d-%d appears in two faces", u, w)
			}
			e, ok := halves[[2]int{w, u}]
			if ok {
				e = twin(e)
			} else {
				e = t.newPair(u, w)
			}
			halves[[2]int{u, w}] = e
			t.half(e).face = f
			t.vertices.get(u).out = e
			loop[i] = e
		}
		for i, e := range loop {
			t.link(e, loop[CircularIndex(i+1, 3)])
		}
		t.faces.get(f).edge = loop[0]
	}

	// Halves without a face are on the hull and form the infinite loop.
	hullOut := make(map[int]int)
	for i := 0; i < t.edges.cap(); i++ {
		for _, e := range []int{i << 1, i<<1 | 1} {
			if t.face(e) != noFace {
				continue
			}
			if _, ok := hullOut[t.org(e)]; ok {
				return errors.Wrapf(ErrInvalidSnapshot, "vertex %d is on the hull twice", t.org(e))
			}
			t.half(e).face = infiniteFace
			hullOut[t.org(e)] = e
		}
	}
	for _, e := range hullOut {
		next, ok := hullOut[t.dest(e)]
		if !ok {
			return errors.Wrapf(ErrInvalidSnapshot, "hull is open at vertex %d", t.dest(e))
		}
		t.link(e, next)
		t.faces.get(infiniteFace).edge = e
	}
	if n := len(t.faceEdges(infiniteFace)); n != len(hullOut) {
		return errors.Wrapf(ErrInvalidSnapshot, "hull has %d edges in its loop but %d in total", n, len(hullOut))
	}

	for _, pair := range s.Constraints {
		if !t.vertices.isAlive(pair[0]) || !t.vertices.isAlive(pair[1]) {
			return errors.Wrapf(ErrInvalidSnapshot, "constraint %v uses a missing vertex", pair)
		}
		e := t.findEdge(pair[0], pair[1])
		if e == noEdge {
			return errors.Wrapf(ErrInvalidSnapshot, "constraint %v is not an edge", pair)
		}
		if !t.isConstrained(e) {
			t.setConstrained(e, true)
			t.constraints++
		}
	}
	t.locator.rememberFace(t.anyFace())
	return nil
}
