package internal

import "fmt"

// Handles are plain integers: the low 32 bits hold the arena slot and the high
// 32 bits hold the slot generation at the time the handle was issued.

type VertexHandle uint64
type EdgeHandle uint64
type FaceHandle uint64

func packHandle(index int, gen uint32) uint64 {
	return uint64(gen)<<32 | uint64(uint32(index))
}

func unpackHandle(h uint64) (index int, gen uint32) {
	return int(uint32(h)), uint32(h >> 32)
}

func (h VertexHandle) Index() int {
	i, _ := unpackHandle(uint64(h))
	return i
}

func (h VertexHandle) String() string {
	i, g := unpackHandle(uint64(h))
	return fmt.Sprintf("v%d.%d", i, g)
}

func (h EdgeHandle) Index() int {
	i, _ := unpackHandle(uint64(h))
	return i
}

func (h EdgeHandle) String() string {
	i, g := unpackHandle(uint64(h))
	return fmt.Sprintf("e%d.%d", i, g)
}

func (h FaceHandle) Index() int {
	i, _ := unpackHandle(uint64(h))
	return i
}

func (h FaceHandle) String() string {
	i, g := unpackHandle(uint64(h))
	return fmt.Sprintf("f%d.%d", i, g)
}

// The infinite face lives in slot 0 and is never released, so its handle is
// constant.
const InfiniteFace FaceHandle = 0

func (m *mesh) vertexHandle(v int) VertexHandle {
	return VertexHandle(packHandle(v, m.vertices.gen(v)))
}

// Edge handles address half-edges. The generation is the one of the pair slot.
func (m *mesh) edgeHandle(e int) EdgeHandle {
	return EdgeHandle(packHandle(e, m.edges.gen(e>>1)))
}

func (m *mesh) faceHandle(f int) FaceHandle {
	return FaceHandle(packHandle(f, m.faces.gen(f)))
}

func (m *mesh) resolveVertex(h VertexHandle) (int, bool) {
	i, gen := unpackHandle(uint64(h))
	return i, m.vertices.valid(i, gen)
}

func (m *mesh) resolveEdge(h EdgeHandle) (int, bool) {
	i, gen := unpackHandle(uint64(h))
	return i, m.edges.valid(i>>1, gen)
}

func (m *mesh) resolveFace(h FaceHandle) (int, bool) {
	i, gen := unpackHandle(uint64(h))
	return i, m.faces.valid(i, gen)
}
