package delaunay

// Anything that knows its own position in the plane.
type Positioned interface {
	Position() (x, y float64)
}

// Inserts items of any type, reading coordinates through coords and storing
// each item as its vertex payload. Handles line up with items. An item landing
// on an existing vertex gets that vertex's handle and does not replace its
// payload.
func InsertAll[T any](t *Triangulation, items []T, coords func(T) (x, y float64)) ([]VertexHandle, error) {
	handles := make([]VertexHandle, len(items))
	for i, item := range items {
		x, y := coords(item)
		h, _, err := t.Insert(Point{X: x, Y: y}, item)
		if err != nil {
			return nil, err
		}
		handles[i] = h
	}
	return handles, nil
}

func InsertPositioned[T Positioned](t *Triangulation, items []T) ([]VertexHandle, error) {
	return InsertAll(t, items, func(item T) (float64, float64) {
		return item.Position()
	})
}

// Reads the payload of a vertex back as the type it was inserted with.
func Payload[T any](t *Triangulation, h VertexHandle) (T, bool) {
	var zero T
	v, err := t.Vertex(h)
	if err != nil {
		return zero, false
	}
	item, ok := v.Data.(T)
	return item, ok
}
