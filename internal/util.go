package internal

// Work list of half-edges waiting to be legalized.
type edgeStack []int

func (s *edgeStack) Push(edges ...int) {
	*s = append(*s, edges...)
}

func (s *edgeStack) Pop() int {
	if len(*s) == 0 {
		return noEdge
	}
	e := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return e
}

func (s *edgeStack) Empty() bool {
	return len(*s) == 0
}

// Often we want to treat an array as a circular buffer. This gives the modular
// index given length n, but unlike the raw modulo operator, it only gives positive values
func CircularIndex(i, n int) int {
	return (i%n + n) % n
}
