package serial

// Pair holds two values encoded back to back, First then Second,
// with no length prefix.
type Pair[A, B any] struct {
	First  A
	Second B
}

// MakePair builds a Pair.
func MakePair[A, B any](a A, b B) Pair[A, B] {
	return Pair[A, B]{First: a, Second: b}
}

func (Pair[A, B]) pair() {}

// pairer marks Pair instantiations for the dispatch layer.
type pairer interface{ pair() }
