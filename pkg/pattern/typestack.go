package pattern

// TypeStack is the set of (this, other) pattern pairs already under comparison
// on the current compatibility path. The zero value is empty. With returns a
// new stack, so sibling branches never see each other's pairs.
type TypeStack struct {
	pairs map[typePair]struct{}
}

type typePair struct {
	this, other string
}

// Contains reports whether the pair is already being compared.
func (s TypeStack) Contains(this, other string) bool {
	_, ok := s.pairs[typePair{this, other}]
	return ok
}

// With returns a stack that also holds the pair.
func (s TypeStack) With(this, other string) TypeStack {
	pairs := make(map[typePair]struct{}, len(s.pairs)+1)
	for p := range s.pairs {
		pairs[p] = struct{}{}
	}
	pairs[typePair{this, other}] = struct{}{}
	return TypeStack{pairs: pairs}
}

// Len returns the number of pairs.
func (s TypeStack) Len() int {
	return len(s.pairs)
}
