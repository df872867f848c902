package merge

// Set is a membership-only map.
type Set[T comparable] map[T]struct{}

func NewSet[T comparable](capacity int) Set[T] {
	return make(Set[T], capacity)
}

func (s Set[T]) Add(item T) {
	s[item] = struct{}{}
}

func (s Set[T]) Contains(item T) bool {
	_, exists := s[item]
	return exists
}

// AddIfAbsent adds item and reports whether it was not yet present.
func (s Set[T]) AddIfAbsent(item T) bool {
	if s.Contains(item) {
		return false
	}
	s.Add(item)
	return true
}

func (s Set[T]) Size() int {
	return len(s)
}
