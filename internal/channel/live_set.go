package channel

// LiveSet holds the logins reported as broadcasting for a single request.
type LiveSet struct {
	keys map[string]struct{}
}

// NewLiveSet builds a set from upstream logins. Casing and duplicates are
// ignored; empty logins are dropped.
func NewLiveSet(logins ...string) LiveSet {
	s := LiveSet{keys: make(map[string]struct{}, len(logins))}
	for _, login := range logins {
		key := Key(login)
		if key == "" {
			continue
		}
		s.keys[key] = struct{}{}
	}
	return s
}

// Has reports whether name is live, ignoring case.
func (s LiveSet) Has(name string) bool {
	_, ok := s.keys[Key(name)]
	return ok
}

// Len returns the number of distinct live logins.
func (s LiveSet) Len() int {
	return len(s.keys)
}
