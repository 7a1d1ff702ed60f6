package digest

// Set holds the digests seen during a single run.
//
// Set is owned by the orchestrator and handed to every fetch by pointer.
// Entries are only ever added. Set is not safe for concurrent use; fetches
// run one at a time.
type Set struct {
	seen map[string]struct{}
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Contains reports whether d has been added.
func (s *Set) Contains(d string) bool {
	_, ok := s.seen[d]
	return ok
}

// Add records d. Adding an existing digest is a no-op.
func (s *Set) Add(d string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	s.seen[d] = struct{}{}
}

// Len returns the number of distinct digests.
func (s *Set) Len() int {
	return len(s.seen)
}
