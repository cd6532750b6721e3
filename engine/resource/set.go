package resource

// Set is an insertion-ordered set of resources keyed by identity.
// The zero value is ready to use.
type Set struct {
	order []Resource
	seen  map[Resource]struct{}
}

// Add inserts r if it is not already present. Nil resources are ignored.
//
// Parameters:
//   - r: the resource to add
//
// Returns:
//   - bool: true if r was newly added
func (s *Set) Add(r Resource) bool {
	if r == nil {
		return false
	}
	if s.seen == nil {
		s.seen = make(map[Resource]struct{})
	}
	if _, ok := s.seen[r]; ok {
		return false
	}
	s.seen[r] = struct{}{}
	s.order = append(s.order, r)
	return true
}

// Contains reports whether r is in the set.
func (s *Set) Contains(r Resource) bool {
	_, ok := s.seen[r]
	return ok
}

// Len returns the number of distinct resources.
func (s *Set) Len() int {
	return len(s.order)
}

// Items returns the resources in insertion order.
func (s *Set) Items() []Resource {
	out := make([]Resource, len(s.order))
	copy(out, s.order)
	return out
}

// ReleaseAll releases every resource once, in insertion order, and empties the set.
// Failures do not stop the walk; the callback receives each failed resource and its error.
//
// Parameters:
//   - rel: the releaser to free resources through
//   - onErr: called for each failed release (may be nil)
//
// Returns:
//   - int: the number of resources released without error
func (s *Set) ReleaseAll(rel Releaser, onErr func(Resource, error)) int {
	released := 0
	for _, r := range s.order {
		if err := rel.Release(r); err != nil {
			if onErr != nil {
				onErr(r, err)
			}
			continue
		}
		released++
	}
	s.order = nil
	s.seen = nil
	return released
}
