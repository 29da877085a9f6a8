package tag

// Search holds the include and exclude sets for one tag search.
// The zero value is an empty search that matches every object.
type Search struct {
	included []Tag
	excluded []Tag
}

// NewSearch returns an empty search.
func NewSearch() *Search {
	return &Search{}
}

// Include appends tags that every result must carry.
func (s *Search) Include(tags ...Tag) *Search {
	s.included = append(s.included, tags...)
	return s
}

// Exclude appends tags that no result may carry.
func (s *Search) Exclude(tags ...Tag) *Search {
	s.excluded = append(s.excluded, tags...)
	return s
}

// Included returns a copy of the included tags in insertion order.
func (s *Search) Included() []Tag {
	if s == nil {
		return nil
	}
	return append([]Tag(nil), s.included...)
}

// Excluded returns a copy of the excluded tags in insertion order.
func (s *Search) Excluded() []Tag {
	if s == nil {
		return nil
	}
	return append([]Tag(nil), s.excluded...)
}

// IncludedIDs returns the ids of the included tags in insertion order.
func (s *Search) IncludedIDs() []int64 {
	if s == nil {
		return nil
	}
	return ids(s.included)
}

// ExcludedIDs returns the ids of the excluded tags in insertion order.
func (s *Search) ExcludedIDs() []int64 {
	if s == nil {
		return nil
	}
	return ids(s.excluded)
}

// IsEmpty reports whether the search has no criteria at all.
// A nil search is empty.
func (s *Search) IsEmpty() bool {
	return s == nil || (len(s.included) == 0 && len(s.excluded) == 0)
}

func ids(tags []Tag) []int64 {
	out := make([]int64, len(tags))
	for i, t := range tags {
		out[i] = t.ID
	}
	return out
}
