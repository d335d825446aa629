package core

// Span is a half-open [Start, End) byte interval in document text.
//
// All overlap and containment tests in the system go through this type so
// the interval comparisons stay consistent everywhere they are needed.
type Span struct {
	Start int
	End   int
}

// Overlaps reports whether the two half-open intervals intersect.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Contains reports whether pos falls inside the interval.
func (s Span) Contains(pos int) bool {
	return s.Start <= pos && pos < s.End
}

// Len returns the interval length.
func (s Span) Len() int {
	return s.End - s.Start
}
