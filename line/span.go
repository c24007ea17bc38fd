package line

import "slices"

// Span is a half-open range of columns.
type Span struct {
	Start, End int
}

// Empty reports whether the span covers no columns.
func (s Span) Empty() bool { return s.End <= s.Start }

// Len returns the number of columns covered.
func (s Span) Len() int { return max(s.End-s.Start, 0) }

// Overlaps reports whether s and o share a column.
func (s Span) Overlaps(o Span) bool {
	return !s.Empty() && !o.Empty() && s.Start < o.End && o.Start < s.End
}

// Contains reports whether s covers all of o.
func (s Span) Contains(o Span) bool {
	return !o.Empty() && s.Start <= o.Start && o.End <= s.End
}

// Clamp limits s to [0, cols).
func (s Span) Clamp(cols int) Span {
	s.Start = min(max(s.Start, 0), cols)
	s.End = min(max(s.End, s.Start), cols)
	return s
}

// SplitSpans partitions span at every boundary of ranges that falls
// strictly inside it. The result covers span exactly, in order, with no
// gaps or overlaps. Each range contributes at most two cuts, so a single
// range yields at most three sub-spans.
func SplitSpans(span Span, ranges ...Span) []Span {
	if span.Empty() {
		return nil
	}
	cuts := make([]int, 0, 2*len(ranges))
	for _, r := range ranges {
		if !r.Overlaps(span) {
			continue
		}
		for _, c := range [2]int{r.Start, r.End} {
			if c > span.Start && c < span.End {
				cuts = append(cuts, c)
			}
		}
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	out := make([]Span, 0, len(cuts)+1)
	start := span.Start
	for _, c := range cuts {
		out = append(out, Span{Start: start, End: c})
		start = c
	}
	return append(out, Span{Start: start, End: span.End})
}
