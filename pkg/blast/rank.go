package blast

import "sort"

// sortHits orders hits best-first: longer reference alignment wins, ties
// broken by higher percent identity, then by higher percent length.
func sortHits(hits []*Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].AlignmentLength() != hits[j].AlignmentLength() {
			return hits[i].AlignmentLength() > hits[j].AlignmentLength()
		}
		if hits[i].PID() != hits[j].PID() {
			return hits[i].PID() > hits[j].PID()
		}
		return hits[i].PLength() > hits[j].PLength()
	})
}

// Select ranks one overlap cluster and returns the hits to report: the
// single top hit by default, or every hit in ranked order when reportAll is
// set. With reportAll off at most one hit per cluster is returned, which is
// what prevents the same resistance locus from being reported twice through
// overlapping alignments.
func Select(hits []*Hit, reportAll bool) []*Hit {
	if len(hits) == 0 {
		return nil
	}

	ranked := make([]*Hit, len(hits))
	copy(ranked, hits)
	sortHits(ranked)

	if reportAll {
		return ranked
	}
	return ranked[:1]
}
