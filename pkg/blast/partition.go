// Overlap partitioning of hits along their query contigs.

package blast

// cluster is one growing group of transitively overlapping hits together
// with the bounding interval of their query coordinates.
type cluster struct {
	start int
	end   int
	hits  []*Hit
}

// overlaps tests interval intersection against the cluster's bounding range.
func (c *cluster) overlaps(start, end int) bool {
	return start <= c.end && end >= c.start
}

// Partitioner groups hits by contig and partitions each contig's hits into
// clusters of transitively overlapping query intervals (the connected
// components of the interval-overlap graph). Membership does not depend on
// insertion order: every insert merges ALL clusters the new interval
// touches, so two hits bridged by a later hit still land in one cluster.
type Partitioner struct {
	order    []string
	clusters map[string][]*cluster
}

func NewPartitioner() *Partitioner {
	return &Partitioner{
		clusters: make(map[string][]*cluster),
	}
}

// Add places the hit into the cluster arena for its contig, merging every
// existing cluster whose bounding interval overlaps the hit's interval.
func (p *Partitioner) Add(h *Hit) {
	existing, seen := p.clusters[h.Contig()]
	if !seen {
		p.order = append(p.order, h.Contig())
	}

	merged := &cluster{start: h.QueryStart(), end: h.QueryEnd(), hits: []*Hit{h}}
	var kept []*cluster

	for _, c := range existing {
		if !c.overlaps(h.QueryStart(), h.QueryEnd()) {
			kept = append(kept, c)
			continue
		}
		if c.start < merged.start {
			merged.start = c.start
		}
		if c.end > merged.end {
			merged.end = c.end
		}
		merged.hits = append(merged.hits, c.hits...)
	}

	p.clusters[h.Contig()] = append(kept, merged)
}

// NonOverlapping returns the overlap clusters of every contig, contigs in
// first-seen order. Each returned group is non-empty and no two groups on
// the same contig overlap.
func (p *Partitioner) NonOverlapping() [][]*Hit {
	var groups [][]*Hit
	for _, contig := range p.order {
		for _, c := range p.clusters[contig] {
			groups = append(groups, c.hits)
		}
	}
	return groups
}
