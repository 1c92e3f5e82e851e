// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package cluster

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fieldreport/sentinel/internal/cache"
	"github.com/fieldreport/sentinel/internal/models"
)

// Clusterer groups candidate events from one ingestion cycle into
// EventGroups (component H).
type Clusterer struct {
	cellSizeKm float64
}

// New builds a Clusterer. cellSizeKm sizes the spatial hash grid used to
// prune candidate pairs before pairwise scoring; 0 uses the geographic
// similarity radius (§4.H).
func New(cellSizeKm float64) *Clusterer {
	if cellSizeKm <= 0 {
		cellSizeKm = geographicRadiusKm
	}
	return &Clusterer{cellSizeKm: cellSizeKm}
}

// Cluster partitions events into EventGroups via single-link clustering
// at groupingThreshold (§4.H). Every event ends up in exactly one group;
// an event similar to nothing becomes a singleton.
func (c *Clusterer) Cluster(events []*models.Event) []*models.EventGroup {
	if len(events) == 0 {
		return nil
	}

	for _, e := range events {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
	}

	uf := newUnionFind(len(events))

	for _, pair := range c.candidatePairs(events) {
		if similarity(events[pair[0]], events[pair[1]]) >= groupingThreshold {
			uf.union(pair[0], pair[1])
		}
	}

	members := make(map[int][]int)
	for i := range events {
		root := uf.find(i)
		members[root] = append(members[root], i)
	}

	groups := make([]*models.EventGroup, 0, len(members))
	for _, idxs := range members {
		groups = append(groups, c.buildGroup(events, idxs))
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].PrimaryEventID < groups[j].PrimaryEventID })
	return groups
}

// candidatePairs returns index pairs worth scoring: events with a
// resolved Location are pruned via a spatial hash grid to those within
// the geographic similarity radius; events without a Location are
// compared against every other event since no spatial index helps them
// (geographicSimilarity is 0 for any pair missing a Location, so such a
// pair scores at most 0.6 and stays below groupingThreshold).
func (c *Clusterer) candidatePairs(events []*models.Event) [][2]int {
	grid := cache.NewSpatialHashGrid(c.cellSizeKm)
	var located, unlocated []int
	for i, e := range events {
		if e.Location != nil {
			grid.Insert(e.ID, e.Location.Lat, e.Location.Lng, e.Timestamp, i)
			located = append(located, i)
		} else {
			unlocated = append(unlocated, i)
		}
	}

	seen := make(map[[2]int]bool)
	var pairs [][2]int
	add := func(a, b int) {
		if a == b {
			return
		}
		if a > b {
			a, b = b, a
		}
		key := [2]int{a, b}
		if !seen[key] {
			seen[key] = true
			pairs = append(pairs, key)
		}
	}

	for _, i := range located {
		e := events[i]
		for _, entry := range grid.QueryNearby(e.Location.Lat, e.Location.Lng, geographicRadiusKm) {
			j, ok := entry.Data.(int)
			if !ok {
				continue
			}
			add(i, j)
		}
	}

	for a := 0; a < len(unlocated); a++ {
		for b := a + 1; b < len(unlocated); b++ {
			add(unlocated[a], unlocated[b])
		}
		for _, j := range located {
			add(unlocated[a], j)
		}
	}

	return pairs
}

// buildGroup computes group_confidence, corroboration_count,
// source_diversity_score, and primary selection (§3, §4.H) for one
// cluster of event indices.
func (c *Clusterer) buildGroup(events []*models.Event, idxs []int) *models.EventGroup {
	members := make([]*models.Event, len(idxs))
	for i, idx := range idxs {
		members[i] = events[idx]
	}

	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.ID
	}
	sort.Strings(memberIDs)

	confidence := meanPairwiseSimilarity(members)

	sourceIDs := make(map[string]bool)
	for _, m := range members {
		for _, sid := range m.SourceArticleIDs {
			sourceIDs[sid] = true
		}
	}
	corroborationCount := len(sourceIDs)
	diversity := 0.0
	if len(members) > 0 {
		diversity = float64(corroborationCount) / float64(len(members))
	}

	primary := selectPrimary(members)

	return &models.EventGroup{
		MemberEventIDs:       memberIDs,
		PrimaryEventID:       primary.ID,
		GroupConfidence:      confidence,
		CorroborationCount:   corroborationCount,
		SourceDiversityScore: diversity,
		Corroborated:         len(members) > 1,
		CreatedAt:            time.Now(),
	}
}

// meanPairwiseSimilarity is group_confidence (§4.H): the mean of every
// within-group pairwise similarity. A singleton group has confidence 1.
func meanPairwiseSimilarity(members []*models.Event) float64 {
	if len(members) <= 1 {
		return 1.0
	}
	total := 0.0
	count := 0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			total += similarity(members[i], members[j])
			count++
		}
	}
	if count == 0 {
		return 1.0
	}
	return total / float64(count)
}

// selectPrimary applies §3's rule: highest reliability, ties broken by
// earliest timestamp, then by lexicographic event id.
func selectPrimary(members []*models.Event) *models.Event {
	best := members[0]
	for _, m := range members[1:] {
		if m.Reliability > best.Reliability {
			best = m
			continue
		}
		if m.Reliability < best.Reliability {
			continue
		}
		if m.Timestamp.Before(best.Timestamp) {
			best = m
			continue
		}
		if m.Timestamp.After(best.Timestamp) {
			continue
		}
		if m.ID < best.ID {
			best = m
		}
	}
	return best
}

// unionFind is a standard disjoint-set structure for single-link clustering.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
