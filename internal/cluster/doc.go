// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
Package cluster implements the Clusterer (component H): pairwise
similarity over temporal, geographic, actor, and event-type dimensions,
single-link clustering at threshold 0.7, and primary-event selection
within each resulting group (§4.H).

Events with a resolved Location are pruned against a
cache.SpatialHashGrid before the O(n²) pairwise pass so only
geographically plausible pairs (within the 50km geographic-similarity
radius) are scored; events without a Location are compared directly
since no spatial index can help them. Clustering never drops an event -
any event whose similarity to every other falls below threshold becomes
a singleton group.
*/
package cluster
