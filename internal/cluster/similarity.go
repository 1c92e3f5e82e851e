// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package cluster

import (
	"math"

	"github.com/fieldreport/sentinel/internal/models"
)

// Weights and scales from the pairwise similarity formula (§4.H).
const (
	temporalWeight   = 0.3
	geographicWeight = 0.4
	actorWeight      = 0.2
	typeWeight       = 0.1

	temporalWindowHours = 6.0
	geographicRadiusKm  = 50.0

	// groupingThreshold is the single-link clustering cutoff (§4.H).
	groupingThreshold = 0.7
)

// similarity computes sim(a, b) per §4.H's four-term weighted formula.
func similarity(a, b *models.Event) float64 {
	temporal := temporalSimilarity(a, b)
	geographic := geographicSimilarity(a, b)
	actor := actorSimilarity(a, b)
	typ := typeSimilarity(a, b)

	return temporalWeight*temporal + geographicWeight*geographic + actorWeight*actor + typeWeight*typ
}

func temporalSimilarity(a, b *models.Event) float64 {
	delta := a.Timestamp.Sub(b.Timestamp)
	if delta < 0 {
		delta = -delta
	}
	hours := delta.Hours()
	v := 1 - hours/temporalWindowHours
	if v < 0 {
		return 0
	}
	return v
}

func geographicSimilarity(a, b *models.Event) float64 {
	if a.Location == nil || b.Location == nil {
		return 0
	}
	dist := haversineKm(a.Location.Lat, a.Location.Lng, b.Location.Lat, b.Location.Lng)
	v := 1 - dist/geographicRadiusKm
	if v < 0 {
		return 0
	}
	return v
}

func actorSimilarity(a, b *models.Event) float64 {
	if len(a.PrimaryActors) == 0 && len(b.PrimaryActors) == 0 {
		return 0
	}
	setA := toSet(a.PrimaryActors)
	setB := toSet(b.PrimaryActors)

	intersection := 0
	for actor := range setA {
		if setB[actor] {
			intersection++
		}
	}
	union := len(setA)
	for actor := range setB {
		if !setA[actor] {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func typeSimilarity(a, b *models.Event) float64 {
	if a.EventType == b.EventType {
		return 1
	}
	return 0
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// haversineKm returns the great-circle distance between two coordinates
// in kilometers, mirroring the formula used by cache.SpatialHashGrid's
// internal distance check (internal/cache/spatial_hash.go).
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1Rad)*math.Cos(lat2Rad)*sinLng*sinLng
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
