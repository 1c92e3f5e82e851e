// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package geo

import (
	"context"
	"strings"

	"github.com/fieldreport/sentinel/internal/logging"
	"github.com/fieldreport/sentinel/internal/models"
)

// coordinateTolerance is the post-condition's allowed drift (§4.G:
// "|Δlat|<0.1 and |Δlng|<0.1") before a verified correction overrides a
// lower-confidence tier's result.
const coordinateTolerance = 0.1

// Resolver implements the six-tier location resolution chain (§4.G),
// grounded on the teacher's GeoIPResolver (internal/sync/geoip_provider.go)
// cache-then-provider-chain shape, retargeted to gazetteer tiers plus an
// external geocoder fallback.
type Resolver struct {
	gazetteer *gazetteer
	providers []GeocodeProvider
}

// New builds a Resolver from the gazetteer file at gazetteerPath (tiers
// 1-4) plus zero or more geocoding providers tried in order for tier 6.
func New(gazetteerPath string, providers ...GeocodeProvider) (*Resolver, error) {
	g, err := loadGazetteer(gazetteerPath)
	if err != nil {
		return nil, err
	}
	return &Resolver{gazetteer: g, providers: providers}, nil
}

// Resolve implements the contract in §4.G: given a location hint (as
// extracted by internal/textproc/internal/extractor) and the article
// text it was drawn from (for disambiguation cues), returns a Location
// or nil if no tier can place it, or if the only available coordinates
// fail WGS84 validity.
func (r *Resolver) Resolve(hint, contextText string) *models.Location {
	if hint == "" {
		return nil
	}
	key := normalizeKey(hint)

	if loc := r.resolveVerified(key); loc != nil {
		return r.finalize(loc)
	}
	if loc := r.resolveAmbiguous(key, contextText); loc != nil {
		return r.finalize(loc)
	}
	if loc := r.resolveMapping(r.gazetteer.enhancedIndex, key, models.GeoMethodEnhancedMapping, 0.9); loc != nil {
		return r.finalize(r.applyVerifiedCorrection(key, loc))
	}
	if loc := r.resolveMapping(r.gazetteer.baseIndex, key, models.GeoMethodBaseMapping, 0.8); loc != nil {
		return r.finalize(r.applyVerifiedCorrection(key, loc))
	}
	if resolved, ok := r.resolveRelative(contextText); ok {
		loc := &models.Location{
			Lat: resolved.Lat, Lng: resolved.Lng,
			Country: resolved.Country, Region: resolved.Region,
			Name: hint, Method: models.GeoMethodRelative, Confidence: 0.7,
		}
		return r.finalize(r.applyVerifiedCorrection(key, loc))
	}
	if loc := r.resolveGeocodingAPI(hint); loc != nil {
		return r.finalize(loc)
	}
	return nil
}

func (r *Resolver) resolveVerified(key string) *models.Location {
	e, ok := r.gazetteer.verifiedIndex[key]
	if !ok {
		return nil
	}
	return &models.Location{
		Lat: e.Lat, Lng: e.Lng, Name: e.Name, Country: e.Country, Region: e.Region,
		Method: models.GeoMethodVerifiedMatch, Confidence: 1.0,
	}
}

// resolveAmbiguous scores each candidate country by how many of its cue
// words appear in contextText, picking the best match (§4.G tier 2).
func (r *Resolver) resolveAmbiguous(key, contextText string) *models.Location {
	city, ok := r.gazetteer.ambiguousIndex[key]
	if !ok {
		return nil
	}

	lowerContext := strings.ToLower(contextText)
	var best *AmbiguousCandidate
	bestScore := 0
	for i := range city.Candidates {
		c := &city.Candidates[i]
		score := 0
		for _, cue := range c.Cues {
			if strings.Contains(lowerContext, strings.ToLower(cue)) {
				score++
			}
		}
		if best == nil || score > bestScore {
			bestScore = score
			best = c
		}
	}
	if best == nil || bestScore == 0 {
		return nil
	}

	return &models.Location{
		Lat: best.Lat, Lng: best.Lng, Name: city.Name, Country: best.Country, Region: best.Region,
		Method: models.GeoMethodVerifiedCorrection, Confidence: 0.9,
	}
}

func (r *Resolver) resolveMapping(index map[string]Mapping, key string, method models.GeoMethod, confidence float64) *models.Location {
	m, ok := index[key]
	if !ok {
		return nil
	}
	return &models.Location{
		Lat: m.Lat, Lng: m.Lng, Name: m.Name, Country: m.Country, Region: m.Region,
		Method: method, Confidence: confidence,
	}
}

func (r *Resolver) resolveGeocodingAPI(hint string) *models.Location {
	for _, p := range r.providers {
		if !p.IsAvailable() {
			continue
		}
		lat, lng, err := p.Geocode(context.Background(), hint)
		if err != nil {
			logging.Debug().Err(err).Str("provider", p.Name()).Str("hint", hint).Msg("geocode provider failed")
			continue
		}
		return &models.Location{
			Lat: lat, Lng: lng, Name: hint,
			Method: models.GeoMethodGeocodingAPI, Confidence: 0.6,
		}
	}
	return nil
}

// lookupAnyTier is used by tier 5's relative parsing to resolve its
// anchor place name against the verified/enhanced/base tiers, in that
// priority order.
func (r *Resolver) lookupAnyTier(key string) (*resolvedLocation, bool) {
	if e, ok := r.gazetteer.verifiedIndex[key]; ok {
		return &resolvedLocation{Lat: e.Lat, Lng: e.Lng, Country: e.Country, Region: e.Region}, true
	}
	if m, ok := r.gazetteer.enhancedIndex[key]; ok {
		return &resolvedLocation{Lat: m.Lat, Lng: m.Lng, Country: m.Country, Region: m.Region}, true
	}
	if m, ok := r.gazetteer.baseIndex[key]; ok {
		return &resolvedLocation{Lat: m.Lat, Lng: m.Lng, Country: m.Country, Region: m.Region}, true
	}
	return nil, false
}

// applyVerifiedCorrection enforces the §4.G post-condition: if the
// verified or ambiguity tiers have their own answer for key and it
// disagrees with loc by more than coordinateTolerance, the verified
// answer wins and the method is downgraded to verified_correction.
func (r *Resolver) applyVerifiedCorrection(key string, loc *models.Location) *models.Location {
	var verifiedLat, verifiedLng float64
	var verifiedCountry, verifiedRegion string
	found := false

	if e, ok := r.gazetteer.verifiedIndex[key]; ok {
		verifiedLat, verifiedLng, verifiedCountry, verifiedRegion = e.Lat, e.Lng, e.Country, e.Region
		found = true
	} else if city, ok := r.gazetteer.ambiguousIndex[key]; ok && len(city.Candidates) > 0 {
		c := city.Candidates[0]
		verifiedLat, verifiedLng, verifiedCountry, verifiedRegion = c.Lat, c.Lng, c.Country, c.Region
		found = true
	}

	if !found {
		return loc
	}
	if diff(loc.Lat, verifiedLat) < coordinateTolerance && diff(loc.Lng, verifiedLng) < coordinateTolerance {
		return loc
	}

	loc.Lat, loc.Lng = verifiedLat, verifiedLng
	loc.Country, loc.Region = verifiedCountry, verifiedRegion
	loc.Method = models.GeoMethodVerifiedCorrection
	loc.Confidence = 0.9
	return loc
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// finalize discards a Location whose coordinates fail WGS84 validity
// (§4.G post-condition: "the whole resolution returns null").
func (r *Resolver) finalize(loc *models.Location) *models.Location {
	if loc == nil || !loc.Valid() {
		return nil
	}
	return loc
}
