// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package geo

import (
	"context"
	"testing"

	"github.com/fieldreport/sentinel/internal/models"
)

const testGazetteerPath = "testdata/gazetteer.json"

func newTestResolver(t *testing.T, providers ...GeocodeProvider) *Resolver {
	t.Helper()
	r, err := New(testGazetteerPath, providers...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return r
}

func TestResolveVerifiedExactMatch(t *testing.T) {
	r := newTestResolver(t)
	loc := r.Resolve("Bakhmut", "Russian forces advanced on Bakhmut overnight.")
	if loc == nil {
		t.Fatal("expected a location, got nil")
	}
	if loc.Method != models.GeoMethodVerifiedMatch {
		t.Errorf("Method = %s, want %s", loc.Method, models.GeoMethodVerifiedMatch)
	}
	if loc.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", loc.Confidence)
	}
}

func TestResolveVerifiedAlias(t *testing.T) {
	r := newTestResolver(t)
	loc := r.Resolve("Artemivsk", "fighting continued near Artemivsk")
	if loc == nil {
		t.Fatal("expected a location via alias, got nil")
	}
	if loc.Method != models.GeoMethodVerifiedMatch {
		t.Errorf("Method = %s, want %s", loc.Method, models.GeoMethodVerifiedMatch)
	}
}

func TestResolveAmbiguousPicksCueMatchedCountry(t *testing.T) {
	r := newTestResolver(t)
	loc := r.Resolve("Tripoli", "Clashes erupted in Tripoli, Libya as militias fought near the capital.")
	if loc == nil {
		t.Fatal("expected a location, got nil")
	}
	if loc.Country != "Libya" {
		t.Errorf("Country = %s, want Libya", loc.Country)
	}
	if loc.Method != models.GeoMethodVerifiedCorrection {
		t.Errorf("Method = %s, want %s", loc.Method, models.GeoMethodVerifiedCorrection)
	}
}

func TestResolveAmbiguousOtherCandidate(t *testing.T) {
	r := newTestResolver(t)
	loc := r.Resolve("Tripoli", "The Lebanese army deployed in Tripoli amid sectarian tension.")
	if loc == nil {
		t.Fatal("expected a location, got nil")
	}
	if loc.Country != "Lebanon" {
		t.Errorf("Country = %s, want Lebanon", loc.Country)
	}
}

func TestResolveAmbiguousNoCuesFallsThrough(t *testing.T) {
	r := newTestResolver(t)
	loc := r.Resolve("Tripoli", "a city was mentioned with no further detail")
	if loc != nil {
		t.Fatalf("expected nil (no cue matched and no other tier resolves Tripoli), got %+v", loc)
	}
}

func TestResolveEnhancedMapping(t *testing.T) {
	r := newTestResolver(t)
	loc := r.Resolve("Zaporizhzhia Nuclear Power Plant", "shelling reported near the plant")
	if loc == nil {
		t.Fatal("expected a location, got nil")
	}
	if loc.Method != models.GeoMethodEnhancedMapping {
		t.Errorf("Method = %s, want %s", loc.Method, models.GeoMethodEnhancedMapping)
	}
}

func TestResolveBaseMapping(t *testing.T) {
	r := newTestResolver(t)
	loc := r.Resolve("Kharkov", "strikes hit residential blocks")
	if loc == nil {
		t.Fatal("expected a location, got nil")
	}
	if loc.Method != models.GeoMethodBaseMapping {
		t.Errorf("Method = %s, want %s", loc.Method, models.GeoMethodBaseMapping)
	}
	if loc.Country != "Ukraine" {
		t.Errorf("Country = %s, want Ukraine", loc.Country)
	}
}

func TestResolveRelativeOffsetFromAnchor(t *testing.T) {
	r := newTestResolver(t)
	loc := r.Resolve("unnamed village", "Shelling was reported 10 km north of Bakhmut this morning.")
	if loc == nil {
		t.Fatal("expected a location from relative parsing, got nil")
	}
	if loc.Method != models.GeoMethodRelative {
		t.Errorf("Method = %s, want %s", loc.Method, models.GeoMethodRelative)
	}
	bakhmut, ok := r.lookupAnyTier("bakhmut")
	if !ok {
		t.Fatal("bakhmut should be resolvable via lookupAnyTier")
	}
	if loc.Lat <= bakhmut.Lat {
		t.Errorf("expected offset north of anchor: loc.Lat=%v anchor.Lat=%v", loc.Lat, bakhmut.Lat)
	}
}

func TestResolveRelativeUnknownAnchorFails(t *testing.T) {
	r := newTestResolver(t)
	loc := r.Resolve("unnamed village", "Shelling was reported 10 km north of Nowheresville today.")
	if loc != nil {
		t.Fatalf("expected nil for unresolvable anchor, got %+v", loc)
	}
}

type stubProvider struct {
	available bool
	lat, lng  float64
	err       error
}

func (s *stubProvider) Geocode(ctx context.Context, placeName string) (float64, float64, error) {
	if s.err != nil {
		return 0, 0, s.err
	}
	return s.lat, s.lng, nil
}
func (s *stubProvider) Name() string      { return "stub" }
func (s *stubProvider) IsAvailable() bool { return s.available }

func TestResolveGeocodingAPIFallback(t *testing.T) {
	provider := &stubProvider{available: true, lat: 48.5, lng: 35.0}
	r := newTestResolver(t, provider)
	loc := r.Resolve("Some Unmapped Town", "no gazetteer tier covers this")
	if loc == nil {
		t.Fatal("expected a location via geocoding API fallback, got nil")
	}
	if loc.Method != models.GeoMethodGeocodingAPI {
		t.Errorf("Method = %s, want %s", loc.Method, models.GeoMethodGeocodingAPI)
	}
	if loc.Confidence != 0.6 {
		t.Errorf("Confidence = %v, want 0.6", loc.Confidence)
	}
}

func TestResolveGeocodingAPISkipsUnavailableProvider(t *testing.T) {
	unavailable := &stubProvider{available: false}
	fallback := &stubProvider{available: true, lat: 1, lng: 2}
	r := newTestResolver(t, unavailable, fallback)
	loc := r.Resolve("Some Unmapped Town", "")
	if loc == nil {
		t.Fatal("expected a location from the second provider, got nil")
	}
}

func TestResolveNoTierMatchesReturnsNil(t *testing.T) {
	r := newTestResolver(t)
	loc := r.Resolve("Totally Unknown Place", "nothing here matches any tier")
	if loc != nil {
		t.Fatalf("expected nil, got %+v", loc)
	}
}

func TestResolveDiscardsInvalidCoordinates(t *testing.T) {
	provider := &stubProvider{available: true, lat: 999, lng: 999}
	r := newTestResolver(t, provider)
	loc := r.Resolve("Some Unmapped Town", "")
	if loc != nil {
		t.Fatalf("expected nil for out-of-range WGS84 coordinates, got %+v", loc)
	}
}

func TestResolveEmptyHintReturnsNil(t *testing.T) {
	r := newTestResolver(t)
	if loc := r.Resolve("", "some text"); loc != nil {
		t.Fatalf("expected nil for empty hint, got %+v", loc)
	}
}
