// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/fieldreport/sentinel/internal/config"
)

// GeocodeProvider is tier 6 of the resolution order: an external
// geocoding API, tried after every local gazetteer tier has missed.
// Shaped identically to the teacher's GeoIPProvider interface
// (internal/sync/geoip_provider.go), retargeted from IP address to
// place name so additional geocoders can be added without touching the
// resolver.
type GeocodeProvider interface {
	// Geocode returns coordinates for placeName, or an error if the
	// lookup fails.
	Geocode(ctx context.Context, placeName string) (lat, lng float64, err error)

	// Name returns the provider name for logging.
	Name() string

	// IsAvailable reports whether the provider is configured and usable.
	IsAvailable() bool
}

// NominatimProvider implements GeocodeProvider against the OpenStreetMap
// Nominatim search API (or a self-hosted instance at cfg.Endpoint).
type NominatimProvider struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NewNominatimProvider builds a provider from GeocodingConfig. Returns
// nil if cfg.Provider is not "nominatim".
func NewNominatimProvider(cfg config.GeocodingConfig) *NominatimProvider {
	if cfg.Provider != "nominatim" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://nominatim.openstreetmap.org/search"
	}
	return &NominatimProvider{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
	}
}

// Name returns the provider name.
func (p *NominatimProvider) Name() string { return "nominatim" }

// IsAvailable reports whether the provider was configured.
func (p *NominatimProvider) IsAvailable() bool { return p != nil }

// Geocode queries Nominatim's search endpoint for placeName and returns
// the first result's coordinates.
func (p *NominatimProvider) Geocode(ctx context.Context, placeName string) (float64, float64, error) {
	q := url.Values{}
	q.Set("q", placeName)
	q.Set("format", "json")
	q.Set("limit", "1")
	if p.apiKey != "" {
		q.Set("key", p.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("build nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", "sentinel-conflict-event-pipeline/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no geocoding result for %q", placeName)
	}

	var lat, lng float64
	if _, err := fmt.Sscanf(results[0].Lat, "%f", &lat); err != nil {
		return 0, 0, fmt.Errorf("parse nominatim lat: %w", err)
	}
	if _, err := fmt.Sscanf(results[0].Lon, "%f", &lng); err != nil {
		return 0, 0, fmt.Errorf("parse nominatim lng: %w", err)
	}
	return lat, lng, nil
}
