package models

import (
	"regexp"
	"strings"
	"time"
)

// SourceKind identifies how a Source is fetched.
type SourceKind string

const (
	SourceKindRSS       SourceKind = "rss"
	SourceKindSearchAPI SourceKind = "search_api"
	SourceKindNewsAPI   SourceKind = "news_api"
)

var normalizeNamePattern = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeSourceName lowercases a display name and collapses every run of
// non-alphanumeric characters into a single underscore. It is the keying
// function for Source identity (§3: "normalized name").
func NormalizeSourceName(displayName string) string {
	lowered := strings.ToLower(strings.TrimSpace(displayName))
	normalized := normalizeNamePattern.ReplaceAllString(lowered, "_")
	return strings.Trim(normalized, "_")
}

// MaxConsecutiveFailures is the contractual threshold (§4.B) past which a
// Source is deactivated. Implementers may tune other constants but must
// keep health monotone non-increasing on failure.
const MaxConsecutiveFailures = 10

// Source is a catalogued feed or API with health and rate-limit bookkeeping.
// Identity is the normalized name; it is created on first observation,
// updated after every fetch attempt, and never deleted — reactivation after
// deactivation is an operator action (SetActive), not automatic.
type Source struct {
	ID                   string
	Name                 string // normalized, unique
	DisplayName          string
	EndpointURL          string
	Kind                 SourceKind
	Language             string
	GeographicExpertise  []string
	ReliabilityScore     float64 // [0, 100]
	BiasScore            float64 // [-1, 1]
	RateLimitPerHour     int
	Health               float64 // [0, 1]
	ConsecutiveFailures  int
	LastSuccessfulFetch  *time.Time
	DailyAccessCount     int
	DailyAccessResetAt   time.Time
	Active               bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsHealthy reports whether ConsecutiveFailures is still below
// MaxConsecutiveFailures, the point past which the §3 invariant holds the
// source at health == 0 and Active == false.
func (s *Source) IsHealthy() bool {
	return s.ConsecutiveFailures < MaxConsecutiveFailures
}
