package models

import "time"

// TimestampConfidence reflects how the event timestamp was derived (§4.E ExtractTemporal).
type TimestampConfidence string

const (
	TimestampHigh   TimestampConfidence = "high"
	TimestampMedium TimestampConfidence = "medium"
	TimestampLow    TimestampConfidence = "low"
)

// EventType enumerates the conflict-event taxonomy (§3).
type EventType string

const (
	EventTypeArmedConflict     EventType = "armed_conflict"
	EventTypeTerrorism         EventType = "terrorism"
	EventTypeMilitaryOperation EventType = "military_operation"
	EventTypeCivilUnrest       EventType = "civil_unrest"
	EventTypeMilitaryExercise  EventType = "military_exercise"
	EventTypeDiplomatic        EventType = "diplomatic"
	EventTypeOther             EventType = "other"
)

// Severity is the coarse bucket derived from EscalationScore (§4.F).
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityForEscalation maps an escalation score (1-10) to its severity
// bucket per the contractual thresholds in §4.F: critical >= 8, high 6-7,
// medium 4-5, low <= 3.
func SeverityForEscalation(score int) Severity {
	switch {
	case score >= 8:
		return SeverityCritical
	case score >= 6:
		return SeverityHigh
	case score >= 4:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// GeoMethod tags how a Location was resolved (§4.G resolution order).
type GeoMethod string

const (
	GeoMethodVerifiedMatch      GeoMethod = "verified_match"
	GeoMethodVerifiedCorrection GeoMethod = "verified_correction"
	GeoMethodEnhancedMapping    GeoMethod = "enhanced_mapping"
	GeoMethodBaseMapping        GeoMethod = "base_mapping"
	GeoMethodRelative           GeoMethod = "relative"
	GeoMethodGeocodingAPI       GeoMethod = "geocoding_api"
	GeoMethodUnresolved         GeoMethod = "unresolved"
)

// Location is an event's geographic placement plus the provenance of how it
// was resolved. Coordinates, when present, must lie within WGS84 ranges
// (§3, §8 Geographic validity); an invalid Location must not be persisted —
// callers should treat it as nil instead.
type Location struct {
	Lat       float64
	Lng       float64
	Name      string
	Country   string
	Region    string
	Method    GeoMethod
	Confidence float64 // [0, 1]
}

// Valid reports whether the coordinates are within WGS84 bounds.
func (l *Location) Valid() bool {
	if l == nil {
		return false
	}
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// Casualties holds the three casualty counters. A nil pointer field means
// "not reported", which is distinct from a reported zero.
type Casualties struct {
	Killed  *int
	Wounded *int
	Missing *int
}

// Event is a single structured conflict-event draft or persisted record.
// Identity is a generated id. It is created by the extractor, finalized by
// the clusterer (cluster membership pointers set), and never mutated after
// persistence except for those pointers (§3 Lifecycle).
type Event struct {
	ID                string
	Title             string
	EnhancedHeadline  string // "WHO did WHAT to WHOM, WHERE, WHEN"
	Timestamp         time.Time
	TimestampConf     TimestampConfidence
	Location          *Location
	EventType         EventType
	Severity          Severity
	EscalationScore   int // 1-10
	Casualties        Casualties
	PrimaryActors     []string
	WeaponTypes       []string
	SourceArticleIDs  []string
	Reliability       float64 // [0, 1]
	Tags              []string
	GroupID           string // set by the clusterer after persistence
	CreatedAt         time.Time
}

// EventGroup is a cluster of near-duplicate Events treated as one real-world
// incident. PrimaryEventID must be a member. Groups of size 1 are allowed
// and carry Corroborated = false (§3).
type EventGroup struct {
	ID                    string
	MemberEventIDs        []string
	PrimaryEventID        string
	GroupConfidence       float64 // [0, 1]
	CorroborationCount    int
	SourceDiversityScore  float64 // [0, 1]
	Corroborated          bool
	CreatedAt             time.Time
}

// SearchQueryAuditKind distinguishes broad (round 1) from targeted (round 2) queries.
type SearchQueryAuditKind string

const (
	QueryKindBroad    SearchQueryAuditKind = "broad"
	QueryKindTargeted SearchQueryAuditKind = "targeted"
)

// SearchQueryAudit is an append-only record of one query execution,
// retained indefinitely for debugging (§3).
type SearchQueryAudit struct {
	ID          string
	Text        string
	Kind        SearchQueryAuditKind
	Round       DiscoveryRound
	ResultCount int
	Success     bool
	ErrorText   string
	ExecutedAt  time.Time
}
