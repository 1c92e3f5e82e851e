package models

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// DiscoveryRound identifies whether an Article came from the broad round
// (round 1) or the entity-targeted round (round 2).
type DiscoveryRound int

const (
	RoundBroad    DiscoveryRound = 1
	RoundTargeted DiscoveryRound = 2
)

var (
	trailingSlashes = regexp.MustCompile(`/+$`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// trackingParamPrefixes and trackingParamNames are stripped by CanonicalizeURL.
var trackingParamPrefixes = []string{"utm_"}
var trackingParamNames = map[string]bool{
	"fbclid": true,
	"gclid":  true,
}

// CanonicalizeURL implements the §4.D canonicalization rule: lowercase
// scheme/host, strip fragment, strip known tracking query parameters, and
// collapse trailing slashes. It is idempotent:
// CanonicalizeURL(CanonicalizeURL(u)) == CanonicalizeURL(u).
func CanonicalizeURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	query := parsed.Query()
	for key := range query {
		lowerKey := strings.ToLower(key)
		if trackingParamNames[lowerKey] {
			query.Del(key)
			continue
		}
		for _, prefix := range trackingParamPrefixes {
			if strings.HasPrefix(lowerKey, prefix) {
				query.Del(key)
				break
			}
		}
	}
	parsed.RawQuery = query.Encode()

	parsed.Path = trailingSlashes.ReplaceAllString(parsed.Path, "")
	if parsed.Path == "" {
		parsed.Path = "/"
	}

	return parsed.String()
}

// NormalizeBodyText lowercases and collapses whitespace runs, the
// normalization ContentHash is computed over.
func NormalizeBodyText(body string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(strings.ToLower(body), " "))
}

// ComputeContentHash is §4.D's bodyHash: SHA-256 over the normalized body
// text only, no URL. This is what lets wire-service syndication - the same
// article body published under different URLs - collapse onto one row.
func ComputeContentHash(body string) string {
	h := sha256.New()
	h.Write([]byte(NormalizeBodyText(body)))
	return hex.EncodeToString(h.Sum(nil))
}

// Article is a single fetched news item, immutable once created. Its
// ContentHash is unique across all runs; a duplicate insert collapses onto
// the existing row (§3, §8 Dedup closure).
type Article struct {
	ID              string
	ContentHash     string
	URL             string // canonicalized
	Headline        string
	Body            string
	PublishedAt     time.Time
	SourceID        string
	DiscoveryRound  DiscoveryRound
	DiscoveryQuery  string
	Language        string
	RelevanceScore  float64
	CreatedAt       time.Time
}
