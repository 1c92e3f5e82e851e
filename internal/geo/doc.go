// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
Package geo implements the Geospatial Resolver (component G): a six-tier
location resolution chain run in order, first hit wins -

  1. verified event database (exact hotspot match, confidence 1.0)
  2. ambiguity disambiguator (shared city names, confidence 0.9)
  3. enhanced mappings (curated landmarks/facilities, confidence 0.9)
  4. base mappings (major cities/regions, confidence 0.8)
  5. relative parsing ("N km north of X", confidence 0.7)
  6. geocoding API fallback (external geocoder, confidence 0.6)

Tiers 1-4 are seeded from an auditable JSON gazetteer file (see
testdata/gazetteer.json), structured the way the teacher's GeoIPProvider
chain is structured in internal/sync/geoip_provider.go, but keyed by
place name instead of IP address. Tier 6 implements the same
GeocodeProvider interface shape as the teacher's GeoIPProvider, so
additional geocoders can be added without touching the resolver.
*/
package geo
