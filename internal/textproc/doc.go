// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
Package textproc implements the Text Processor (component E): language
detection, entity extraction, temporal expression resolution, relevance
scoring, and bag-of-words cosine similarity.

Lexicon matching (casualty terms, weapon terms, military-unit terms) is
compiled once, at Processor construction, into one cache.AhoCorasick
automaton per category - the teacher's reused string-matching structure,
originally built for user-agent/content-filter signature matching here
repurposed for conflict-domain lexicons. Language detection is a small
stdlib-only n-gram frequency classifier (see DESIGN.md for why no pack
library covers this narrow need) that falls back to "en" whenever its
confidence is low or the input is too short to classify.
*/
package textproc
