// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

/*
Package extractor implements the Event Extractor (component F): given an
article annotated by internal/textproc, it produces zero or more Event
drafts.

Two paths are tried in order, per §4.F. The LLM path is a
genkit.DefineFlow (grounded on the teacher's internal/llm/analyst_flow.go)
calling genkit.GenerateData[ExtractionResponse] against an
OpenAI-compatible model selected through LLMConfig.Model. A missing
provider, a flow error, or a schema-invalid response is treated as
"LLM unavailable" and falls back to the pattern path deterministically -
no retries against the LLM on schema failure (§9: "LLM as suggester,
never authority"). The pattern path is regex-only and produces at most
one event per article.

Severity/escalation overrides (nuclear-class weapons force a minimum
escalation of 8, mass-casualty events a minimum of 7) are applied to
every event regardless of path, and only ever clamp the score upward.
*/
package extractor
