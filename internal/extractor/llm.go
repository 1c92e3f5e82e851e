// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package extractor

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	genkitcore "github.com/firebase/genkit/go/core"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"

	"github.com/fieldreport/sentinel/internal/config"
)

// llmClient wraps the compiled extraction flow and the model name it was
// defined against, grounded on the teacher's DefineAnalystFlow shape in
// internal/llm/analyst_flow.go.
type llmClient struct {
	flow  *genkitcore.Flow[*ExtractionRequest, *ExtractionResponse, struct{}]
	model string
}

// newLLMClient initializes genkit with the OpenAI-compatible plugin and
// defines the extraction flow. Returns (nil, nil) when cfg.Provider is
// "none" - callers must treat a nil client as "go straight to the
// pattern path" rather than an error.
func newLLMClient(ctx context.Context, cfg config.LLMConfig) (*llmClient, error) {
	if cfg.Provider == "none" || cfg.Provider == "" {
		return nil, nil
	}
	if cfg.Provider != "openai" {
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}

	g := genkit.Init(ctx,
		genkit.WithPlugins(&openai.OpenAI{APIKey: cfg.APIKey}),
		genkit.WithDefaultModel(fmt.Sprintf("openai/%s", cfg.Model)),
	)

	flow := genkit.DefineFlow(g, "conflictExtractionFlow",
		func(ctx context.Context, req *ExtractionRequest) (*ExtractionResponse, error) {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("context cancelled before extraction: %w", err)
			}
			prompt := buildExtractionPrompt(req)
			result, _, err := genkit.GenerateData[ExtractionResponse](
				ctx, g,
				ai.WithModelName(fmt.Sprintf("openai/%s", cfg.Model)),
				ai.WithPrompt(prompt),
			)
			if err != nil {
				return nil, fmt.Errorf("extraction LLM failed: %w", err)
			}
			return result, nil
		},
	)

	return &llmClient{flow: flow, model: cfg.Model}, nil
}

// extract runs the extraction flow and validates the schema. A flow error
// or a response that fails valid() is reported as ok=false so the caller
// falls through to the pattern path - never retried against the LLM
// (§9: LLM is a suggester, never the authority).
func (c *llmClient) extract(ctx context.Context, req *ExtractionRequest) (resp *ExtractionResponse, ok bool) {
	result, err := c.flow.Run(ctx, req)
	if err != nil {
		return nil, false
	}
	if result == nil || !result.valid() {
		return nil, false
	}
	return result, true
}

func buildExtractionPrompt(req *ExtractionRequest) string {
	return fmt.Sprintf(`You are a conflict-event analyst. Given the article below, decide whether it
describes one or more real-world armed-conflict events, and extract a strict
JSON object matching the ExtractionResponse schema: is_conflict (bool) and
events (array of enhanced_headline, conflict_type, severity, escalation_score
1-10, primary_actors, location{name,country,city}, casualties{killed,wounded},
weapons, timestamp, verification_confidence). If the article does not
describe a conflict event, return is_conflict=false and an empty events list.

Source: %s
Published: %s
Headline: %s

Body:
%s`, req.SourceID, req.PublishedAt, req.Headline, req.Body)
}
