// Package triage assigns a clinical category and urgency to new questions
// using the configured text generator. Classification never fails: any
// generator error, timeout, or unusable output falls back to general/normal.
package triage

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/caduceus/internal/prompts"
	"github.com/JaimeStill/caduceus/internal/queries"
	"github.com/JaimeStill/caduceus/pkg/ai"
	"github.com/JaimeStill/caduceus/pkg/formatting"
)

// Fallback values used when classification is unavailable.
const (
	FallbackCategory = queries.CategoryGeneral
	FallbackUrgency  = queries.UrgencyNormal
)

type decision struct {
	Category string `json:"category"`
	Urgency  string `json:"urgency_level"`
}

// Classifier implements queries.Classifier over an ai.Generator.
type Classifier struct {
	gen     ai.Generator
	prompts prompts.Source
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Classifier. Each classification is bounded by timeout.
func New(gen ai.Generator, src prompts.Source, timeout time.Duration, logger *slog.Logger) *Classifier {
	return &Classifier{
		gen:     gen,
		prompts: src,
		timeout: timeout,
		logger:  logger.With("system", "triage"),
	}
}

// Classify returns the category and urgency for question. A non-nil urgency
// is kept as given and only the category is classified.
func (c *Classifier) Classify(ctx context.Context, question string, urgency *queries.Urgency) queries.Triage {
	result := queries.Triage{
		Category: FallbackCategory,
		Urgency:  FallbackUrgency,
	}
	if urgency != nil {
		result.Urgency = *urgency
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	system, err := prompts.SystemPrompt(ctx, c.prompts, prompts.StageClassify)
	if err != nil {
		c.logger.Warn("triage fallback", "reason", "prompt unavailable", "error", err)
		return result
	}

	out, err := c.gen.Generate(ctx, system, "Patient question:\n"+question)
	if err != nil {
		c.logger.Warn("triage fallback", "reason", "generation failed", "error", err)
		return result
	}

	d := parse(out)

	if category, err := queries.ParseCategory(d.Category); err == nil {
		result.Category = category
	} else {
		c.logger.Warn("triage fallback", "reason", "unknown category", "category", d.Category)
	}

	if urgency == nil {
		if u, err := queries.ParseUrgency(d.Urgency); err == nil {
			result.Urgency = u
		}
	}

	c.logger.Info("question triaged", "category", result.Category, "urgency", result.Urgency)
	return result
}

// parse reads a JSON decision, bare or fenced. Output that is not JSON is
// treated as a bare category name.
func parse(out string) decision {
	d, err := formatting.Parse[decision](out)
	if err != nil {
		return decision{Category: strings.Trim(strings.TrimSpace(out), `."'`)}
	}
	return d
}
