// Package planner turns goals into steps and attack plans using a language
// model, falling back to fixed content when the model is unavailable or
// returns something unusable.
package planner

import (
	"context"
	"log/slog"

	"github.com/vicu/vicu-api/internal/llm"
	"github.com/vicu/vicu-api/internal/metrics"
)

const (
	kindSteps      = "steps"
	kindAttackPlan = "attack_plan"
)

type Planner struct {
	llm     llm.Completer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New returns a Planner. A nil completer means every request uses fallbacks.
func New(completer llm.Completer, m *metrics.Metrics, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{llm: completer, metrics: m, logger: logger}
}

// GenerateSteps returns between one and MaxSteps steps and where they came from.
func (p *Planner) GenerateSteps(ctx context.Context, req StepRequest) ([]Step, string) {
	if p.llm != nil {
		raw, err := p.llm.Complete(ctx, stepsSystemPrompt, stepsUserPrompt(req))
		if err == nil {
			steps, perr := ParseSteps(raw)
			if perr == nil {
				p.metrics.Generation(kindSteps, SourceGenerated)
				return steps, SourceGenerated
			}
			err = perr
		}
		p.logger.WarnContext(ctx, "step generation fell back", "error", err, "goal", req.GoalTitle)
	}

	p.metrics.Generation(kindSteps, SourceFallback)
	return FallbackSteps(req.GoalTitle, req.GoalDescription), SourceFallback
}

// GenerateAttackPlan returns a non-empty plan and where it came from.
func (p *Planner) GenerateAttackPlan(ctx context.Context, brief Brief) (AttackPlan, string) {
	if p.llm != nil {
		raw, err := p.llm.Complete(ctx, attackPlanSystemPrompt, attackPlanUserPrompt(brief))
		if err == nil {
			plan, perr := ParseAttackPlan(raw)
			if perr == nil {
				p.metrics.Generation(kindAttackPlan, SourceGenerated)
				return plan, SourceGenerated
			}
			err = perr
		}
		p.logger.WarnContext(ctx, "attack plan generation fell back", "error", err, "goal", brief.Title)
	}

	p.metrics.Generation(kindAttackPlan, SourceFallback)
	return FallbackAttackPlan(brief.SurfaceType), SourceFallback
}
