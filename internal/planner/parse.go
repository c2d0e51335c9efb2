package planner

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/vicu/vicu-api/internal/model"
	"github.com/vicu/vicu-api/internal/textnorm"
)

// extractJSON pulls the outermost JSON value out of model output that may be
// wrapped in prose or code fences.
func extractJSON(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		s = strings.TrimSpace(rest)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(s, closer)
	if end < start {
		// Truncated output; let the repair step try to close it.
		return s[start:], true
	}
	return s[start : end+1], true
}

func decodeLenient(raw string, dst any) error {
	candidate, ok := extractJSON(raw)
	if !ok {
		return &GenerationFailure{Reason: "no json in response"}
	}
	if !json.Valid([]byte(candidate)) {
		repaired, err := jsonrepair.JSONRepair(candidate)
		if err != nil {
			return &GenerationFailure{Reason: "unrepairable json", Err: err}
		}
		candidate = repaired
	}
	if err := json.Unmarshal([]byte(candidate), dst); err != nil {
		return &GenerationFailure{Reason: "unexpected json shape", Err: err}
	}
	return nil
}

type stepsEnvelope struct {
	Steps []Step `json:"steps"`
}

// ParseSteps validates generator output into at most MaxSteps steps.
// It accepts {"steps": [...]} or a bare array.
func ParseSteps(raw string) ([]Step, error) {
	var items []Step
	candidate, _ := extractJSON(raw)
	if strings.HasPrefix(candidate, "[") {
		if err := decodeLenient(raw, &items); err != nil {
			return nil, err
		}
	} else {
		var env stepsEnvelope
		if err := decodeLenient(raw, &env); err != nil {
			return nil, err
		}
		items = env.Steps
	}

	steps := make([]Step, 0, MaxSteps)
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		steps = append(steps, Step{
			Title:       title,
			Description: strings.TrimSpace(it.Description),
			Effort:      NormalizeEffort(it.Effort),
		})
		if len(steps) == MaxSteps {
			break
		}
	}
	if len(steps) == 0 {
		return nil, &GenerationFailure{Reason: "no usable steps"}
	}
	return steps, nil
}

// ParseAttackPlan validates generator output into at most MaxChannels
// channels of MaxChannelActions actions each.
func ParseAttackPlan(raw string) (AttackPlan, error) {
	var env AttackPlan
	if err := decodeLenient(raw, &env); err != nil {
		return AttackPlan{}, err
	}

	plan := AttackPlan{}
	for _, ch := range env.Channels {
		name := strings.TrimSpace(ch.Channel)
		if name == "" {
			continue
		}
		out := PlanChannel{Channel: name}
		for _, a := range ch.Actions {
			title := strings.TrimSpace(a.Title)
			content := strings.TrimSpace(a.Content)
			if title == "" || content == "" {
				continue
			}
			actionType := strings.TrimSpace(a.Type)
			if actionType == "" {
				actionType = "mensaje"
			}
			out.Actions = append(out.Actions, PlanAction{Type: actionType, Title: title, Content: content})
			if len(out.Actions) == MaxChannelActions {
				break
			}
		}
		if len(out.Actions) == 0 {
			continue
		}
		plan.Channels = append(plan.Channels, out)
		if len(plan.Channels) == MaxChannels {
			break
		}
	}
	if len(plan.Channels) == 0 {
		return AttackPlan{}, &GenerationFailure{Reason: "no usable channels"}
	}
	return plan, nil
}

// NormalizeEffort maps free-form effort labels onto the three stored values.
func NormalizeEffort(s string) string {
	switch f := strings.ReplaceAll(textnorm.Fold(s), " ", "_"); f {
	case "muy_pequeno", "muy_pequena", "tiny", "very_small", "xs":
		return model.EffortMuyPequeno
	case "medio", "media", "medium", "m":
		return model.EffortMedio
	default:
		return model.EffortPequeno
	}
}
