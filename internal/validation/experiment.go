package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vicu/vicu-api/internal/model"
)

const (
	MaxTitleLength       = 120
	MaxDescriptionLength = 2000
)

func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return invalid("title", "Escribe un título para tu meta")
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return invalid("title", "El título es demasiado largo (máximo 120 caracteres)")
	}
	return nil
}

func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return invalid("description", "La descripción es demasiado larga (máximo 2000 caracteres)")
	}
	return nil
}

// ValidateDeadline rejects deadlines before today. nil means "no deadline".
func ValidateDeadline(deadline *time.Time, today time.Time) error {
	if deadline == nil {
		return nil
	}
	d := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, today.Location())
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if d.Before(t) {
		return invalid("deadline", "La fecha límite no puede estar en el pasado")
	}
	return nil
}

func ValidateSurfaceType(s string) error {
	if !model.ValidSurfaceType(s) {
		return invalid("surface_type", "Tipo de superficie no válido")
	}
	return nil
}

func ValidateExperimentType(s string) error {
	if !model.ValidExperimentType(s) {
		return invalid("experiment_type", "Tipo de meta no válido")
	}
	return nil
}

func ValidateContext(s string) error {
	if !model.ValidContext(s) {
		return invalid("context", "Contexto no válido")
	}
	return nil
}

func ValidateSelfResult(s string) error {
	switch s {
	case model.SelfResultAlto, model.SelfResultMedio, model.SelfResultBajo, model.SelfResultNone:
		return nil
	}
	return invalid("self_result", "El resultado debe ser alto, medio, bajo o none")
}
