// Package recommendation advises what a goal should do next from its
// execution metrics. All functions are pure.
package recommendation

import (
	"fmt"
	"math"
	"time"

	"github.com/vicu/vicu-api/internal/cadence"
	"github.com/vicu/vicu-api/internal/model"
)

const (
	minVisits           = 10
	minLeadsForAchieved = 5
	achievedConversion  = 0.15
	adjustConversion    = 0.05
	halfPlan            = 0.5
)

const (
	ColorBlue   = "blue"
	ColorYellow = "yellow"
	ColorOrange = "orange"
	ColorGreen  = "green"
	ColorGray   = "gray"
	ColorPurple = "purple"
)

type LandingInput struct {
	Visits       int
	Leads        int
	TotalActions int
	DoneActions  int
}

type NonLandingInput struct {
	TotalActions int
	DoneActions  int
	SelfResult   string
}

// Input is everything Calculate needs about one goal.
type Input struct {
	SurfaceType string
	Stage       model.Stage
	CreatedAt   time.Time
	// DecisionCadenceDays overrides the default decision window when > 0.
	DecisionCadenceDays int
	Landing             LandingInput
	NonLanding          NonLandingInput
}

func ratio(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total)
}

func percent(f float64) int {
	return int(math.Round(f * 100))
}

// Landing evaluates a goal whose surface is a landing page.
func Landing(in LandingInput) model.Recommendation {
	done := ratio(in.DoneActions, in.TotalActions)
	conversion := ratio(in.Leads, in.Visits)

	if done >= 1 && in.Visits < minVisits {
		return model.Recommendation{
			Action: model.RecommendationKeepTesting,
			Title:  "Sigue probando",
			Justification: fmt.Sprintf(
				"Completaste todo tu plan, pero con %d visitas todavía no hay datos suficientes para juzgar.",
				in.Visits),
			NextSteps: []string{
				fmt.Sprintf("Consigue %d visitas más compartiendo tu página.", minVisits-in.Visits),
				"Publica tu enlace en un canal que no hayas usado.",
			},
			Color: ColorYellow,
		}
	}

	if done < halfPlan || in.Visits < minVisits {
		return model.Recommendation{
			Action: model.RecommendationKeepBuilding,
			Title:  "Sigue construyendo",
			Justification: fmt.Sprintf(
				"Llevas %d%% de tu plan y %d visitas; aún es pronto para sacar conclusiones.",
				percent(done), in.Visits),
			NextSteps: landingGaps(in, done),
			Color:     ColorBlue,
		}
	}

	switch {
	case conversion >= achievedConversion && in.Leads >= minLeadsForAchieved:
		return model.Recommendation{
			Action: model.RecommendationAchieved,
			Title:  "¡Lo lograste!",
			Justification: fmt.Sprintf(
				"%d de %d visitas dejaron sus datos (%d%%). Eso es una señal clara.",
				in.Leads, in.Visits, percent(conversion)),
			NextSteps: []string{
				"Contacta hoy a tus interesados.",
				"Define el siguiente objetivo a partir de lo aprendido.",
			},
			Color: ColorGreen,
		}
	case conversion >= adjustConversion:
		return model.Recommendation{
			Action: model.RecommendationAdjust,
			Title:  "Ajusta y vuelve a probar",
			Justification: fmt.Sprintf(
				"Tu conversión es de %d%%: hay interés, pero el mensaje puede mejorar.",
				percent(conversion)),
			NextSteps: []string{
				"Cambia el titular de tu página para que sea más concreto.",
				"Pregunta a dos visitantes qué les frenó.",
				"Prueba una oferta más sencilla.",
			},
			Color: ColorOrange,
		}
	default:
		return model.Recommendation{
			Action: model.RecommendationPause,
			Title:  "Considera pausar",
			Justification: fmt.Sprintf(
				"Con %d visitas y %d%% de conversión, la idea no está conectando por ahora.",
				in.Visits, percent(conversion)),
			NextSteps: []string{
				"Pausa esta meta y anota lo que aprendiste.",
				"Revisa si el problema es la audiencia o la oferta.",
			},
			Color: ColorGray,
		}
	}
}

func landingGaps(in LandingInput, done float64) []string {
	var steps []string
	if in.TotalActions == 0 {
		steps = append(steps, "Genera tu plan de ataque para empezar a mover tu página.")
	} else if done < halfPlan {
		missing := int(math.Ceil(float64(in.TotalActions)*halfPlan)) - in.DoneActions
		if missing < 1 {
			missing = 1
		}
		steps = append(steps, fmt.Sprintf("Completa %d acciones más de tu plan para llegar a la mitad.", missing))
	}
	if in.Visits < minVisits {
		steps = append(steps, fmt.Sprintf("Consigue al menos %d visitas (llevas %d).", minVisits, in.Visits))
		if done >= halfPlan {
			steps = append(steps, "Diversifica: comparte tu página en un canal nuevo.")
		}
	}
	if len(steps) == 0 {
		steps = append(steps, "Sigue ejecutando tu plan.")
	}
	return steps
}

// NonLanding evaluates message and ritual goals, which rely on the user's own
// rating once the plan is complete.
func NonLanding(in NonLandingInput) model.Recommendation {
	done := ratio(in.DoneActions, in.TotalActions)

	switch {
	case done < halfPlan:
		return model.Recommendation{
			Action:        model.RecommendationKeepBuilding,
			Title:         "Apenas empiezas",
			Justification: fmt.Sprintf("Llevas %d%% de tu plan. Lo importante ahora es avanzar.", percent(done)),
			NextSteps: []string{
				"Elige la acción más pequeña de tu plan y hazla hoy.",
				"Aparta 15 minutos fijos para tu meta.",
			},
			Color: ColorBlue,
		}
	case done < 1:
		return model.Recommendation{
			Action:        model.RecommendationKeepBuilding,
			Title:         "Ya casi",
			Justification: fmt.Sprintf("Llevas %d%% de tu plan. Termina lo que falta antes de evaluar.", percent(done)),
			NextSteps: []string{
				fmt.Sprintf("Te faltan %d acciones.", in.TotalActions-in.DoneActions),
				"Anota qué te está funcionando.",
			},
			Color: ColorBlue,
		}
	}

	switch in.SelfResult {
	case model.SelfResultAlto:
		return model.Recommendation{
			Action:        model.RecommendationAchieved,
			Title:         "¡Lo lograste!",
			Justification: "Completaste tu plan y sientes que el resultado fue alto.",
			NextSteps: []string{
				"Celebra y registra qué funcionó.",
				"Define tu siguiente meta.",
			},
			Color: ColorGreen,
		}
	case model.SelfResultMedio:
		return model.Recommendation{
			Action:        model.RecommendationAdjust,
			Title:         "Ajusta el enfoque",
			Justification: "Completaste tu plan con un resultado medio: vale la pena ajustar y repetir.",
			NextSteps: []string{
				"Identifica la acción que mejor resultado dio y repítela.",
				"Quita lo que no aportó.",
			},
			Color: ColorOrange,
		}
	case model.SelfResultBajo:
		return model.Recommendation{
			Action:        model.RecommendationPause,
			Title:         "Considera pausar",
			Justification: "Completaste tu plan pero el resultado fue bajo.",
			NextSteps: []string{
				"Pausa y anota lo aprendido.",
				"Piensa si otra forma de atacar la meta tendría más sentido.",
			},
			Color: ColorGray,
		}
	default:
		return model.Recommendation{
			Action:        model.RecommendationNoData,
			Title:         "¿Cómo te fue?",
			Justification: "Terminaste tu plan. Cuéntanos qué tan bien salió para recomendarte el siguiente paso.",
			NextSteps: []string{
				"Califica tu resultado: alto, medio o bajo.",
			},
			Color: ColorPurple,
		}
	}
}

// DaysSince counts whole days elapsed between start and now.
func DaysSince(start, now time.Time) int {
	if start.IsZero() || now.Before(start) {
		return 0
	}
	return int(now.Sub(start).Hours() / 24)
}

// Calculate dispatches on surface type and nudges the user to decide once the
// decision window has passed and the advice is still to keep going.
func Calculate(in Input, now time.Time) model.Recommendation {
	var rec model.Recommendation
	if in.SurfaceType == model.SurfaceLanding {
		rec = Landing(in.Landing)
	} else {
		rec = NonLanding(in.NonLanding)
	}
	rec.ForStage = in.Stage

	decisionDays := in.DecisionCadenceDays
	if decisionDays <= 0 {
		decisionDays = cadence.DecisionDays(in.SurfaceType)
	}

	days := DaysSince(in.CreatedAt, now)
	if days >= decisionDays && keepGoing(in.SurfaceType, rec.Action) {
		rec.Title = "Es momento de decidir"
		rec.NextSteps = []string{
			fmt.Sprintf("Han pasado %d días. Decide si ajustar, pausar o dar la meta por lograda.", days),
			"Si sigues, fija una nueva fecha límite realista.",
		}
		rec.DecisionDue = true
	}
	return rec
}

func keepGoing(surfaceType, action string) bool {
	if action == model.RecommendationKeepBuilding {
		return true
	}
	return surfaceType == model.SurfaceLanding && action == model.RecommendationKeepTesting
}
