package planner

import (
	"github.com/vicu/vicu-api/internal/model"
	"github.com/vicu/vicu-api/internal/textnorm"
)

const (
	CategoryHealth   = "health"
	CategoryBusiness = "business"
	CategoryLearning = "learning"
	CategoryHabits   = "habits"
	CategoryGeneric  = "generic"
)

var categoryKeywords = []struct {
	category string
	words    []string
}{
	{CategoryHealth, []string{"salud", "peso", "correr", "ejercicio", "gimnasio", "dieta", "dormir", "health", "fitness", "run", "workout"}},
	{CategoryBusiness, []string{"negocio", "clientes", "ventas", "vender", "emprend", "producto", "servicio", "business", "sales", "customers"}},
	{CategoryLearning, []string{"aprender", "estudiar", "curso", "idioma", "ingles", "leer", "learn", "study", "course"}},
	{CategoryHabits, []string{"habito", "rutina", "diario", "cada dia", "meditar", "habit", "routine", "daily"}},
}

// Category guesses the goal domain from its title and description.
func Category(title, description string) string {
	text := title + " " + description
	for _, c := range categoryKeywords {
		if textnorm.ContainsAny(text, c.words...) {
			return c.category
		}
	}
	return CategoryGeneric
}

var fallbackSteps = map[string][]Step{
	CategoryHealth: {
		{Title: "Define tu punto de partida", Description: "Anota cómo estás hoy: peso, tiempo o la medida que quieras mejorar.", Effort: model.EffortMuyPequeno},
		{Title: "Agenda tu primera sesión", Description: "Pon en tu calendario 20 minutos para moverte esta semana.", Effort: model.EffortPequeno},
		{Title: "Prepara tu entorno", Description: "Deja lista la ropa o la comida que necesitas para mañana.", Effort: model.EffortPequeno},
	},
	CategoryBusiness: {
		{Title: "Escribe tu oferta en una frase", Description: "Qué vendes, a quién y por qué le conviene.", Effort: model.EffortMuyPequeno},
		{Title: "Haz una lista de 10 posibles clientes", Description: "Personas concretas a las que podrías escribir hoy.", Effort: model.EffortPequeno},
		{Title: "Contacta a 3 de ellos", Description: "Envía un mensaje corto preguntando si les interesa.", Effort: model.EffortMedio},
	},
	CategoryLearning: {
		{Title: "Elige un solo recurso", Description: "Un libro, curso o canal. Solo uno para empezar.", Effort: model.EffortMuyPequeno},
		{Title: "Estudia 15 minutos", Description: "Pon un temporizador y avanza sin distracciones.", Effort: model.EffortPequeno},
		{Title: "Explica lo aprendido", Description: "Escribe en tres líneas lo que entendiste hoy.", Effort: model.EffortPequeno},
	},
	CategoryHabits: {
		{Title: "Elige la hora exacta", Description: "Decide cuándo harás tu hábito cada día.", Effort: model.EffortMuyPequeno},
		{Title: "Hazlo en versión mínima", Description: "Dos minutos cuentan. Lo importante es no romper la cadena.", Effort: model.EffortMuyPequeno},
		{Title: "Registra tu avance", Description: "Marca el día como hecho en Vicu.", Effort: model.EffortMuyPequeno},
	},
	CategoryGeneric: {
		{Title: "Aclara qué significa lograrlo", Description: "Escribe cómo sabrás que cumpliste tu meta.", Effort: model.EffortMuyPequeno},
		{Title: "Da el primer paso pequeño", Description: "Elige algo que puedas hacer en menos de 15 minutos y hazlo.", Effort: model.EffortPequeno},
		{Title: "Cuéntaselo a alguien", Description: "Compartir tu meta te ayuda a sostenerla.", Effort: model.EffortPequeno},
	},
}

// FallbackSteps returns fixed steps for the goal's category. Never empty.
func FallbackSteps(title, description string) []Step {
	src, ok := fallbackSteps[Category(title, description)]
	if !ok || len(src) == 0 {
		src = fallbackSteps[CategoryGeneric]
	}
	out := make([]Step, len(src))
	copy(out, src)
	return out
}

// FallbackAttackPlan returns a fixed plan for the surface type. Never empty.
func FallbackAttackPlan(surfaceType string) AttackPlan {
	switch surfaceType {
	case model.SurfaceLanding:
		return AttackPlan{Channels: []PlanChannel{
			{Channel: "whatsapp", Actions: []PlanAction{
				{Type: "mensaje", Title: "Comparte tu página con 5 contactos", Content: "¡Hola! Estoy probando una idea nueva y me encantaría tu opinión. ¿Le echas un vistazo? "},
				{Type: "estado", Title: "Publica tu página en tu estado", Content: "Estoy lanzando algo nuevo. Si te interesa, entra aquí 👇"},
			}},
			{Channel: "redes", Actions: []PlanAction{
				{Type: "post", Title: "Publica en tu red principal", Content: "Estoy validando una idea y busco a las primeras personas interesadas. ¿Te sumas?"},
			}},
		}}
	case model.SurfaceRitual:
		return AttackPlan{Channels: []PlanChannel{
			{Channel: "rutina", Actions: []PlanAction{
				{Type: "recordatorio", Title: "Fija tu momento diario", Content: "Hoy a la hora acordada dedico 15 minutos a mi meta."},
				{Type: "registro", Title: "Marca tu avance al terminar", Content: "Listo por hoy. Mañana, a la misma hora."},
			}},
		}}
	default:
		return AttackPlan{Channels: []PlanChannel{
			{Channel: "whatsapp", Actions: []PlanAction{
				{Type: "mensaje", Title: "Escribe a 3 personas clave", Content: "¡Hola! Estoy trabajando en algo y creo que te puede interesar. ¿Tienes 5 minutos esta semana?"},
				{Type: "seguimiento", Title: "Da seguimiento a quien no respondió", Content: "¡Hola de nuevo! Solo quería saber si viste mi mensaje anterior."},
			}},
			{Channel: "email", Actions: []PlanAction{
				{Type: "correo", Title: "Envía un correo breve", Content: "Asunto: Una idea rápida\n\nHola, estoy probando algo nuevo y me gustaría contarte en dos líneas de qué se trata."},
			}},
		}}
	}
}
