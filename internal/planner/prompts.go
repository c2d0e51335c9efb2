package planner

import (
	"fmt"
	"strings"
)

const stepsSystemPrompt = `Eres Vicu, un coach que convierte metas en pasos pequeños y concretos.
Responde SOLO con JSON válido con esta forma:
{"steps":[{"title":"...","description":"...","effort":"muy_pequeno|pequeno|medio"}]}
Máximo 3 pasos. Cada paso debe poder hacerse en menos de una hora. Escribe en español.`

const attackPlanSystemPrompt = `Eres Vicu, un estratega que diseña planes de ataque para validar ideas.
Responde SOLO con JSON válido con esta forma:
{"channels":[{"channel":"...","actions":[{"type":"...","title":"...","content":"..."}]}]}
Máximo 3 canales y 2 acciones por canal. "content" es el texto listo para copiar y enviar. Escribe en español.`

func stepsUserPrompt(req StepRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meta: %s\n", req.GoalTitle)
	if d := strings.TrimSpace(req.GoalDescription); d != "" {
		fmt.Fprintf(&b, "Descripción: %s\n", d)
	}
	if req.Stage != "" {
		fmt.Fprintf(&b, "Etapa actual: %s\n", req.Stage)
	}
	if req.SurfaceType != "" {
		fmt.Fprintf(&b, "Superficie: %s\n", req.SurfaceType)
	}
	if s := strings.TrimSpace(req.Situation); s != "" {
		fmt.Fprintf(&b, "Situación del usuario: %s\n", s)
	}
	b.WriteString("Genera los siguientes pasos.")
	return b.String()
}

func attackPlanUserPrompt(brief Brief) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meta: %s\n", brief.Title)
	if d := strings.TrimSpace(brief.Description); d != "" {
		fmt.Fprintf(&b, "Descripción: %s\n", d)
	}
	fmt.Fprintf(&b, "Superficie: %s\nTipo: %s\nContexto: %s\n", brief.SurfaceType, brief.ExperimentType, brief.Context)
	b.WriteString("Genera el plan de ataque.")
	return b.String()
}
