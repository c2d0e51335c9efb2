package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vicu/vicu-api/internal/markdown"
)

func TestRenderAchievementEmail(t *testing.T) {
	doc, err := renderEmail(markdown.NewParser(), "achievement", emailData{
		Name:      "Ana",
		GoalTitle: `Abrir "La Tiendita": fase 1`,
		AppURL:    "https://vicu.app",
		AppName:   "Vicu",
	})
	require.NoError(t, err)

	assert.Equal(t, `¡Lograste tu meta: Abrir "La Tiendita": fase 1!`, doc.Get("subject"))
	assert.Contains(t, doc.Text, "Hola Ana,")
	assert.NotContains(t, doc.Text, "subject:")
	assert.Contains(t, doc.HTML, "<strong>")
	assert.Contains(t, doc.HTML, `href="https://vicu.app"`)
}

func TestRenderReminderEmail(t *testing.T) {
	doc, err := renderEmail(markdown.NewParser(), "reminder", emailData{
		GoalTitle: "Correr 5 km",
		StepTitle: "Salir a trotar 10 minutos",
		GoalURL:   "https://vicu.app/goals/1",
		AppName:   "Vicu",
	})
	require.NoError(t, err)

	assert.Equal(t, "Tu siguiente paso en Correr 5 km", doc.Get("subject"))
	assert.Contains(t, doc.Text, "Hola,")
	assert.Contains(t, doc.HTML, "<blockquote>")
	assert.Contains(t, doc.HTML, "Salir a trotar 10 minutos")
}

func TestSendEmailDevMode(t *testing.T) {
	s := NewEmailService("", "noreply@example.com", "http://localhost", "Vicu", true)
	require.NoError(t, s.SendAchievementEmail(context.Background(), "ana@example.com", "Ana", "Correr"))

	s = NewEmailService("", "noreply@example.com", "http://localhost", "Vicu", false)
	assert.Error(t, s.SendReminderEmail(context.Background(), "ana@example.com", "Ana", "Correr", "Paso", "http://localhost/g/1"))
}
