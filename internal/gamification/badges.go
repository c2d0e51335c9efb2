package gamification

import "github.com/vicu/vicu-api/internal/model"

const (
	BadgeStreak3      = "streak_3"
	BadgeStreak7      = "streak_7"
	BadgeStreak14     = "streak_14"
	BadgeStreak30     = "streak_30"
	BadgeCheckins10   = "checkins_10"
	BadgeCheckins50   = "checkins_50"
	BadgeCheckins100  = "checkins_100"
	BadgeFirstProject = "first_project"
	BadgeProjects5    = "projects_5"
	BadgeLevel5       = "level_5"
	BadgeLevel10      = "level_10"
	BadgeEarlyBird    = "early_bird"
	BadgeNightOwl     = "night_owl"
)

// NoHour disables the time-of-day badges.
const NoHour = -1

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	check       func(s *model.UserStats, hour int) bool
}

var badges = []Badge{
	{BadgeStreak3, "Constancia", "3 días seguidos", streakAtLeast(3)},
	{BadgeStreak7, "Semana completa", "7 días seguidos", streakAtLeast(7)},
	{BadgeStreak14, "Dos semanas", "14 días seguidos", streakAtLeast(14)},
	{BadgeStreak30, "Imparable", "30 días seguidos", streakAtLeast(30)},
	{BadgeCheckins10, "En marcha", "10 pasos completados", checkinsAtLeast(10)},
	{BadgeCheckins50, "Medio centenar", "50 pasos completados", checkinsAtLeast(50)},
	{BadgeCheckins100, "Centenario", "100 pasos completados", checkinsAtLeast(100)},
	{BadgeFirstProject, "Primer logro", "Tu primera meta lograda", projectsAtLeast(1)},
	{BadgeProjects5, "Coleccionista", "5 metas logradas", projectsAtLeast(5)},
	{BadgeLevel5, "Nivel 5", "Llegaste al nivel 5", levelAtLeast(5)},
	{BadgeLevel10, "Nivel 10", "Llegaste al nivel 10", levelAtLeast(10)},
	{BadgeEarlyBird, "Madrugador", "Un paso antes de las 9am", func(_ *model.UserStats, hour int) bool {
		return hour >= 0 && hour < 9
	}},
	{BadgeNightOwl, "Búho", "Un paso después de las 10pm", func(_ *model.UserStats, hour int) bool {
		return hour >= 22
	}},
}

// Badges lists every badge that can be unlocked.
func Badges() []Badge {
	out := make([]Badge, len(badges))
	copy(out, badges)
	return out
}

// CheckBadges returns the ids whose predicate holds for stats and that are not
// unlocked yet. hour is the local hour of the triggering check-in, or NoHour.
// It does not modify stats.
func CheckBadges(stats *model.UserStats, hour int) []string {
	var unlocked []string
	for _, b := range badges {
		if stats.Badges.Has(b.ID) {
			continue
		}
		if b.check(stats, hour) {
			unlocked = append(unlocked, b.ID)
		}
	}
	return unlocked
}

func streakAtLeast(n int) func(*model.UserStats, int) bool {
	return func(s *model.UserStats, _ int) bool { return s.StreakDays >= n }
}

func checkinsAtLeast(n int) func(*model.UserStats, int) bool {
	return func(s *model.UserStats, _ int) bool { return s.TotalCheckins >= n }
}

func projectsAtLeast(n int) func(*model.UserStats, int) bool {
	return func(s *model.UserStats, _ int) bool { return s.TotalProjectsCompleted >= n }
}

func levelAtLeast(n int) func(*model.UserStats, int) bool {
	return func(s *model.UserStats, _ int) bool { return s.Level >= n }
}
