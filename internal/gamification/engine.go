// Package gamification turns check-ins into XP, levels, streaks and badges.
// Every function here is pure: callers load the stats snapshot, apply the
// result and persist it.
package gamification

import (
	"time"

	"github.com/vicu/vicu-api/internal/cadence"
	"github.com/vicu/vicu-api/internal/model"
)

const (
	CheckinXP          = 10
	StreakBonusPerDay  = 5
	MaxStreakBonus     = 50
	DailyGoalBonusXP   = 25
	BadgeXP            = 50
	ProjectCompletedXP = 100
)

// Award is one XP grant, mirrored into the audit log.
type Award struct {
	Amount int
	Reason string
}

type Result struct {
	Stats         *model.UserStats
	XPGained      int
	Awards        []Award
	NewBadges     []string
	LeveledUp     bool
	DailyGoalMet  bool
	StreakChanged bool
}

// NextStreak returns the streak after a check-in at now. last is the date of
// the previous check-in. Dates are compared in now's location.
func NextStreak(last *time.Time, streak int, now time.Time) int {
	today := cadence.Day(now)
	if last == nil {
		return 1
	}
	lastDay := cadence.Day(last.In(now.Location()))
	switch {
	case lastDay.Equal(today):
		if streak < 1 {
			return 1
		}
		return streak
	case lastDay.Equal(today.AddDate(0, 0, -1)):
		return streak + 1
	default:
		return 1
	}
}

// IsNewDay reports whether now falls on a different day than last.
func IsNewDay(last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}
	return !cadence.Day(last.In(now.Location())).Equal(cadence.Day(now))
}

// Normalize resets the daily counter when the stored check-in date is not
// today. Call it on every read.
func Normalize(stats *model.UserStats, now time.Time) *model.UserStats {
	out := stats.Clone()
	if IsNewDay(out.LastCheckinDate, now) {
		out.DailyCheckins = 0
	}
	if out.DailyGoal <= 0 {
		out.DailyGoal = model.DefaultDailyGoal
	}
	out.Level = CalculateLevel(out.XP)
	return out
}

// RecordCheckin applies one completed step at now to stats.
func RecordCheckin(stats *model.UserStats, now time.Time) Result {
	before := Normalize(stats, now)
	after := before.Clone()

	res := Result{}

	newDay := IsNewDay(before.LastCheckinDate, now)
	newStreak := before.StreakDays
	if newDay {
		newStreak = NextStreak(before.LastCheckinDate, before.StreakDays, now)
	}
	res.StreakChanged = newStreak != before.StreakDays
	after.StreakDays = newStreak
	if newStreak > after.LongestStreak {
		after.LongestStreak = newStreak
	}

	res.award(after, CheckinXP, model.XPReasonCheckin)
	if newStreak > 1 {
		bonus := newStreak * StreakBonusPerDay
		if bonus > MaxStreakBonus {
			bonus = MaxStreakBonus
		}
		res.award(after, bonus, model.XPReasonStreakBonus)
	}

	after.DailyCheckins = before.DailyCheckins + 1
	after.TotalCheckins = before.TotalCheckins + 1
	if before.DailyCheckins < before.DailyGoal && after.DailyCheckins >= after.DailyGoal {
		res.DailyGoalMet = true
		res.award(after, DailyGoalBonusXP, model.XPReasonDailyGoal)
	}

	day := cadence.Day(now)
	after.LastCheckinDate = &day
	after.UpdatedAt = now
	after.Level = CalculateLevel(after.XP)

	res.unlockBadges(after, now.Hour())

	res.LeveledUp = after.Level > before.Level
	res.Stats = after
	return res
}

// RecordProjectCompleted applies a goal reaching the achieved stage.
func RecordProjectCompleted(stats *model.UserStats, now time.Time) Result {
	before := Normalize(stats, now)
	after := before.Clone()

	res := Result{}
	after.TotalProjectsCompleted++
	res.award(after, ProjectCompletedXP, model.XPReasonProjectCompleted)
	after.Level = CalculateLevel(after.XP)
	after.UpdatedAt = now

	res.unlockBadges(after, NoHour)

	res.LeveledUp = after.Level > before.Level
	res.Stats = after
	return res
}

func (r *Result) award(stats *model.UserStats, amount int, reason string) {
	if amount <= 0 {
		return
	}
	stats.XP += amount
	r.XPGained += amount
	r.Awards = append(r.Awards, Award{Amount: amount, Reason: reason})
}

// unlockBadges repeats until no badge unlocks, since badge XP can itself
// cross a level threshold that a level badge checks.
func (r *Result) unlockBadges(stats *model.UserStats, hour int) {
	for {
		stats.Level = CalculateLevel(stats.XP)
		unlocked := false
		for _, id := range CheckBadges(stats, hour) {
			if stats.Badges.Add(id) {
				unlocked = true
				r.NewBadges = append(r.NewBadges, id)
				r.award(stats, BadgeXP, model.XPReasonBadgePrefix+id)
			}
		}
		if !unlocked {
			return
		}
	}
}
