package model

import "time"

type UserStats struct {
	UserID                 string     `db:"user_id" json:"user_id"`
	XP                     int        `db:"xp" json:"xp"`
	Level                  int        `db:"level" json:"level"`
	StreakDays             int        `db:"streak_days" json:"streak_days"`
	LongestStreak          int        `db:"longest_streak" json:"longest_streak"`
	DailyCheckins          int        `db:"daily_checkins" json:"daily_checkins"`
	DailyGoal              int        `db:"daily_goal" json:"daily_goal"`
	TotalCheckins          int        `db:"total_checkins" json:"total_checkins"`
	TotalProjectsCompleted int        `db:"total_projects_completed" json:"total_projects_completed"`
	Badges                 BadgeSet   `db:"badges" json:"badges"`
	LastCheckinDate        *time.Time `db:"last_checkin_date" json:"last_checkin_date,omitempty"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

const DefaultDailyGoal = 3

// NewUserStats returns the snapshot of a user that never checked in.
func NewUserStats(userID string) *UserStats {
	return &UserStats{
		UserID:    userID,
		Level:     1,
		DailyGoal: DefaultDailyGoal,
		Badges:    BadgeSet{},
	}
}

func (s *UserStats) Clone() *UserStats {
	c := *s
	c.Badges = s.Badges.Clone()
	if s.LastCheckinDate != nil {
		d := *s.LastCheckinDate
		c.LastCheckinDate = &d
	}
	return &c
}

const (
	XPReasonCheckin          = "checkin"
	XPReasonStreakBonus      = "streak_bonus"
	XPReasonDailyGoal        = "daily_goal"
	XPReasonProjectCompleted = "project_completed"
	XPReasonBadgePrefix      = "badge:"
)

// XPEvent is an append-only audit row of XP awarded to a user.
type XPEvent struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Amount    int       `db:"amount" json:"amount"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
