package repository

import "errors"

var (
	ErrExperimentNotFound     = errors.New("experiment not found")
	ErrActionNotFound         = errors.New("action not found")
	ErrCheckinNotFound        = errors.New("checkin not found")
	ErrStatsNotFound          = errors.New("user stats not found")
	ErrRecommendationNotFound = errors.New("recommendation not found")
	ErrProfileNotFound        = errors.New("profile not found")
	ErrReminderNotFound       = errors.New("reminder not found")
)
