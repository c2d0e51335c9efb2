package service

import "errors"

var (
	ErrAnonymous         = errors.New("sign in required")
	ErrExperimentClosed  = errors.New("goal is closed")
	ErrSelfResultLanding = errors.New("landing goals are measured by visits and leads")
	ErrNotLanding        = errors.New("goal has no landing page")
	ErrStageIncomplete   = errors.New("finish the steps of this stage first")
	ErrInvalidTransition = errors.New("transition not allowed")
	ErrInvalidCadence    = errors.New("invalid cadence")
)
