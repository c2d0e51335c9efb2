package stage

import "github.com/vicu/vicu-api/internal/model"

type Progress struct {
	Stage          model.Stage `json:"stage"`
	CompletedSteps int         `json:"completed_steps"`
	TotalSteps     int         `json:"total_steps"`
	Percent        int         `json:"percent"`
}

// Complete reports whether every step of the stage is done.
func (p Progress) Complete() bool {
	return p.TotalSteps > 0 && p.CompletedSteps == p.TotalSteps
}

// StageProgress counts the checkins whose scope matches current.
func StageProgress(checkins []*model.Checkin, current model.Stage) Progress {
	p := Progress{Stage: current}
	for _, c := range checkins {
		if !c.Scope().Matches(current) {
			continue
		}
		p.TotalSteps++
		if c.IsDone() {
			p.CompletedSteps++
		}
	}
	if p.TotalSteps > 0 {
		p.Percent = p.CompletedSteps * 100 / p.TotalSteps
	}
	return p
}

// StepsForStage filters checkins to those that count for current.
func StepsForStage(checkins []*model.Checkin, current model.Stage) []*model.Checkin {
	out := make([]*model.Checkin, 0, len(checkins))
	for _, c := range checkins {
		if c.Scope().Matches(current) {
			out = append(out, c)
		}
	}
	return out
}

// Offer is a proposed move shown once the stage's steps are complete.
type Offer struct {
	From model.Stage `json:"from"`
	To   model.Stage `json:"to"`
}

// OfferTransition returns the move to propose, if any. action is the current
// recommendation's action and may be empty.
func OfferTransition(progress Progress, action string) (Offer, bool) {
	if !progress.Complete() {
		return Offer{}, false
	}
	to, ok := Resolve(progress.Stage, action)
	if !ok {
		return Offer{}, false
	}
	return Offer{From: progress.Stage, To: to}, true
}
