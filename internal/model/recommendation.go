package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	RecommendationKeepBuilding = "keep_building"
	RecommendationKeepTesting  = "keep_testing"
	RecommendationAdjust       = "adjust"
	RecommendationAchieved     = "achieved"
	RecommendationPause        = "pause"
	RecommendationNoData       = "no_data"
)

// Recommendation is the advice computed for a goal at one stage.
type Recommendation struct {
	Action        string    `json:"action"`
	Title         string    `json:"title"`
	Justification string    `json:"justification"`
	NextSteps     []string  `json:"next_steps"`
	Color         string    `json:"color"`
	ForStage      Stage     `json:"for_stage,omitempty"`
	DecisionDue   bool      `json:"decision_due"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// IsStale reports whether the goal moved on since this was computed.
func (r *Recommendation) IsStale(current Stage) bool {
	return r.ForStage != "" && r.ForStage != current
}

type StoredRecommendation struct {
	ID            string     `db:"id" json:"id"`
	ExperimentID  string     `db:"experiment_id" json:"experiment_id"`
	ForStage      Stage      `db:"for_stage" json:"for_stage"`
	Action        string     `db:"action" json:"action"`
	Title         string     `db:"title" json:"title"`
	Justification string     `db:"justification" json:"justification"`
	NextSteps     StringList `db:"next_steps" json:"next_steps"`
	Color         string     `db:"color" json:"color"`
	DecisionDue   bool       `db:"decision_due" json:"decision_due"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	ArchivedAt    *time.Time `db:"archived_at" json:"archived_at,omitempty"`
}

func (s *StoredRecommendation) Recommendation() *Recommendation {
	return &Recommendation{
		Action:        s.Action,
		Title:         s.Title,
		Justification: s.Justification,
		NextSteps:     []string(s.NextSteps),
		Color:         s.Color,
		ForStage:      s.ForStage,
		DecisionDue:   s.DecisionDue,
		CreatedAt:     s.CreatedAt,
	}
}

// StringList is a []string stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("string list: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*l = out
	return nil
}
