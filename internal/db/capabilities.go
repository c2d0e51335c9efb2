package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

const (
	OptionalColumnsAuto = "auto"
	OptionalColumnsAll  = "all"
	OptionalColumnsNone = "none"
)

// Capabilities records which optional columns the connected schema has.
// Repositories omit the columns that are missing instead of failing writes.
type Capabilities struct {
	CheckinEffort  bool
	DeadlineSource bool
}

func AllCapabilities() Capabilities {
	return Capabilities{CheckinEffort: true, DeadlineSource: true}
}

// DetectCapabilities resolves the DB_OPTIONAL_COLUMNS mode. "auto" probes
// the live schema once at startup.
func DetectCapabilities(ctx context.Context, db *sqlx.DB, mode string) (Capabilities, error) {
	switch mode {
	case OptionalColumnsAll:
		return AllCapabilities(), nil
	case OptionalColumnsNone:
		return Capabilities{}, nil
	case "", OptionalColumnsAuto:
	default:
		return Capabilities{}, fmt.Errorf("unknown optional columns mode %q", mode)
	}

	caps := Capabilities{
		CheckinEffort:  hasColumn(ctx, db, "experiment_checkins", "effort"),
		DeadlineSource: hasColumn(ctx, db, "experiments", "deadline_source"),
	}
	slog.Info("schema capabilities detected",
		"checkin_effort", caps.CheckinEffort,
		"deadline_source", caps.DeadlineSource,
	)
	return caps, nil
}

// hasColumn is only called with constant identifiers.
func hasColumn(ctx context.Context, db *sqlx.DB, table, column string) bool {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s WHERE 1 = 0", column, table))
	if err != nil {
		return false
	}
	rows.Close()
	return true
}
