package handler

import (
	"net/http"

	"github.com/vicu/vicu-api/internal/cadence"
	"github.com/vicu/vicu-api/internal/model"
	"github.com/vicu/vicu-api/internal/validation"
)

// Rhythm previews the default cadence for a goal before it is created.
func Rhythm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	surfaceType := q.Get("surface_type")
	if surfaceType == "" {
		surfaceType = model.SurfaceMessages
	}
	experimentType := q.Get("experiment_type")
	if experimentType == "" {
		experimentType = model.ExperimentTypeValidacion
	}
	ctx := q.Get("context")
	if ctx == "" {
		ctx = model.ContextPersonal
	}

	for _, err := range []error{
		validation.ValidateSurfaceType(surfaceType),
		validation.ValidateExperimentType(experimentType),
		validation.ValidateContext(ctx),
	} {
		if err != nil {
			writeError(w, r, err, "")
			return
		}
	}

	rhythm := cadence.DefaultRhythm(surfaceType, cadence.Context{Kind: ctx, Effort: q.Get("effort")}, experimentType)
	writeJSON(w, http.StatusOK, rhythm)
}
