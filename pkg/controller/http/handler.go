package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
	"github.com/secmon-lab/posture/pkg/usecase"
	"github.com/secmon-lab/posture/pkg/utils/errutil"
	"github.com/secmon-lab/posture/pkg/utils/safe"
)

// DashboardUseCase is the set of intents the HTTP boundary can issue
type DashboardUseCase interface {
	InitSession(ctx context.Context) (*model.Dashboard, error)
	ResetSession(ctx context.Context, sid types.SessionID) (*model.Dashboard, error)
	EndSession(ctx context.Context, sid types.SessionID) error
	Render(ctx context.Context, sid types.SessionID) (*model.Dashboard, error)

	AddRiskCategory(ctx context.Context, sid types.SessionID, risk model.RiskCategory) (*usecase.Mutation[model.RiskCategory], error)
	AddVulnerability(ctx context.Context, sid types.SessionID, vuln model.Vulnerability) (*usecase.Mutation[model.Vulnerability], error)
	AddPhaseTask(ctx context.Context, sid types.SessionID, task model.PhaseTask) (*usecase.Mutation[model.PhaseTask], error)
	AddRecommendation(ctx context.Context, sid types.SessionID, rec model.Recommendation) (*usecase.Mutation[model.Recommendation], error)

	DeleteRecord(ctx context.Context, sid types.SessionID, coll types.Collection, id types.RecordID) (*model.Dashboard, error)
	DeleteAt(ctx context.Context, sid types.SessionID, coll types.Collection, position int, expected types.RecordID) (*model.Dashboard, error)
	SetFilter(ctx context.Context, sid types.SessionID, coll types.Collection, priorities []types.Priority) (*model.Dashboard, error)
	SelectSystem(ctx context.Context, sid types.SessionID, system string) (*model.Dashboard, error)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(ErrBadRequest, "failed to decode request body", goerr.V("error", err.Error()))
	}
	return nil
}

func sessionIDOf(r *http.Request) types.SessionID {
	return types.SessionID(chi.URLParam(r, "sid"))
}

func collectionOf(r *http.Request) (types.Collection, error) {
	coll, err := types.ParseCollection(chi.URLParam(r, "collection"))
	if err != nil {
		return "", goerr.Wrap(err, "unknown collection in path")
	}
	return coll, nil
}

// dashboardHandler adapts an intent returning a render to an HTTP handler
func dashboardHandler(status int, intent func(r *http.Request) (*model.Dashboard, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := intent(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, status, toDashboardResponse(d))
	}
}

func initSessionHandler(uc DashboardUseCase) http.HandlerFunc {
	return dashboardHandler(http.StatusCreated, func(r *http.Request) (*model.Dashboard, error) {
		return uc.InitSession(r.Context())
	})
}

func renderHandler(uc DashboardUseCase) http.HandlerFunc {
	return dashboardHandler(http.StatusOK, func(r *http.Request) (*model.Dashboard, error) {
		return uc.Render(r.Context(), sessionIDOf(r))
	})
}

func resetSessionHandler(uc DashboardUseCase) http.HandlerFunc {
	return dashboardHandler(http.StatusOK, func(r *http.Request) (*model.Dashboard, error) {
		return uc.ResetSession(r.Context(), sessionIDOf(r))
	})
}

func endSessionHandler(uc DashboardUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.EndSession(r.Context(), sessionIDOf(r)); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// addRecord decodes the input of one collection, runs the add intent and
// converts the stored record for the response. size returns the collection
// length in a render; an added record is always the last one.
func addRecord[In any, T model.Record, Out any](
	r *http.Request,
	toModel func(*In) (T, error),
	add func(ctx context.Context, sid types.SessionID, record T) (*usecase.Mutation[T], error),
	toResponse func(model.Row[T]) Out,
	size func(*model.Dashboard) int,
) (*mutationResponse, error) {
	var in In
	if err := decodeJSON(r, &in); err != nil {
		return nil, err
	}
	record, err := toModel(&in)
	if err != nil {
		return nil, err
	}

	m, err := add(r.Context(), sessionIDOf(r), record)
	if err != nil {
		return nil, err
	}

	return &mutationResponse{
		Message:   m.Message,
		Record:    toResponse(model.Row[T]{Position: size(m.Dashboard) - 1, Record: m.Record}),
		Dashboard: toDashboardResponse(m.Dashboard),
	}, nil
}

func addRecordHandler(uc DashboardUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		coll, err := collectionOf(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var resp *mutationResponse
		switch coll {
		case types.CollectionRisks:
			resp, err = addRecord(r, (*riskInput).toModel, uc.AddRiskCategory, toRiskResponse,
				func(d *model.Dashboard) int { return len(d.Risks) })
		case types.CollectionVulnerabilities:
			resp, err = addRecord(r, (*vulnerabilityInput).toModel, uc.AddVulnerability, toVulnerabilityResponse,
				func(d *model.Dashboard) int { return len(d.Vulnerabilities) })
		case types.CollectionTasks:
			resp, err = addRecord(r, (*taskInput).toModel, uc.AddPhaseTask, toTaskResponse,
				func(d *model.Dashboard) int { return d.TaskCount })
		case types.CollectionRecommendations:
			resp, err = addRecord(r, (*recommendationInput).toModel, uc.AddRecommendation, toRecommendationResponse,
				func(d *model.Dashboard) int { return d.RecommendationTotal })
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, resp)
	}
}

func deleteRecordHandler(uc DashboardUseCase) http.HandlerFunc {
	return dashboardHandler(http.StatusOK, func(r *http.Request) (*model.Dashboard, error) {
		coll, err := collectionOf(r)
		if err != nil {
			return nil, err
		}
		return uc.DeleteRecord(r.Context(), sessionIDOf(r), coll, types.RecordID(chi.URLParam(r, "id")))
	})
}

func deleteAtHandler(uc DashboardUseCase) http.HandlerFunc {
	return dashboardHandler(http.StatusOK, func(r *http.Request) (*model.Dashboard, error) {
		coll, err := collectionOf(r)
		if err != nil {
			return nil, err
		}
		position, err := strconv.Atoi(chi.URLParam(r, "position"))
		if err != nil {
			return nil, goerr.Wrap(ErrBadRequest, "position must be an integer", goerr.V("position", chi.URLParam(r, "position")))
		}
		expected := types.RecordID(r.URL.Query().Get("id"))
		return uc.DeleteAt(r.Context(), sessionIDOf(r), coll, position, expected)
	})
}

func setFilterHandler(uc DashboardUseCase) http.HandlerFunc {
	return dashboardHandler(http.StatusOK, func(r *http.Request) (*model.Dashboard, error) {
		coll, err := collectionOf(r)
		if err != nil {
			return nil, err
		}
		var in filterInput
		if err := decodeJSON(r, &in); err != nil {
			return nil, err
		}
		priorities, err := types.ParsePriorities(in.Priorities)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid filter")
		}
		return uc.SetFilter(r.Context(), sessionIDOf(r), coll, priorities)
	})
}

func selectSystemHandler(uc DashboardUseCase) http.HandlerFunc {
	return dashboardHandler(http.StatusOK, func(r *http.Request) (*model.Dashboard, error) {
		var in systemInput
		if err := decodeJSON(r, &in); err != nil {
			return nil, err
		}
		return uc.SelectSystem(r.Context(), sessionIDOf(r), in.System)
	})
}
