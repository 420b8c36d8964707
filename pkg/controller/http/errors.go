package http

import (
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/posture/pkg/domain/model"
	"github.com/secmon-lab/posture/pkg/domain/types"
	"github.com/secmon-lab/posture/pkg/usecase"
	"github.com/secmon-lab/posture/pkg/utils/errutil"
)

// ErrBadRequest marks a request that could not be decoded
var ErrBadRequest = goerr.New("bad request")

// statusOf maps an intent error to the HTTP status returned to the renderer
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrEmptyText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrSessionNotFound),
		errors.Is(err, usecase.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrStalePosition):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, types.ErrInvalidValue),
		errors.Is(err, model.ErrInvalidRecord),
		errors.Is(err, model.ErrMissingDate),
		errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrNotFilterable),
		errors.Is(err, usecase.ErrUnknownSystem):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}
