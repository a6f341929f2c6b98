package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/salam-labs/adzan/internal/app"
	"github.com/salam-labs/adzan/internal/buildinfo"
	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/httpjson"
)

const defaultRequestTimeout = 30 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, buildinfo.Current())
}

func accessLogFn(r *http.Request, status, size int, duration time.Duration) {
	logger := hlog.FromRequest(r)
	logger.Info().
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("http")
}

// writeServiceError traduit les erreurs des services en statut HTTP.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var coded *app.CodedError
	switch {
	case errors.Is(err, app.ErrNotFound):
		httpjson.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, app.ErrLocationNotSet):
		httpjson.WriteCodedError(w, http.StatusConflict, "location_not_set", err.Error())
	case errors.Is(err, app.ErrInvalidSettings),
		errors.Is(err, app.ErrInvalidLastRead),
		errors.Is(err, domain.ErrInvalidCoordinates):
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &coded):
		status := http.StatusBadGateway
		if coded.Code == "invalid_params" {
			status = http.StatusBadRequest
		}
		httpjson.WriteCodedError(w, status, coded.Code, coded.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
