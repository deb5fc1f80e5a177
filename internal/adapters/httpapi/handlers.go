package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/akd/internal/app"
	"github.com/Guilhem-Bonnet/akd/internal/buildinfo"
	"github.com/Guilhem-Bonnet/akd/internal/httpjson"
)

const defaultRequestTimeout = 30 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, buildinfo.Current())
}

// writeServiceError traduit les erreurs applicatives en statut HTTP.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var coded *app.CodedError
	switch {
	case errors.Is(err, app.ErrNotFound):
		httpjson.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, app.ErrUnknownFeed), errors.Is(err, app.ErrMissingQuery):
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &coded):
		status := http.StatusBadGateway
		switch {
		case coded.Code == "invalid_params":
			status = http.StatusBadRequest
		case coded.Code == "http_status" && coded.Status == http.StatusNotFound:
			status = http.StatusNotFound
		}
		hlog.FromRequest(r).Warn().Err(err).Str("code", coded.Code).Msg("catalog error")
		httpjson.WriteCodedError(w, status, coded.Code, coded.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
	}
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
