// Package render writes JSON responses and maps errors to status codes.
package render

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Vasu1712/scenyx-chat/internal/storage"
	apperrors "github.com/Vasu1712/scenyx-chat/pkg/errors"
	"github.com/Vasu1712/scenyx-chat/pkg/logger"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("encode response")
	}
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error answers err. AppErrors keep their status, missing records become
// 404 and any other failure is reported as 400 with its message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	switch {
	case ok:
	case errors.Is(err, storage.ErrNotFound):
		appErr = apperrors.ErrNotFound
	default:
		appErr = apperrors.BadRequest(err.Error())
	}

	if appErr.Code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Token")
	}
	if appErr.Code >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		logger.Debug().Err(err).Str("path", r.URL.Path).Int("status", appErr.Code).Msg("request rejected")
	}
	JSON(w, appErr.Code, appErr)
}

// Decode reads a JSON body into v. An empty body leaves v untouched.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return apperrors.ErrInvalidRequest
	}
	return nil
}
