package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"sitehours/aggregate"
	"sitehours/output"
	"sitehours/period"
)

type errorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, suggestion := errorStatus(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(ctx).Error().Err(err).Msg("aggregation failed")
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeJSON(ctx, w, status, errorResponse{
		Success:    false,
		Error:      message,
		Suggestion: suggestion,
	})
}

func errorStatus(err error) (int, string) {
	var notFound *aggregate.NotFoundError
	switch {
	case period.IsInvalidRange(err):
		return http.StatusBadRequest, "Pass start and end as YYYY-MM-DD with start not after end."
	case errors.As(err, &notFound):
		return http.StatusNotFound, fmt.Sprintf("Check the %s ID or widen the date range.", notFound.Kind)
	case errors.Is(err, aggregate.ErrNotFound):
		return http.StatusNotFound, "Check the ID or widen the date range."
	default:
		return http.StatusInternalServerError, ""
	}
}

// writeTable renders the whole table before any header is sent.
func writeTable(w http.ResponseWriter, r *http.Request, writer output.Writer, filename string, table output.Table) {
	var buf bytes.Buffer
	if err := writer.Write(&buf, table); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", writer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("filename", filename).Msg("failed to write export")
	}
}
