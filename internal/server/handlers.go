package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"employee-directory/internal/directory"
	"employee-directory/internal/refresh"
)

func writeJSON(w http.ResponseWriter, logger *zap.Logger, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("writeJSON: failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, errMessage string, statusCode int) {
	writeJSON(w, logger, ErrorResponse{Status: statusCode, Message: errMessage}, statusCode)
}

func Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	}
}

// ListEmployees serves the grouped directory. mode overrides the default
// rule (sparse without a query, exhaustive with one).
func ListEmployees(dir Directory, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		opts := directory.Options{Query: query}

		if raw := r.URL.Query().Get("mode"); raw != "" {
			mode, ok := directory.ParseMode(raw)
			if !ok {
				writeError(w, logger, "mode must be sparse or exhaustive", http.StatusBadRequest)
				return
			}
			opts.Mode, opts.ModeSet = mode, true
		}

		snap, err := dir.Snapshot()
		if err != nil {
			if errors.Is(err, refresh.ErrNoSnapshot) {
				writeError(w, logger, "directory not loaded yet", http.StatusServiceUnavailable)
				return
			}
			logger.Error("ListEmployees: snapshot failed", zap.Error(err))
			writeError(w, logger, "internal error", http.StatusInternalServerError)
			return
		}

		res := directory.View(snap.Employees, opts)
		writeJSON(w, logger, toDirectoryResponse(query, snap.FetchedAt, res), http.StatusOK)
	}
}

func GetEmployee(dir Directory, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// chi routes on RawPath when it is set, leaving the param escaped
		key := chi.URLParam(r, "key")
		if r.URL.RawPath != "" {
			unescaped, err := url.PathUnescape(key)
			if err != nil {
				writeError(w, logger, "invalid employee key", http.StatusBadRequest)
				return
			}
			key = unescaped
		}
		if key == "" {
			writeError(w, logger, "invalid employee key", http.StatusBadRequest)
			return
		}

		e, ok, err := dir.Employee(key)
		if err != nil {
			if errors.Is(err, refresh.ErrNoSnapshot) {
				writeError(w, logger, "directory not loaded yet", http.StatusServiceUnavailable)
				return
			}
			logger.Error("GetEmployee: lookup failed", zap.Error(err))
			writeError(w, logger, "internal error", http.StatusInternalServerError)
			return
		}
		if !ok {
			writeError(w, logger, key+" not found", http.StatusNotFound)
			return
		}
		writeJSON(w, logger, toEmployee(e), http.StatusOK)
	}
}

// Refresh runs one fetch cycle. A failed cycle answers 502 with the partial
// count; the previously served directory stays in place.
func Refresh(dir Directory, requestTimeout time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		res, err := dir.Refresh(ctx)
		resp := RefreshResponse{
			Cycle:     res.Cycle,
			Employees: len(res.Employees),
			Fetched:   res.Fetched,
			TookMS:    res.Took.Milliseconds(),
		}
		if err != nil {
			resp.Error = err.Error()
			status := http.StatusBadGateway
			if errors.Is(err, refresh.ErrSuperseded) {
				status = http.StatusConflict
			}
			logger.Warn("Refresh: cycle failed", zap.Uint64("cycle", res.Cycle), zap.Error(err))
			writeJSON(w, logger, resp, status)
			return
		}
		writeJSON(w, logger, resp, http.StatusOK)
	}
}
