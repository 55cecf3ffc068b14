package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/sengled-bridge/internal/device"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// handleGetDeviceHistory returns state history entries for a device,
// newest first.
//
// Query parameters:
//   - limit: maximum entries to return (default 50, max 200)
func (s *Server) handleGetDeviceHistory(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")
	if mac == "" || len(mac) > maxQueryParamLen {
		writeBadRequest(w, "invalid MAC address")
		return
	}

	if s.history == nil {
		writeServiceUnavailable(w, "state history is not enabled")
		return
	}

	limit, err := parseHistoryLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	// Resolve the device first so unknown MACs return 404, not an empty list.
	if _, err := s.registry.GetDevice(r.Context(), mac); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	entries, err := s.history.GetHistory(r.Context(), mac, limit)
	if err != nil {
		s.logger.Error("failed to fetch state history", "mac", mac, "error", err)
		writeInternalError(w, "failed to fetch state history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mac":     mac,
		"entries": entries,
		"count":   len(entries),
	})
}

// parseHistoryLimit parses and clamps the limit query parameter.
func parseHistoryLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return limit, nil
}
