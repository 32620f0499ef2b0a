package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"checkclient/internal/analytics"
)

type AnalyticsHandler struct {
	Agg     *analytics.Aggregator
	Tracker *analytics.Tracker
}

func windowDays(dateRange string) int {
	switch dateRange {
	case "7d":
		return 7
	case "90d":
		return 90
	default:
		return 30
	}
}

func (h *AnalyticsHandler) Data(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := windowDays(strings.TrimSpace(q.Get("dateRange")))
	category := strings.TrimSpace(q.Get("category"))

	m, err := h.Agg.Compute(r.Context(), days, category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not compute metrics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": m})
}

func (h *AnalyticsHandler) Track(w http.ResponseWriter, r *http.Request) {
	var ev analytics.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if ev.Type == "" || ev.Timestamp.IsZero() {
		writeError(w, http.StatusBadRequest, "eventType and timestamp are required")
		return
	}

	saved := h.Tracker.Append(ev)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "eventId": saved.ID})
}
