package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openspool/spoolbridge/internal/activity"
	"github.com/openspool/spoolbridge/internal/printer"
	"github.com/openspool/spoolbridge/internal/syncengine"
)

// handleListPrinters returns the aggregated printer views built from
// the hub's current entity states.
func (s *Server) handleListPrinters(w http.ResponseWriter, r *http.Request) {
	states, err := s.hubClient.States(r.Context())
	if err != nil {
		s.logger.Error("fetching hub states failed", "error", err)
		writeUpstreamError(w, "hub unreachable")
		return
	}

	printers := printer.Aggregate(states)
	writeJSON(w, http.StatusOK, map[string]any{
		"printers": printers,
		"count":    len(printers),
	})
}

// handleListSpools returns the Spoolman inventory as the bridge sees
// it, with extra fields decoded.
func (s *Server) handleListSpools(w http.ResponseWriter, r *http.Request) {
	spools, err := s.inventory.ListSpools(r.Context())
	if err != nil {
		s.logger.Error("listing spools failed", "error", err)
		writeUpstreamError(w, "spoolman unreachable")
		return
	}

	type spoolView struct {
		ID              int     `json:"id"`
		FilamentName    string  `json:"filament_name"`
		Material        string  `json:"material"`
		RemainingWeight float64 `json:"remaining_weight"`
		TagUID          string  `json:"tag_uid,omitempty"`
		ActiveTray      string  `json:"active_tray,omitempty"`
		Archived        bool    `json:"archived,omitempty"`
	}

	views := make([]spoolView, 0, len(spools))
	for _, spool := range spools {
		views = append(views, spoolView{
			ID:              spool.ID,
			FilamentName:    spool.Filament.Name,
			Material:        spool.Filament.Material,
			RemainingWeight: spool.RemainingWeight,
			TagUID:          spool.TagUID(),
			ActiveTray:      spool.ActiveTray(),
			Archived:        spool.Archived,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"spools": views,
		"count":  len(views),
	})
}

// handleListActivity returns paginated activity records, optionally
// filtered by event type.
func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	if s.activity == nil {
		writeNotFound(w, "activity log not configured")
		return
	}

	filter := activity.Filter{
		Type: r.URL.Query().Get("type"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			filter.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil {
			filter.Offset = offset
		}
	}

	result, err := s.activity.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing activity failed", "error", err)
		writeInternalError(w, "failed to query activity log")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// assignRequest is the body for manual spool assignment.
type assignRequest struct {
	TrayKey string `json:"tray_key"`
}

// handleAssignSpool manually binds a spool to a tray.
func (s *Server) handleAssignSpool(w http.ResponseWriter, r *http.Request) {
	spoolID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "spool id must be an integer")
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.TrayKey == "" {
		writeBadRequest(w, "tray_key is required")
		return
	}

	writeResult(w, s.engine.Assign(r.Context(), spoolID, req.TrayKey))
}

// handleUnassignSpool clears a spool's tray assignment.
func (s *Server) handleUnassignSpool(w http.ResponseWriter, r *http.Request) {
	spoolID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "spool id must be an integer")
		return
	}

	writeResult(w, s.engine.Unassign(r.Context(), spoolID))
}

// writeResult maps an engine result onto an HTTP response. Only
// upstream failures are non-200; automations and UIs inspect the
// status field for the rest.
func writeResult(w http.ResponseWriter, result syncengine.Result) {
	status := http.StatusOK
	if result.Status == syncengine.StatusError {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, result)
}
