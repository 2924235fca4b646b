package api

import (
	"encoding/json"
	"net/http"

	"github.com/openspool/spoolbridge/internal/syncengine"
)

// Webhook event names accepted from hub automations.
const (
	webhookSpoolUsage   = "spool_usage"
	webhookTrayChange   = "tray_change"
	webhookPrintWarning = "print_warning"
)

// webhookRequest is the envelope hub automations post. Fields beyond
// Event are read per event type.
type webhookRequest struct {
	Event      string  `json:"event"`
	EntityID   string  `json:"entity_id"`
	UsedWeight float64 `json:"used_weight,omitempty"`
	TagUID     string  `json:"tag_uid,omitempty"`
	Message    string  `json:"message,omitempty"`
}

// handleWebhook dispatches a hub automation event to the sync engine.
//
// The response always carries the engine's result status; no_match and
// ignored outcomes are still 200 so automations do not retry them.
// Upstream failures return 502.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	var result syncengine.Result
	switch req.Event {
	case webhookSpoolUsage:
		result = s.engine.HandleSpoolUsage(r.Context(), syncengine.UsageEvent{
			EntityID:   req.EntityID,
			UsedWeight: req.UsedWeight,
		})
	case webhookTrayChange:
		result = s.engine.HandleTrayChange(r.Context(), syncengine.TrayChangeEvent{
			EntityID: req.EntityID,
			TagUID:   req.TagUID,
		})
	case webhookPrintWarning:
		result = s.engine.HandlePrintWarning(r.Context(), syncengine.PrintWarningEvent{
			EntityID: req.EntityID,
			Message:  req.Message,
		})
	default:
		writeBadRequest(w, "unknown event: "+req.Event)
		return
	}

	writeResult(w, result)
}

// handleWebhookInfo describes the webhook payloads so automation
// authors can probe the endpoint with a browser.
func (s *Server) handleWebhookInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"description": "POST hub automation events to this endpoint",
		"events": map[string]any{
			webhookSpoolUsage: map[string]string{
				"entity_id":   "tray or external spool sensor entity",
				"used_weight": "grams of filament consumed (number, required)",
			},
			webhookTrayChange: map[string]string{
				"entity_id": "tray or external spool sensor entity",
				"tag_uid":   "RFID tag read from the tray (optional, read from hub state when omitted)",
			},
			webhookPrintWarning: map[string]string{
				"entity_id": "any printer sensor entity",
				"message":   "warning text to relay to connected clients",
			},
		},
		"statuses": []string{
			string(syncengine.StatusSuccess),
			string(syncengine.StatusNoMatch),
			string(syncengine.StatusIgnored),
			string(syncengine.StatusError),
		},
	})
}
