package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/catalyst-ingest/catalyst-ingest/log"
)

// writeJSON mirrors the teacher's Healthcheck response-writing style
// (marshal, then fall back to a logged write failure rather than panicking).
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	b, err := json.Marshal(body)
	if err != nil {
		log.LogNoRequestID("failed to marshal JSON response", "error", err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		log.LogNoRequestID("failed to write HTTP response", "error", err.Error())
	}
}
