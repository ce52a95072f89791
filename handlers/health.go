package handlers

import (
	"net/http"

	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/julienschmidt/httprouter"
)

type healthResponse struct {
	Status        string `json:"status"`
	ActiveStreams int    `json:"activeStreams"`
	Timestamp     int64  `json:"timestamp"`
}

// Health implements GET /health (spec §6).
func (c *Collection) Health() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusOK, healthResponse{
			Status:        "healthy",
			ActiveStreams: len(c.ActiveStreams.Items()),
			Timestamp:     config.Clock.GetTime().UnixMilli(),
		})
	}
}

// Streams implements GET /streams (spec §6): lists active stream names and
// metadata.
func (c *Collection) Streams() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"streams": c.ActiveStreams.Items(),
		})
	}
}
