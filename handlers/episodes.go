package handlers

import (
	"net/http"

	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/catalyst-ingest/catalyst-ingest/errors"
	"github.com/julienschmidt/httprouter"
)

type episodeEditRequest struct {
	StreamKey     string `json:"streamKey"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	AdminEmail    string `json:"adminEmail"`
}

// EpisodeEdit implements POST /api/episodes/edit (spec §6): admin-only
// title/description edits for an EpisodeEntry.
func (c *Collection) EpisodeEdit() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		var body episodeEditRequest
		if !decodeJSONBody(w, req, "EpisodeEdit", &body) {
			return
		}
		if body.AdminEmail != c.PlatformAdminEmail {
			writeJSON(w, http.StatusForbidden, map[string]interface{}{
				"success": false,
				"message": "adminEmail does not match the configured platform admin",
			})
			return
		}

		ownerID, err := c.CatalogStore.OwnerIDForStreamKey(req.Context(), body.StreamKey)
		if err != nil {
			errors.WriteHTTPOwnershipUnresolved(w, "no owner resolved for stream key "+body.StreamKey, err)
			return
		}

		err = c.CatalogStore.UpdateEpisode(req.Context(), ownerID, body.StreamKey, body.EpisodeNumber,
			body.Title, body.Description, body.AdminEmail, config.Clock.GetTime())
		if err != nil {
			errors.WriteHTTPStorageUnavailable(w, "failed to update episode", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}

// EpisodeList implements GET /api/episodes/:streamKey?adminEmail=… (spec
// §6): lists every EpisodeEntry for a stream.
func (c *Collection) EpisodeList() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
		streamKey := params.ByName("streamKey")
		adminEmail := req.URL.Query().Get("adminEmail")
		if adminEmail != c.PlatformAdminEmail {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		episodes, err := c.CatalogStore.ListEpisodes(req.Context(), streamKey)
		if err != nil {
			errors.WriteHTTPStorageUnavailable(w, "failed to list episodes", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"episodes": episodes})
	}
}
