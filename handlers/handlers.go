// Package handlers implements HookServer (spec §4.10): the HTTP surface
// described in spec §6 (multipart upload, RTMP lifecycle hooks, health/
// introspection, Admin Episode API).
package handlers

import (
	"time"

	"github.com/catalyst-ingest/catalyst-ingest/cache"
	"github.com/catalyst-ingest/catalyst-ingest/catalog"
	"github.com/catalyst-ingest/catalyst-ingest/pipeline"
	"github.com/catalyst-ingest/catalyst-ingest/queue"
	"github.com/julienschmidt/httprouter"
)

// ActiveStream is what's registered in memory between /stream/start and
// /stream/stop (spec §6).
type ActiveStream struct {
	Name        string
	SchedulerID string
	StartedAt   time.Time
}

// Collection holds every dependency the HTTP handlers need, mirroring the
// teacher's CatalystAPIHandlersCollection (handlers/handlers.go,
// handlers/client.go) but scoped to this service's surface.
type Collection struct {
	Pipeline      *pipeline.Pipeline
	CatalogStore  *catalog.Store
	ActiveStreams *cache.Cache[ActiveStream]
	Queue         *queue.Publisher

	DestOSURL           string
	CDNBase             string
	PlatformAdminEmail  string
	MasterAccountID     string
	DefaultThumbnailURL string
}

func New(p *pipeline.Pipeline, store *catalog.Store, q *queue.Publisher, destOSURL, cdnBase, platformAdminEmail, masterAccountID, defaultThumbnailURL string) *Collection {
	return &Collection{
		Pipeline:            p,
		CatalogStore:        store,
		ActiveStreams:       cache.New[ActiveStream](),
		Queue:               q,
		DestOSURL:           destOSURL,
		CDNBase:             cdnBase,
		PlatformAdminEmail:  platformAdminEmail,
		MasterAccountID:     masterAccountID,
		DefaultThumbnailURL: defaultThumbnailURL,
	}
}

// NewRouter wires every endpoint from spec §6 onto an httprouter.Router.
func NewRouter(c *Collection) *httprouter.Router {
	r := httprouter.New()

	r.POST("/api/channels/upload-video", c.UploadVideo())

	r.POST("/stream/start", c.StreamStart())
	r.POST("/stream/stop", c.StreamStop())
	r.POST("/start-stream", c.NginxHookStart())
	r.POST("/stop-stream", c.NginxHookStop())

	r.GET("/health", c.Health())
	r.GET("/streams", c.Streams())

	r.POST("/api/episodes/edit", c.EpisodeEdit())
	r.GET("/api/episodes/:streamKey", c.EpisodeList())

	return r
}
