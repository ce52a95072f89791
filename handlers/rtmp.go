package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/catalyst-ingest/catalyst-ingest/errors"
	"github.com/catalyst-ingest/catalyst-ingest/log"
	"github.com/catalyst-ingest/catalyst-ingest/pipeline"
	"github.com/catalyst-ingest/catalyst-ingest/queue"
	"github.com/julienschmidt/httprouter"
	"github.com/xeipuuv/gojsonschema"
)

type streamStartStopRequest struct {
	Name        string `json:"name"`
	SchedulerID string `json:"schedulerId"`
}

type nginxHookRequest struct {
	StreamID  string `json:"streamId"`
	InputURL  string `json:"inputUrl"`
	OutputURL string `json:"outputUrl"`
}

func decodeJSONBody(w http.ResponseWriter, req *http.Request, schemaName string, into interface{}) bool {
	payload, err := io.ReadAll(req.Body)
	if err != nil {
		errors.WriteHTTPBadRequest(w, "cannot read request body", err)
		return false
	}
	schema := inputSchemasCompiled[schemaName]
	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		errors.WriteHTTPBadRequest(w, "cannot validate request body", err)
		return false
	}
	if !result.Valid() {
		errors.WriteHTTPBadBodySchema(schemaName, w, result.Errors())
		return false
	}
	if err := json.Unmarshal(payload, into); err != nil {
		errors.WriteHTTPBadRequest(w, "invalid request body", err)
		return false
	}
	return true
}

// StreamStart implements POST /stream/start (spec §6): registers an active
// stream in memory.
func (c *Collection) StreamStart() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		var body streamStartStopRequest
		if !decodeJSONBody(w, req, "StreamStart", &body) {
			return
		}
		c.ActiveStreams.Store(body.Name, ActiveStream{
			Name:        body.Name,
			SchedulerID: body.SchedulerID,
			StartedAt:   config.Clock.GetTime(),
		})
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}

// StreamStop implements POST /stream/stop (spec §6): runs the Pipeline
// against the RTMP-recorded file for this stream, then deregisters it.
func (c *Collection) StreamStop() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		var body streamStartStopRequest
		if !decodeJSONBody(w, req, "StreamStop", &body) {
			return
		}
		requestID := config.RandomTrailer(8)
		defer c.ActiveStreams.Remove(requestID, body.Name)

		recordedPath := filepath.Join(config.PathRecordingDir, body.Name+".mp4")
		file, err := os.Open(recordedPath)
		if err != nil {
			errors.WriteHTTPStorageUnavailable(w, "recorded file not found for stream "+body.Name, err)
			return
		}
		defer file.Close()

		uploadID := config.GenerateUploadID(config.Clock.GetTime())
		_, err = c.Pipeline.Run(req.Context(), pipeline.RunInput{
			RequestID:           requestID,
			StreamKey:           body.Name,
			UploadID:            uploadID,
			Source:              file,
			ChannelNameAdvisory: body.Name,
			DestOSURL:           c.DestOSURL,
			CDNBase:             c.CDNBase,
		})
		if err != nil {
			writePipelineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}

// renditionNames lists the fixed adaptive ladder (spec §3) for the outbound
// queue message's "variants" field (spec §6).
func renditionNames() []string {
	names := make([]string, len(config.RenditionLadder))
	for i, r := range config.RenditionLadder {
		names[i] = string(r.Name)
	}
	return names
}

// NginxHookStart implements POST /start-stream (spec §6): the nginx-hook
// variant, which additionally announces the start on the outbound queue.
func (c *Collection) NginxHookStart() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		var body nginxHookRequest
		if !decodeJSONBody(w, req, "NginxHook", &body) {
			return
		}
		if c.Queue != nil {
			if err := c.Queue.PublishRTMPLifecycle(queue.RTMPLifecycleMessage{
				StreamID:  body.StreamID,
				InputURL:  body.InputURL,
				OutputURL: body.OutputURL,
				Variants:  renditionNames(),
				Action:    "start",
			}); err != nil {
				log.LogNoRequestID("failed to publish rtmp start message", "error", err.Error())
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}

// NginxHookStop implements POST /stop-stream (spec §6).
func (c *Collection) NginxHookStop() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		var body nginxHookRequest
		if !decodeJSONBody(w, req, "NginxHook", &body) {
			return
		}
		if c.Queue != nil {
			if err := c.Queue.PublishRTMPLifecycle(queue.RTMPLifecycleMessage{
				StreamID: body.StreamID,
				Action:   "stop",
			}); err != nil {
				log.LogNoRequestID("failed to publish rtmp stop message", "error", err.Error())
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}
