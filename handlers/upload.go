package handlers

import (
	"io"
	"mime"
	"net/http"

	"github.com/catalyst-ingest/catalyst-ingest/config"
	"github.com/catalyst-ingest/catalyst-ingest/errors"
	"github.com/catalyst-ingest/catalyst-ingest/log"
	"github.com/catalyst-ingest/catalyst-ingest/pipeline"
	"github.com/catalyst-ingest/catalyst-ingest/queue"
	"github.com/julienschmidt/httprouter"
)

var allowedVideoMIMETypes = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/x-msvideo":  true,
}

// sniffedVideoContentTypes is checked against net/http.DetectContentType's
// result on the first 512 bytes of the uploaded file, in addition to the
// declared multipart Content-Type (spec §4.10): a client can claim any
// Content-Type header it likes, but the magic bytes of a container are not
// forgeable the same way. Go's sniffer recognizes AVI ("video/avi") but has
// no MOV signature of its own, so a legitimate MOV file falls back to
// "application/octet-stream"; that fallback is accepted here rather than
// rejecting every MOV upload.
var sniffedVideoContentTypes = map[string]bool{
	"video/mp4":                true,
	"video/avi":                true,
	"application/octet-stream": true,
}

// UploadVideo implements the primary ingress (spec §6 POST
// /api/channels/upload-video): validates the multipart request, hands the
// video to the Pipeline, and responds once Pipeline.Run reaches step 6.
func (c *Collection) UploadVideo() httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		requestID := config.RandomTrailer(8)

		req.Body = http.MaxBytesReader(w, req.Body, config.MaxInputFileSizeBytes)
		if err := req.ParseMultipartForm(32 << 20); err != nil {
			errors.WriteHTTPBadRequest(w, "request exceeds the 2 GiB upload limit or is malformed", err)
			return
		}

		streamKey := req.FormValue("streamKey")
		channelName := req.FormValue("channelName")
		userEmail := req.FormValue("userEmail")
		if streamKey == "" || channelName == "" || userEmail == "" {
			errors.WriteHTTPBadRequest(w, "streamKey, channelName and userEmail are required", nil)
			return
		}

		file, header, err := req.FormFile("video")
		if err != nil {
			errors.WriteHTTPBadRequest(w, "missing multipart field \"video\"", err)
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if t, _, parseErr := mime.ParseMediaType(contentType); parseErr != nil || !allowedVideoMIMETypes[t] {
			errors.WriteHTTPBadRequest(w, "unsupported video MIME type "+contentType, nil)
			return
		}

		sniffBuf := make([]byte, 512)
		n, readErr := io.ReadFull(file, sniffBuf)
		if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
			errors.WriteHTTPBadRequest(w, "failed to inspect uploaded video", readErr)
			return
		}
		sniffed := http.DetectContentType(sniffBuf[:n])
		if !sniffedVideoContentTypes[sniffed] {
			errors.WriteHTTPBadRequest(w, "uploaded file does not look like a video (sniffed "+sniffed+")", nil)
			return
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			errors.WriteHTTPBadRequest(w, "failed to rewind uploaded video after inspection", err)
			return
		}

		uploadID := req.FormValue("uploadId")
		if uploadID == "" {
			uploadID = config.GenerateUploadID(config.Clock.GetTime())
		}

		log.AddContext(requestID, "stream_key", streamKey, "upload_id", uploadID)

		outcome, err := c.Pipeline.Run(req.Context(), pipeline.RunInput{
			RequestID:           requestID,
			StreamKey:           streamKey,
			UploadID:            uploadID,
			Source:              file,
			RequesterEmail:      userEmail,
			ChannelNameAdvisory: channelName,
			Title:               req.FormValue("title"),
			Description:         req.FormValue("description"),
			Price:               req.FormValue("price"),
			DestOSURL:           c.DestOSURL,
			CDNBase:             c.CDNBase,
		})
		if err != nil {
			writePipelineError(w, err)
			return
		}

		if c.Queue != nil {
			if pubErr := c.Queue.PublishStreamProcessed(queue.StreamProcessedMessage{
				StreamName:  streamKey,
				SchedulerID: uploadID,
				Timestamp:   config.Clock.GetTime().UnixMilli(),
				Files:       []string{string(config.PrimaryRendition().Name)},
			}); pubErr != nil {
				log.LogError(requestID, "failed to publish stream_processed message", pubErr)
			}
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"message":   "upload accepted",
			"streamKey": outcome.StreamKey,
		})
	}
}

// writePipelineError maps a *pipeline.Error to the spec §7 HTTP body via the
// errors package's Kind-specific writers.
func writePipelineError(w http.ResponseWriter, err error) {
	var pipelineErr *pipeline.Error
	if asErr, ok := err.(*pipeline.Error); ok {
		pipelineErr = asErr
	}
	if pipelineErr == nil {
		errors.WriteHTTPStorageUnavailable(w, "upload failed", err)
		return
	}
	switch pipelineErr.Kind {
	case "BadRequest":
		errors.WriteHTTPBadRequest(w, pipelineErr.Err.Error(), pipelineErr.Err)
	case "TranscodeFailed":
		errors.WriteHTTPTranscodeFailed(w, pipelineErr.Err.Error(), pipelineErr.Err)
	case "OwnershipUnresolved":
		errors.WriteHTTPOwnershipUnresolved(w, pipelineErr.Err.Error(), pipelineErr.Err)
	case "CatalogWriteFailed":
		errors.WriteHTTPCatalogWriteFailed(w, pipelineErr.Err.Error(), pipelineErr.Err)
	default:
		errors.WriteHTTPStorageUnavailable(w, pipelineErr.Err.Error(), pipelineErr.Err)
	}
}
