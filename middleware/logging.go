package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/catalyst-ingest/catalyst-ingest/errors"
	"github.com/catalyst-ingest/catalyst-ingest/log"
	"github.com/julienschmidt/httprouter"
)

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}

	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

// LogRequest wraps a handler with access logging and panic recovery, so a
// panic deep in Pipeline bootstrapping never takes the whole server down.
func LogRequest() func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		fn := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			defer func() {
				if err := recover(); err != nil {
					errors.WriteHTTPStorageUnavailable(wrapped, "internal server error", nil)
					log.LogNoRequestID("panic recovered in HTTP handler", "err", err, "trace", string(debug.Stack()))
				}
			}()

			next(wrapped, r, ps)
			log.LogNoRequestID("request handled",
				"remote", r.RemoteAddr,
				"proto", r.Proto,
				"method", r.Method,
				"uri", r.URL.RequestURI(),
				"duration", time.Since(start).String(),
				"status", wrapped.status,
			)
		}

		return fn
	}
}
