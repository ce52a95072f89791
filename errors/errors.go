package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/catalyst-ingest/catalyst-ingest/log"
	"github.com/xeipuuv/gojsonschema"
)

// Kind is the pre-response error taxonomy from spec §7. Every APIError
// returned to an HTTP caller carries one of these.
type Kind string

const (
	KindBadRequest          Kind = "BadRequest"
	KindStorageUnavailable  Kind = "StorageUnavailable"
	KindTranscodeFailed     Kind = "TranscodeFailed"
	KindOwnershipUnresolved Kind = "OwnershipUnresolved"
	KindCatalogWriteFailed  Kind = "CatalogWriteFailed"
)

var kindStatus = map[Kind]int{
	KindBadRequest:          http.StatusBadRequest,
	KindStorageUnavailable:  http.StatusInternalServerError,
	KindTranscodeFailed:     http.StatusInternalServerError,
	KindOwnershipUnresolved: http.StatusInternalServerError,
	KindCatalogWriteFailed:  http.StatusInternalServerError,
}

type APIError struct {
	Kind   Kind   `json:"-"`
	Msg    string `json:"message"`
	Status int    `json:"status"`
	Err    error  `json:"-"`
}

func (e APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err)
	}
	return e.Msg
}

// writeHTTPError writes the `{success:false, error, message}` body spec §7
// requires and returns the APIError for the caller to log/wrap further.
func writeHTTPError(w http.ResponseWriter, kind Kind, msg string, err error) APIError {
	status := kindStatus[kind]
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := map[string]interface{}{
		"success": false,
		"error":   string(kind),
		"message": msg,
	}
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		log.LogNoRequestID("error writing HTTP error", "http_error_msg", msg, "error", encErr)
	}
	return APIError{Kind: kind, Msg: msg, Status: status, Err: err}
}

func WriteHTTPBadRequest(w http.ResponseWriter, msg string, err error) APIError {
	return writeHTTPError(w, KindBadRequest, msg, err)
}

func WriteHTTPStorageUnavailable(w http.ResponseWriter, msg string, err error) APIError {
	return writeHTTPError(w, KindStorageUnavailable, msg, err)
}

func WriteHTTPTranscodeFailed(w http.ResponseWriter, msg string, err error) APIError {
	return writeHTTPError(w, KindTranscodeFailed, msg, err)
}

func WriteHTTPOwnershipUnresolved(w http.ResponseWriter, msg string, err error) APIError {
	return writeHTTPError(w, KindOwnershipUnresolved, msg, err)
}

func WriteHTTPCatalogWriteFailed(w http.ResponseWriter, msg string, err error) APIError {
	return writeHTTPError(w, KindCatalogWriteFailed, msg, err)
}

func WriteHTTPBadBodySchema(where string, w http.ResponseWriter, errs []gojsonschema.ResultError) APIError {
	sb := strings.Builder{}
	sb.WriteString("Body validation error in ")
	sb.WriteString(where)
	sb.WriteString(" ")
	for i := 0; i < len(errs); i++ {
		sb.WriteString(errs[i].String())
		sb.WriteString(" ")
	}
	return writeHTTPError(w, KindBadRequest, sb.String(), nil)
}

// UnretriableError marks an error that a caller's retry loop must not retry
// (e.g. a 404 from the blob store, or a validation failure).
type UnretriableError struct{ error }

func Unretriable(err error) error {
	return UnretriableError{err}
}

func (e UnretriableError) Unwrap() error {
	return e.error
}

func IsUnretriable(err error) bool {
	return errors.As(err, &UnretriableError{})
}

type ObjectNotFoundError struct {
	msg   string
	cause error
}

func (e ObjectNotFoundError) Error() string {
	return e.msg
}

func (e ObjectNotFoundError) Unwrap() error {
	return e.cause
}

func NewObjectNotFoundError(msg string, cause error) error {
	if cause != nil {
		msg = fmt.Sprintf("ObjectNotFoundError: %s: %s", msg, cause)
	} else {
		msg = fmt.Sprintf("ObjectNotFoundError: %s", msg)
	}
	// every not-found is unretriable
	return Unretriable(ObjectNotFoundError{msg: msg, cause: cause})
}

func IsObjectNotFound(err error) bool {
	return errors.As(err, &ObjectNotFoundError{})
}

// OwnershipUnresolvedError is returned by CatalogWriter when a StreamKeyMapping
// cannot be resolved to an owner by any of the fallbacks in spec §4.6 step 2.
type OwnershipUnresolvedError struct {
	StreamKey string
}

func (e OwnershipUnresolvedError) Error() string {
	return fmt.Sprintf("OwnershipUnresolved: no owner could be resolved for stream key %q", e.StreamKey)
}

func IsOwnershipUnresolved(err error) bool {
	var target OwnershipUnresolvedError
	return errors.As(err, &target)
}
