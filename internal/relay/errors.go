package relay

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/tidwall/sjson"
)

type Kind int

const (
	KindClientValidation Kind = iota + 1
	KindConfiguration
	KindUpstreamUnreachable
	KindUpstreamRejected
	KindStreamCorruption
)

func (k Kind) String() string {
	switch k {
	case KindClientValidation:
		return "client_validation"
	case KindConfiguration:
		return "configuration"
	case KindUpstreamUnreachable:
		return "upstream_unreachable"
	case KindUpstreamRejected:
		return "upstream_rejected"
	case KindStreamCorruption:
		return "stream_corruption"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

const (
	msgServiceNotConfigured = "service not configured"
	msgUpstreamUnreachable  = "Failed to reach upstream service."
	msgUpstreamRejected     = "Upstream service returned an error."
	msgBodyTooLarge         = "Request body is too large."
)

// Error is a relay failure with the HTTP response it maps to. Message is
// what the caller sees; Err carries the internal cause and is only logged.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	// UpstreamStatus and Detail are set for KindUpstreamRejected.
	UpstreamStatus int
	Detail         string
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(message string) *Error {
	return &Error{Kind: KindClientValidation, Status: http.StatusBadRequest, Message: message}
}

// body renders the JSON error document sent to the caller.
func (e *Error) body() []byte {
	doc := []byte(`{}`)
	doc, _ = sjson.SetBytes(doc, "error", e.Message)
	if e.Kind == KindUpstreamRejected {
		doc, _ = sjson.SetBytes(doc, "status", e.UpstreamStatus)
		doc, _ = sjson.SetBytes(doc, "detail", e.Detail)
	}
	return doc
}

func writeError(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)
	_, _ = w.Write(err.body())
}
