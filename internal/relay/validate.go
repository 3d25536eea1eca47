package relay

import (
	"github.com/tidwall/gjson"
)

const (
	errBodyNotObject   = "Request body must be a JSON object."
	errInvalidMessages = "`messages` must be a non-empty array of message objects."
	errInvalidSummary  = "`sessionSummary` must be a string when provided."
	errInvalidOptions  = "`options` must be an object when provided."
)

// Request is a validated chat request. Messages keep their raw JSON so they
// reach the upstream unchanged.
type Request struct {
	Messages []gjson.Result
	Summary  string
	Options  gjson.Result
}

func (r Request) HasOptions() bool {
	return r.Options.IsObject()
}

// ValidateRequest checks the shape of a chat request body.
func ValidateRequest(body []byte) (Request, error) {
	if !gjson.ValidBytes(body) {
		return Request{}, validationError(errBodyNotObject)
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return Request{}, validationError(errBodyNotObject)
	}

	messages := root.Get("messages")
	if !messages.IsArray() {
		return Request{}, validationError(errInvalidMessages)
	}

	elements := messages.Array()
	if len(elements) == 0 {
		return Request{}, validationError(errInvalidMessages)
	}
	for _, element := range elements {
		if !isMessage(element) {
			return Request{}, validationError(errInvalidMessages)
		}
	}

	request := Request{Messages: elements}

	if summary := root.Get("sessionSummary"); summary.Exists() {
		if summary.Type != gjson.String {
			return Request{}, validationError(errInvalidSummary)
		}
		request.Summary = summary.String()
	}

	if options := root.Get("options"); options.Exists() {
		if !options.IsObject() {
			return Request{}, validationError(errInvalidOptions)
		}
		request.Options = options
	}

	return request, nil
}

func isMessage(element gjson.Result) bool {
	if !element.IsObject() {
		return false
	}

	return element.Get("role").Type == gjson.String && element.Get("content").Type == gjson.String
}
