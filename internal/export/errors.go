package export

import (
	"errors"
	"fmt"
)

// ErrEmptyResult is returned when the endpoint produced zero documents.
// It is a soft failure: callers treat it as a no-op.
var ErrEmptyResult = errors.New("export returned no documents")

// ErrNoFieldsSelected is returned when a download is requested with every column deselected.
var ErrNoFieldsSelected = errors.New("no fields selected")

// NetworkError reports a failed request or a non-2xx response.
type NetworkError struct {
	URL        string
	StatusCode int    // 0 when the request never got a response
	Body       string // first bytes of the response body, if any
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: http %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedPayloadError reports a response body that could not be turned into documents.
type MalformedPayloadError struct {
	Err error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload: %v", e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// CSVParseError reports CSV text the decoder rejected.
type CSVParseError struct {
	Line int
	Err  error
}

func (e *CSVParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse csv: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse csv: %v", e.Err)
}

func (e *CSVParseError) Unwrap() error { return e.Err }

// StateError is returned when an event is not allowed in the session's current state.
type StateError struct {
	State State
	Event string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Event, e.State)
}
