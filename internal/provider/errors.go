package provider

import (
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrUnconfigured 缺少凭据，未发起任何请求
	// ErrUnconfigured means a credential is missing; no request was made
	ErrUnconfigured = errors.New("model backend is not configured")
	// ErrTransport covers network failures and non-success statuses.
	ErrTransport = errors.New("model backend request failed")
	// ErrNoSpeech means the clip was too short or the transcript looked hallucinated.
	ErrNoSpeech = errors.New("no speech detected")
)

// TransportError keeps the backend, stage and HTTP status of a failed call.
type TransportError struct {
	Backend    string
	Stage      string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Backend, e.Stage, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Stage, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

func transportError(backend, stage string, err error) error {
	return &TransportError{
		Backend:    backend,
		Stage:      stage,
		StatusCode: statusCode(err),
		Err:        err,
	}
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
