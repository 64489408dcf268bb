package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Error categories. An *APIError matches exactly one of them with errors.Is.
var (
	// ErrTransport means the API could not be reached.
	ErrTransport = errors.New("blitzr: transport failure")

	// ErrProtocol means the API answered with an error status or a body
	// that could not be decoded.
	ErrProtocol = errors.New("blitzr: protocol failure")
)

var (
	// ErrRetryExhausted is returned when all retry attempts failed.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context ends during a retry backoff.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass classifies failed requests.
type ErrorClass string

const (
	// ErrorClassClient is a 4xx answer other than 429.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer is a 5xx answer.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit is a 429 answer or a locally exhausted quota.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork is a connection, DNS or timeout failure.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode is a response body that is not the expected JSON.
	ErrorClassDecode ErrorClass = "decode"
)

// APIError describes a failed API call.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("blitzr %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("blitzr %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is maps the class onto ErrTransport or ErrProtocol.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.ErrorClass == ErrorClassNetwork
	case ErrProtocol:
		return e.ErrorClass != ErrorClassNetwork && e.ErrorClass != ""
	default:
		return false
	}
}

// classifyStatus maps an HTTP status of 400 or above to an error class.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// shouldRetry reports whether a failure of the given class may succeed on retry.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		return false
	}
}

// classOf extracts the class of an *APIError in err's chain.
func classOf(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass
	}
	return ""
}
