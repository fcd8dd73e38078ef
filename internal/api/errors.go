package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// GenericMessage is shown when the server gives no usable error message.
const GenericMessage = "Something went wrong"

// OfflineMessage is the notification title for transport failures.
const OfflineMessage = "No internet connection"

// NetworkError reports a request that never produced an HTTP response:
// no connectivity, refused connection, timeout or cancellation.
type NetworkError struct {
	Method string
	Path   string
	Err    error
	// Canceled is set when the caller abandoned the request, for example
	// because a newer request superseded it.
	Canceled bool
}

func (e *NetworkError) Error() string {
	if e.Canceled {
		return fmt.Sprintf("api: %s %s canceled", e.Method, e.Path)
	}
	return fmt.Sprintf("api: %s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError reports a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
}

// errorBody is the error envelope returned by the backend. message may be
// a string or a list of strings.
type errorBody struct {
	Message json.RawMessage `json:"message"`
}

// parseErrorMessage extracts the server message from an error body,
// joining list messages with ", ".
func parseErrorMessage(body []byte) string {
	var env errorBody
	if err := json.Unmarshal(body, &env); err != nil || len(env.Message) == 0 {
		return GenericMessage
	}

	var single string
	if err := json.Unmarshal(env.Message, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			return GenericMessage
		}
		return single
	}

	var many []string
	if err := json.Unmarshal(env.Message, &many); err == nil {
		var parts []string
		for _, m := range many {
			if m = strings.TrimSpace(m); m != "" {
				parts = append(parts, m)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	return GenericMessage
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsCanceled reports whether err is a request abandoned by its caller.
func IsCanceled(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Canceled
}

// StatusCode returns the HTTP status of an APIError, or 0.
func StatusCode(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}

// Message returns the text to show a user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Message
	}
	if IsNetwork(err) {
		return OfflineMessage
	}
	return err.Error()
}
