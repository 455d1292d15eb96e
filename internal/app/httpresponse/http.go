package httpresponse

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// APIError is the body the mock node answers with when it cannot serve a request.
// It must not carry an "error" key, which clients read as a node error.
type APIError struct {
	ErrorMessage string          `json:"message"`
	Request      json.RawMessage `json:"request,omitempty"`
}

func Error(error string) *APIError {
	log.Error(error)
	e := &APIError{
		ErrorMessage: error,
	}
	return e
}

func Errorf(error string, a ...interface{}) *APIError {
	return Error(fmt.Sprintf(error, a...))
}

// Unmatched reports a request body for which no fixture exists.
func Unmatched(body []byte) *APIError {
	e := Error("no fixture matches request")
	if json.Valid(body) {
		e.Request = body
	}
	return e
}
