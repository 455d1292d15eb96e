package nanorpc

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind discriminates the failures a call can produce.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport is a network failure or a response body that cannot be decoded.
	KindTransport
	// KindRemote is a well-formed response carrying an "error" key.
	KindRemote
	// KindMockMatch is raised by mock transports for a request with no fixture.
	KindMockMatch
	// KindInvalidArgument is a call rejected before anything was sent.
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRemote:
		return "remote"
	case KindMockMatch:
		return "mock match"
	case KindInvalidArgument:
		return "invalid argument"
	}
	return "unknown"
}

type Error struct {
	Kind    Kind
	Action  string
	Message string
	// Body is the request body for mock match failures and the response body otherwise, when known.
	Body []byte
	Err  error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Action != "" {
		return fmt.Sprintf("%s error (%s): %s", e.Kind, e.Action, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func transportError(action string, err error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindTransport,
		Action:  action,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func remoteError(action, message string, body []byte) *Error {
	return &Error{
		Kind:    KindRemote,
		Action:  action,
		Message: message,
		Body:    body,
	}
}

func invalidArgument(action string, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindInvalidArgument,
		Action:  action,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewMockMatchError reports a request body that no fixture matches.
func NewMockMatchError(body []byte) *Error {
	return &Error{
		Kind:    KindMockMatch,
		Message: fmt.Sprintf("no fixture matches request %s", body),
		Body:    body,
	}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsTransport(err error) bool {
	return KindOf(err) == KindTransport
}

func IsRemote(err error) bool {
	return KindOf(err) == KindRemote
}

func IsMockMatch(err error) bool {
	return KindOf(err) == KindMockMatch
}

func IsInvalidArgument(err error) bool {
	return KindOf(err) == KindInvalidArgument
}
