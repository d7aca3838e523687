package game

import "fmt"

// ErrorKind classifies an ActionError for the transport layer
type ErrorKind int

const (
	KindInvalid ErrorKind = iota
	KindForbidden
	KindNotFound
)

// ActionError is returned when an action is rejected by the state machine.
// Message is safe to show to clients.
type ActionError struct {
	Kind    ErrorKind
	Message string
}

func (e *ActionError) Error() string {
	return e.Message
}

// ErrPlayerNotFound is returned when an action names a player not in the session
var ErrPlayerNotFound = &ActionError{Kind: KindNotFound, Message: "Player not found"}

func invalidf(format string, args ...interface{}) *ActionError {
	return &ActionError{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

func forbiddenf(format string, args ...interface{}) *ActionError {
	return &ActionError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}
