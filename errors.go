package irc

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies an error returned synchronously from the client facade, per the error
// taxonomy described for the protocol engine: validation, precondition, and permission errors
// are always raised synchronously to the immediate caller and never sent to the server.
type ErrorKind int

const (
	// KindValidation indicates malformed input: an invalid nickname/channel/username format, a
	// value exceeding a negotiated length cap, a missing required argument, or an invalid URI scheme.
	KindValidation ErrorKind = iota
	// KindPrecondition indicates the client isn't in a state that allows the requested operation:
	// wrong ConnectionState, a disposed instance, or a command unsupported by the negotiated server.
	KindPrecondition
	// KindPermission indicates the caller lacks the channel status (operator/half-op/owner)
	// required for the requested mode change.
	KindPermission
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindPermission:
		return "permission"
	default:
		return "unknown"
	}
}

// FacadeError is returned synchronously by Client facade methods (JoinChannel, PrivateMessage,
// SetChannelMode, etc.) when a command fails local validation before anything is written to the
// connection. FacadeError never originates from the server; server-side failure replies reach
// handlers as inbound Messages instead.
type FacadeError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *FacadeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *FacadeError) Unwrap() error { return e.cause }

func newFacadeError(kind ErrorKind, message string) *FacadeError {
	return &FacadeError{Kind: kind, Message: message, cause: errors.New(message)}
}

func wrapFacadeError(kind ErrorKind, message string, cause error) *FacadeError {
	return &FacadeError{Kind: kind, Message: message, cause: errors.Wrap(cause, message)}
}

// Sentinel FacadeErrors for conditions named explicitly by the spec. errors.Is matches these
// through FacadeError.Is (same Kind and Message), so callers can test for a specific condition:
//
//	if errors.Is(err, irc.ErrTargetIsSelf) { ... }
var (
	ErrTargetIsSelf      = newFacadeError(KindValidation, "message target is the client's own nickname")
	ErrNameTooLong       = newFacadeError(KindValidation, "name exceeds the negotiated length limit")
	ErrTooManyChannels   = newFacadeError(KindPrecondition, "too many channels joined")
	ErrNotSupported      = newFacadeError(KindPrecondition, "operation is not supported by the negotiated server capabilities")
	ErrNotRegistered     = newFacadeError(KindPrecondition, "client is not registered with the server")
	ErrPermissionDenied  = newFacadeError(KindPermission, "caller lacks the required channel status")
	ErrDisposed          = newFacadeError(KindPrecondition, "client is disconnected")
)

// Is allows errors.Is to match any FacadeError of the same Kind carrying the same Message,
// independent of allocation identity -- this lets newFacadeError-built sentinels above compare
// correctly against errors constructed elsewhere with the same kind/message pair.
func (e *FacadeError) Is(target error) bool {
	t, ok := target.(*FacadeError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// ServerErrorKind classifies a numeric server error reply held in a ServerError.
type ServerErrorKind int

const (
	ServerErrGeneric ServerErrorKind = iota
	ServerErrNicknameInUse
	ServerErrCannotChangeNick
	ServerErrNickCollision
	ServerErrTooManyChannels
	ServerErrInviteOnly
	ServerErrTargetTooFast
)

// ServerError wraps a numeric error reply (4xx/5xx) received from the server. The client does
// not construct it: such replies reach handlers as the original *Message, and no facade call
// returns one.
type ServerError struct {
	Kind    ServerErrorKind
	Numeric string
	Raw     *Message
}

func (e *ServerError) Error() string {
	text, _ := e.Raw.Text()
	if text == "" {
		text = e.Raw.Params.Get(len(e.Raw.Params))
	}
	return fmt.Sprintf("server error %s: %s", e.Numeric, text)
}

// ParseError describes an inbound line that could not be decoded into a Message. The client
// logs it to Client.Log at Debug level and skips the line; it is not passed to handlers.
// The session continues; ParseError never terminates the connection.
type ParseError struct {
	Raw   string
	cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed message %q: %v", e.Raw, e.cause)
}

func (e *ParseError) Unwrap() error { return e.cause }
