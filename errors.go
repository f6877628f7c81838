package swaggermcp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ibrahimsaleem/Swaggermcp/internal/pylang"
)

// ErrorKind is a machine-readable error classification.
type ErrorKind string

const (
	// KindParse is malformed source: surfaced verbatim, never recoverable.
	KindParse ErrorKind = "ParseError"
	// KindEmptyInput is source with zero top-level functions.
	KindEmptyInput ErrorKind = "EmptyInputError"
	// KindActivation is a stop/start/health-check failure in the lifecycle
	// manager: fatal to that upload attempt, no rollback.
	KindActivation ErrorKind = "ActivationError"
	// KindInvalidArgument is a client-side request problem, including a
	// missing required endpoint parameter.
	KindInvalidArgument ErrorKind = "InvalidArgument"
	// KindInvocation is a user function raising during a request. It is
	// per-request and never affects listener health.
	KindInvocation ErrorKind = "InvocationError"
	// KindBusy means an activation is already in flight.
	KindBusy ErrorKind = "Busy"
	// KindNotFound is an unknown route.
	KindNotFound ErrorKind = "NotFound"
	// KindInternal is everything else.
	KindInternal ErrorKind = "Internal"
)

// Error is the standard JSON error envelope:
// {"status":"error","kind":"...","message":"..."}.
type Error struct {
	Status  string    `json:"status"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError creates a new service error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Status: "error", Kind: kind, Message: message}
}

// Errorf creates a new service error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return NewError(kind, fmt.Sprintf(format, args...))
}

// HTTPStatus maps an ErrorKind to an HTTP status code.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindParse, KindEmptyInput, KindInvalidArgument, KindInvocation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindBusy:
		return http.StatusServiceUnavailable
	case KindActivation, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// AsError maps an application error to the service error envelope.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}

	var syn *pylang.SyntaxError
	if errors.As(err, &syn) {
		return NewError(KindParse, syn.Error())
	}

	var rt *pylang.RuntimeError
	if errors.As(err, &rt) {
		return NewError(KindInvocation, rt.Error())
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		return NewError(KindInvalidArgument, valErrs.Error())
	}

	return NewError(KindInternal, err.Error())
}

func writeError(w http.ResponseWriter, svcErr *Error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.Kind.HTTPStatus())
	if err := writeJSONBody(w, svcErr); err != nil {
		// Headers already sent, nothing we can do. Log for debugging.
		logger.Error("failed to encode error response",
			slog.String("kind", string(svcErr.Kind)),
			slog.String("message", svcErr.Message),
			slog.Any("error", err))
	}
}
