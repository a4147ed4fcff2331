package errcodes

import (
	"fmt"
	"net/http"
)

// Error is a failure that carries its own HTTP status and a stable machine
// readable code. Domain packages return these for validation and lookup
// failures so callers can tell them apart from infrastructure errors.
type Error struct {
	HTTPCode int
	Message  string
	Code     string
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode && te.Code == err.Code && te.Message == err.Message
}

func newError(httpCode int, code, msg string) error {
	return &Error{HTTPCode: httpCode, Message: msg, Code: code}
}

// NotFound returns a 404 error naming the missing resource.
func NotFound(resource string) error {
	return newError(http.StatusNotFound, "not_found", resource+" not found.")
}

func ValidationError(msg string) error {
	return newError(http.StatusUnprocessableEntity, "validation_error", msg)
}

// Validationf is ValidationError with a format string.
func Validationf(format string, args ...interface{}) error {
	return ValidationError(fmt.Sprintf(format, args...))
}

func ValidationTypeError(msg string) error {
	return newError(http.StatusUnprocessableEntity, "validation_type_error", msg)
}

// LibraryMismatch is returned when a batch contains a book that belongs to a
// different library than the series it is being attached to.
func LibraryMismatch(bookName string) error {
	return newError(http.StatusUnprocessableEntity, "library_mismatch",
		fmt.Sprintf("Book %q belongs to a different library than the series.", bookName))
}

func Conflict(msg string) error {
	return newError(http.StatusConflict, "conflict", msg)
}

func UnsupportedMediaType() error {
	return newError(http.StatusUnsupportedMediaType, "unsupported_media_type", "Unsupported Media Type")
}

func UnknownParameter(param string) error {
	return newError(http.StatusUnprocessableEntity, "unknown_parameter", fmt.Sprintf("Unknown Parameter %q", param))
}

func MalformedPayload() error {
	return newError(http.StatusBadRequest, "malformed_payload", "Malformed Payload")
}

func EmptyRequestBody() error {
	return newError(http.StatusBadRequest, "empty_request_body", "Request body can't be empty.")
}

// Code returns the error code of err if it is (or wraps) an *Error, and an
// empty string otherwise.
func Code(err error) string {
	var e *Error
	if asError(err, &e) {
		return e.Code
	}
	return ""
}
