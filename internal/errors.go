package internal

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypePrecondition ErrorType = "PRECONDITION_FAILED"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

// StatusMessages are the fixed wire messages, one per status code. The error
// body shape is always {"code": <status>, "message": <message>}.
var StatusMessages = map[int]string{
	http.StatusBadRequest:          "BAD REQUEST: name or e-mail already exists, or role does not exist",
	http.StatusUnauthorized:        "UNAUTHORIZED: invalid Authorization header",
	http.StatusForbidden:           "FORBIDDEN You don't have permission to access",
	http.StatusNotFound:            "NOT FOUND: Resource not found",
	http.StatusMethodNotAllowed:    "METHOD NOT ALLOWED",
	http.StatusNotAcceptable:       "NOT ACCEPTABLE: Requested resource not found",
	http.StatusConflict:            "CONFLICT: Role out of range",
	http.StatusPreconditionFailed:  "PRECONDITION FAILED: one or more conditions given evaluated to false",
	http.StatusUnprocessableEntity: "UNPROCESSABLE ENTITY: name, e-mail or password is left out",
	http.StatusNotImplemented:      "METHOD NOT IMPLEMENTED",
	http.StatusInternalServerError: "INTERNAL SERVER ERROR",
}

// StatusMessage returns the fixed message for a status code.
func StatusMessage(status int) string {
	if msg, ok := StatusMessages[status]; ok {
		return msg
	}
	return http.StatusText(status)
}

type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func newStatusError(t ErrorType, status int) *AppError {
	return &AppError{
		Type:       t,
		Message:    StatusMessage(status),
		StatusCode: status,
	}
}

// NewBadRequestError covers uniqueness violations and invalid role values.
func NewBadRequestError() *AppError {
	return newStatusError(ErrorTypeValidation, http.StatusBadRequest)
}

func NewUnauthorizedError() *AppError {
	return newStatusError(ErrorTypeUnauthorized, http.StatusUnauthorized)
}

func NewForbiddenError() *AppError {
	return newStatusError(ErrorTypeForbidden, http.StatusForbidden)
}

func NewNotFoundError() *AppError {
	return newStatusError(ErrorTypeNotFound, http.StatusNotFound)
}

// NewNotAcceptableError signals a missing relationship counterpart,
// distinguished from a missing owner (404).
func NewNotAcceptableError() *AppError {
	return newStatusError(ErrorTypeNotFound, http.StatusNotAcceptable)
}

func NewConflictError() *AppError {
	return newStatusError(ErrorTypeConflict, http.StatusConflict)
}

func NewPreconditionFailedError() *AppError {
	return newStatusError(ErrorTypePrecondition, http.StatusPreconditionFailed)
}

func NewUnprocessableEntityError() *AppError {
	return newStatusError(ErrorTypeValidation, http.StatusUnprocessableEntity)
}

func NewInternalError(cause error) *AppError {
	return newStatusError(ErrorTypeInternal, http.StatusInternalServerError).WithCause(cause)
}
