package shared

import (
	"errors"
	"net/http"
)

// AppError carries an HTTP status alongside the wrapped cause so handlers can
// map service failures onto response codes without inspecting error strings.
type AppError struct {
	StatusCode int         `json:"code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Err        error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewBadRequestError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message, Err: err}
}

func NewUnauthorizedError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusUnauthorized, Message: message, Err: err}
}

func NewNotFoundError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: message, Err: err}
}

func NewConflictError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Message: message, Err: err}
}

func NewInternalError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Message: message, Err: err}
}

// GetAppError unwraps err to the first AppError in its chain.
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
