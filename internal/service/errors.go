package service

import (
	"errors"
	"fmt"

	"actionTracker/internal/client"

	"github.com/hay-kot/criterio"
)

const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeConfig         = "CONFIG_ERROR"
	CodeRemote         = "REMOTE_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeCreateInFlight = "CREATE_IN_FLIGHT"
)

// BusinessError несёт код и текст, пригодный для показа пользователю.
type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(id string) *BusinessError {
	return NewBusinessError(CodeNotFound, fmt.Sprintf("action item %s not found", id), ToDetail("id", id))
}

// NewValidationError takes the user-facing text from the first field error.
func NewValidationError(err error) *BusinessError {
	busErr := NewBusinessError(CodeValidation, err.Error())
	busErr.Err = err

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		busErr.Message = fieldErrs[0].Err.Error()
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field)
		}
		busErr.Details["fields"] = fields
	}
	return busErr
}

func NewConfigError(err error) *BusinessError {
	busErr := NewBusinessError(CodeConfig, err.Error())
	busErr.Err = err
	return busErr
}

// NewRemoteError prefers the server's own message over transport details.
func NewRemoteError(operation string, err error) *BusinessError {
	message := err.Error()
	details := []Detail{ToDetail("operation", operation)}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		message = apiErr.Message
		details = append(details, ToDetail("http_status", apiErr.StatusCode))
	}

	busErr := NewBusinessError(CodeRemote, message, details...)
	busErr.Err = err
	return busErr
}

var ErrCreateInFlight = NewBusinessError(CodeCreateInFlight, "create already in progress")

// HasCode reports whether err is a BusinessError with the given code.
func HasCode(err error, code string) bool {
	var busErr *BusinessError
	return errors.As(err, &busErr) && busErr.Code == code
}

// UserMessage is the text for a toast.
func UserMessage(err error) string {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
