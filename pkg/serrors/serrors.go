package serrors

import "fmt"

// Base is an error with a stable machine-readable code. Services return Base
// errors for expected business-rule failures; controllers map codes to HTTP
// statuses. Infrastructure failures are wrapped with go-faster/errors instead.
type Base struct {
	Code    string
	Message string
	Details string
}

func (e *Base) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code, message, details string) *Base {
	return &Base{Code: code, Message: message, Details: details}
}

// WithDetails returns a copy carrying request-specific details. The original
// sentinel stays comparable via errors.Is.
func (e *Base) WithDetails(details string) *Base {
	return &Base{Code: e.Code, Message: e.Message, Details: details}
}

func (e *Base) Is(target error) bool {
	other, ok := target.(*Base)
	if !ok {
		return false
	}
	return other.Code == e.Code
}

// ValidationErrors maps struct field names to human-readable messages.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(v))
}
