package serrors

import "fmt"

// BaseError is a coded error suitable for API envelopes. Code is a stable
// machine-readable identifier; LocaleKey is optional and consumed by
// localization-aware frontends.
type BaseError struct {
	Code         string
	Message      string
	LocaleKey    string
	TemplateData map[string]string
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	return e.Message
}

func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	return &BaseError{
		Code:         e.Code,
		Message:      e.Message,
		LocaleKey:    e.LocaleKey,
		TemplateData: data,
	}
}

// NewFieldRequiredError standardizes missing-field validation errors.
func NewFieldRequiredError(field, localeKey string) *BaseError {
	return &BaseError{
		Code:      "FIELD_REQUIRED",
		Message:   fmt.Sprintf("%s is required", field),
		LocaleKey: localeKey,
		TemplateData: map[string]string{
			"field": field,
		},
	}
}
