package apperrors

const (
	MsgMissing = "missed value"
	MsgInvalid = "invalid value"
)

// Fields collects per-field validation problems before any store call is made.
type Fields map[string]string

func (f Fields) Missing(field string) {
	f[field] = MsgMissing
}

func (f Fields) Invalid(field, message string) {
	if message == "" {
		message = MsgInvalid
	}
	f[field] = message
}

// Err returns nil when nothing was recorded.
func (f Fields) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &Error{
		Code:    CodeValidation,
		Message: "Complete los campos obligatorios",
		Fields:  f,
	}
}

// Validation builds a validation error with a single message and no field map.
func Validation(message string) *Error {
	return New(CodeValidation, message)
}
