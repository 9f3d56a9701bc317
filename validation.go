package cookieauth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError names one failing field and the rule it broke.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError lists every failing field of a request.
type ValidationError struct {
	Fields []FieldError
}

// Error lists the failing fields.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+":"+f.Rule)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ValidateLogin checks the email format and that the password is non-empty.
func ValidateLogin(req LoginRequest) error {
	return validateStruct(req)
}

// ValidateRegister checks the login rules plus password == confirmPassword.
func ValidateRegister(req RegisterRequest) error {
	return validateStruct(req)
}

// ValidateProfileUpdate checks field formats and that at least one field is set.
func ValidateProfileUpdate(upd ProfileUpdate) error {
	if upd.Email == nil && upd.Firstname == nil {
		return &ValidationError{Fields: []FieldError{{Field: "profile", Rule: "required"}}}
	}
	return validateStruct(upd)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: jsonFieldName(fe.Field()), Rule: fe.Tag()})
	}
	return out
}

func jsonFieldName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
