package auth

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-yoga-server/internal/errors"
)

var validate = validator.New()

// LoginRequest is the body of a login call.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of a signup call.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,max=50,email"`
	FirstName string `json:"firstName" validate:"required,min=3,max=20"`
	LastName  string `json:"lastName" validate:"required,min=3,max=20"`
	Password  string `json:"password" validate:"required,min=6,max=40"`
}

func ValidateLogin(req LoginRequest) error {
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		return errors.Wrapf(errors.ErrBadInputFormat, "email and password are required")
	}
	return validateStruct(req)
}

func ValidateRegister(req RegisterRequest) error {
	return validateStruct(req)
}

// validateStruct runs the struct tags and folds field errors into one ErrBadInputFormat.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrapf(errors.ErrBadInputFormat, "%v", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.Wrapf(errors.ErrBadInputFormat, "%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	}
	return fe.Field() + " is invalid"
}
