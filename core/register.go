package core

import (
	"context"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
)

// Password length bounds, inclusive.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 15
)

const (
	msgPasswordLength = "Password has to be between 6 and 15 characters"
	msgInvalidEmail   = "Please provide a valid email"
	msgEmailExists    = "Email already exists."
	msgUsernameExists = "Username already exists."

	fieldEmail    = "email"
	fieldUsername = "username"
	fieldPassword = "password"
)

// registrationRule checks one aspect of a submission. It returns a field error
// when the rule fails and an error only when the check itself could not run.
type registrationRule func(ctx context.Context, in RegisterInput) (*FieldError, error)

// RegistrationValidator runs every registration rule and collects all failures.
type RegistrationValidator struct {
	users    UserRepository
	validate *validator.Validate
}

func NewRegistrationValidator(users UserRepository) *RegistrationValidator {
	return &RegistrationValidator{users: users, validate: validator.New()}
}

// Validate returns a *ValidationError listing every failed rule, a wrapped
// store error, or nil when the submission may proceed.
func (v *RegistrationValidator) Validate(ctx context.Context, in RegisterInput) error {
	rules := []registrationRule{
		checkPasswordLength,
		v.checkEmailFormat,
		v.checkEmailAvailable,
		v.checkUsernameAvailable,
	}

	var failed []FieldError
	for _, rule := range rules {
		fe, err := rule(ctx, in)
		if err != nil {
			return err
		}
		if fe != nil {
			failed = append(failed, *fe)
		}
	}
	if len(failed) > 0 {
		return &ValidationError{Errors: failed}
	}
	return nil
}

func checkPasswordLength(_ context.Context, in RegisterInput) (*FieldError, error) {
	n := utf8.RuneCountInString(in.Password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return &FieldError{Field: fieldPassword, Message: msgPasswordLength}, nil
	}
	return nil, nil
}

func (v *RegistrationValidator) checkEmailFormat(_ context.Context, in RegisterInput) (*FieldError, error) {
	if err := v.validate.Var(in.Email, "required,email"); err != nil {
		return &FieldError{Field: fieldEmail, Message: msgInvalidEmail}, nil
	}
	return nil, nil
}

func (v *RegistrationValidator) checkEmailAvailable(ctx context.Context, in RegisterInput) (*FieldError, error) {
	taken, err := v.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, oops.Code("REGISTER_CHECK_FAILED").With("rule", "email available").Wrap(err)
	}
	if taken {
		return &FieldError{Field: fieldEmail, Message: msgEmailExists}, nil
	}
	return nil, nil
}

func (v *RegistrationValidator) checkUsernameAvailable(ctx context.Context, in RegisterInput) (*FieldError, error) {
	taken, err := v.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, oops.Code("REGISTER_CHECK_FAILED").With("rule", "username available").Wrap(err)
	}
	if taken {
		return &FieldError{Field: fieldUsername, Message: msgUsernameExists}, nil
	}
	return nil, nil
}
