package auth

import (
	"alumni-net/errors"
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RegisterRequest struct {
	Name     string `validate:"required,max=120"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=12,max=72"`
	// Self sign-up is limited to students and alumni
	Role string `validate:"required,oneof=student alumni"`
}

// ValidateRegister checks field formats, then password complexity.
// Complexity failures wrap errors.ErrInvalidPassword, format failures wrap
// errors.ErrInvalidArgument.
func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err)
	}
	return checkPassword(req.Password)
}

// ValidateAdminRegister applies the same rules minus the role, admins being
// created by operators only.
func ValidateAdminRegister(req RegisterRequest) error {
	if err := validate.StructExcept(req, "Role"); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err)
	}
	return checkPassword(req.Password)
}

func checkPassword(password string) error {
	if !isPasswordComplex(password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

// ValidateStruct runs the tag rules of any request or role details struct.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err)
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
