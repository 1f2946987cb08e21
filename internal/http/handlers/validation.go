package handlers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const passwordSpecials = "@$!%*?&"

var (
	mobilePattern = regexp.MustCompile(`^[0-9]{10,15}$`)
	registerOnce  sync.Once
	registerErr   error
)

// RegisterValidators installs the strongpassword and mobile tags on gin's validator.
// Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not validator/v10")
			return
		}
		if err := v.RegisterValidation("strongpassword", strongPassword); err != nil {
			registerErr = err
			return
		}
		registerErr = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
			return mobilePattern.MatchString(fl.Field().String())
		})
	})
	return registerErr
}

// strongPassword requires 8+ characters drawn from letters, digits and @$!%*?&,
// with at least one lower, one upper, one digit and one special.
func strongPassword(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

// IsStrongPassword reports whether pw satisfies the password policy
func IsStrongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range pw {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

// validationMessage turns the first binding failure into a client message
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please provide a valid email address"
	case "mobile":
		return "Please provide a valid mobile number"
	case "strongpassword":
		if len(fmt.Sprint(fe.Value())) < 8 {
			return "Password must be at least 8 characters"
		}
		return "Password does not meet requirements"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s digits", field, fe.Param())
	case "number":
		return field + " must contain only numbers"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return field + " is invalid"
}
