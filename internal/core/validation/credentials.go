// Package validation checks form input before any backend call is made.
//
// Rules run in a fixed order and the first failure wins:
//
//	missing fields → password rules → email format → age range
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
)

// emailShape is local-part@domain.tld with no whitespace and a single @.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	validate = newValidator()

	passwordRule = fmt.Sprintf("min=%d", domain.MinPasswordLength)
	ageRule      = fmt.Sprintf("gte=%d,lte=%d", domain.MinAge, domain.MaxAge)
)

type authForm struct {
	Email    string `json:"email"    validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

type registrationForm struct {
	Name            string `json:"name"             validate:"notblank"`
	Email           string `json:"email"            validate:"notblank"`
	Password        string `json:"password"         validate:"notblank"`
	ConfirmPassword string `json:"confirm_password" validate:"notblank"`
	Age             string `json:"age"              validate:"notblank"`
	Specialty       string `json:"specialty"        validate:"notblank"`
}

type profileForm struct {
	Name      string `json:"name"      validate:"notblank"`
	Email     string `json:"email"     validate:"notblank"`
	Age       string `json:"age"       validate:"notblank"`
	Specialty string `json:"specialty" validate:"notblank"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("validation: register notblank: %v", err))
	}
	if err := v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("validation: register emailshape: %v", err))
	}
	// Report fields by their json names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateAuthForm checks the sign-in form.
func ValidateAuthForm(email, password string) error {
	return missingField(authForm{Email: email, Password: password})
}

// ValidateRegistration checks the registration form and returns the parsed age.
func ValidateRegistration(in ports.RegistrationInput) (int, error) {
	err := missingField(registrationForm{
		Name:            in.Name,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
		Age:             in.Age,
		Specialty:       in.Specialty,
	})
	if err != nil {
		return 0, err
	}
	if err := ValidateNewPassword(in.Password); err != nil {
		return 0, err
	}
	if validate.VarWithValue(in.ConfirmPassword, in.Password, "eqcsfield") != nil {
		return 0, &domain.ValidationError{Kind: domain.KindPasswordMismatch, Field: "confirm_password"}
	}
	if err := ValidateEmail(in.Email); err != nil {
		return 0, err
	}
	return ParseAge(in.Age)
}

// ValidateProfile checks the editable profile fields and returns the parsed age.
// Email shape is left to the identity service.
func ValidateProfile(name, email, age, specialty string) (int, error) {
	err := missingField(profileForm{Name: name, Email: email, Age: age, Specialty: specialty})
	if err != nil {
		return 0, err
	}
	return ParseAge(age)
}

// ValidateNewPassword enforces the minimum password length.
func ValidateNewPassword(password string) error {
	if validate.Var(password, passwordRule) != nil {
		return &domain.ValidationError{Kind: domain.KindPasswordTooShort, Field: "password"}
	}
	return nil
}

// ValidateEmail checks the local-part@domain.tld shape.
func ValidateEmail(email string) error {
	if validate.Var(email, "emailshape") != nil {
		return &domain.ValidationError{Kind: domain.KindInvalidEmail, Field: "email"}
	}
	return nil
}

// ParseAge parses a decimal age and checks it against [MinAge, MaxAge].
func ParseAge(raw string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || validate.Var(age, ageRule) != nil {
		return 0, &domain.ValidationError{Kind: domain.KindInvalidAge, Field: "age"}
	}
	return age, nil
}

// missingField reports the first blank field in declaration order.
func missingField(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return &domain.ValidationError{Kind: domain.KindMissingField, Field: ve[0].Field()}
	}
	return fmt.Errorf("validation: %w", err)
}
