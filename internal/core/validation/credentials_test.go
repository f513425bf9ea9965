package validation

import (
	"errors"
	"strconv"
	"testing"

	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
)

func validRegistration() ports.RegistrationInput {
	return ports.RegistrationInput{
		Name:            "Ana Torres",
		Email:           "ana@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Age:             "30",
		Specialty:       "Software Development",
	}
}

func TestValidateAuthForm(t *testing.T) {
	if err := ValidateAuthForm("ana@example.com", "secret1"); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}

	cases := []struct {
		name, email, password, field string
	}{
		{"empty email", "", "secret1", "email"},
		{"blank email", "   ", "secret1", "email"},
		{"empty password", "ana@example.com", "", "password"},
		{"both empty", "", "", "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAuthForm(tc.email, tc.password)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Kind != domain.KindMissingField || ve.Field != tc.field {
				t.Fatalf("expected missing %s, got %s/%s", tc.field, ve.Kind, ve.Field)
			}
		})
	}
}

func TestValidateRegistration_WellFormed(t *testing.T) {
	inputs := []ports.RegistrationInput{
		validRegistration(),
		{Name: "B", Email: "b@c.io", Password: "123456", ConfirmPassword: "123456", Age: "15", Specialty: "QA"},
		{Name: "C", Email: "x.y+z@sub.domain.org", Password: "longer password", ConfirmPassword: "longer password", Age: "100", Specialty: "Ops"},
		{Name: "D", Email: "d@e.f", Password: "ñandú!", ConfirmPassword: "ñandú!", Age: " 42 ", Specialty: "Data"},
	}
	for i, in := range inputs {
		age, err := ValidateRegistration(in)
		if err != nil {
			t.Fatalf("input %d: expected success, got %v", i, err)
		}
		if age < domain.MinAge || age > domain.MaxAge {
			t.Fatalf("input %d: unexpected age %d", i, age)
		}
	}
}

func TestValidateRegistration_Rules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ports.RegistrationInput)
		want   error
	}{
		{"missing name", func(in *ports.RegistrationInput) { in.Name = "" }, domain.ErrMissingField},
		{"missing specialty", func(in *ports.RegistrationInput) { in.Specialty = " " }, domain.ErrMissingField},
		{"short password", func(in *ports.RegistrationInput) { in.Password, in.ConfirmPassword = "12345", "12345" }, domain.ErrPasswordTooShort},
		{"mismatch", func(in *ports.RegistrationInput) { in.ConfirmPassword = "secret2" }, domain.ErrPasswordMismatch},
		{"no at", func(in *ports.RegistrationInput) { in.Email = "ana.example.com" }, domain.ErrInvalidEmail},
		{"no tld", func(in *ports.RegistrationInput) { in.Email = "ana@example" }, domain.ErrInvalidEmail},
		{"whitespace in email", func(in *ports.RegistrationInput) { in.Email = "ana torres@example.com" }, domain.ErrInvalidEmail},
		{"double at", func(in *ports.RegistrationInput) { in.Email = "ana@@example.com" }, domain.ErrInvalidEmail},
		{"age not a number", func(in *ports.RegistrationInput) { in.Age = "thirty" }, domain.ErrInvalidAge},
		{"age with suffix", func(in *ports.RegistrationInput) { in.Age = "30y" }, domain.ErrInvalidAge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegistration()
			tc.mutate(&in)
			if _, err := ValidateRegistration(in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateRegistration_OrderShortCircuits(t *testing.T) {
	// Every rule is broken; missing fields must win.
	in := ports.RegistrationInput{Name: "", Email: "bad", Password: "1", ConfirmPassword: "2", Age: "7", Specialty: "x"}
	if _, err := ValidateRegistration(in); !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("expected missing field first, got %v", err)
	}

	// Short and mismatched: the length rule is checked first.
	in = validRegistration()
	in.Password, in.ConfirmPassword = "123", "456"
	in.Email = "bad"
	if _, err := ValidateRegistration(in); !errors.Is(err, domain.ErrPasswordTooShort) {
		t.Fatalf("expected password too short, got %v", err)
	}

	// Mismatch beats email and age.
	in = validRegistration()
	in.ConfirmPassword = "different"
	in.Email = "bad"
	in.Age = "3"
	if _, err := ValidateRegistration(in); !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}

	// Email beats age.
	in = validRegistration()
	in.Email = "bad"
	in.Age = "3"
	if _, err := ValidateRegistration(in); !errors.Is(err, domain.ErrInvalidEmail) {
		t.Fatalf("expected invalid email, got %v", err)
	}
}

func TestParseAge_Boundaries(t *testing.T) {
	for _, age := range []int{-1, 0, 14, 101, 150} {
		if _, err := ParseAge(strconv.Itoa(age)); !errors.Is(err, domain.ErrInvalidAge) {
			t.Fatalf("age %d: expected ErrInvalidAge, got %v", age, err)
		}
	}
	for _, age := range []int{15, 16, 50, 99, 100} {
		got, err := ParseAge(strconv.Itoa(age))
		if err != nil {
			t.Fatalf("age %d: expected success, got %v", age, err)
		}
		if got != age {
			t.Fatalf("age %d: parsed %d", age, got)
		}
	}
}

func TestValidateProfile(t *testing.T) {
	age, err := ValidateProfile("Ana", "ana@example.com", "20", "QA")
	if err != nil || age != 20 {
		t.Fatalf("expected 20, nil; got %d, %v", age, err)
	}

	// Email shape is not checked here.
	if _, err := ValidateProfile("Ana", "not-an-email", "20", "QA"); err != nil {
		t.Fatalf("expected email shape to be ignored, got %v", err)
	}

	if _, err := ValidateProfile("Ana", "", "20", "QA"); !errors.Is(err, &domain.ValidationError{Kind: domain.KindMissingField, Field: "email"}) {
		t.Fatalf("expected missing email, got %v", err)
	}
	if _, err := ValidateProfile("Ana", "ana@example.com", "101", "QA"); !errors.Is(err, domain.ErrInvalidAge) {
		t.Fatalf("expected invalid age, got %v", err)
	}
}

func TestValidateNewPassword(t *testing.T) {
	if err := ValidateNewPassword("12345"); !errors.Is(err, domain.ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := ValidateNewPassword("123456"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}
