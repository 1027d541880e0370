package authcore

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEmailAcceptsStandardShapes(t *testing.T) {
	for _, email := range []string{
		"a@x.com",
		"first.last@example.co.uk",
		"user+tag@mail.example.org",
	} {
		if err := validateEmail(email); err != nil {
			t.Errorf("validateEmail(%q) = %v, want nil", email, err)
		}
	}
}

func TestValidateEmailRejectsMalformed(t *testing.T) {
	for _, email := range []string{
		"",
		"plain",
		"@x.com",
		"a@",
		"a@x",
		"a@x.c0m!",
		".leading@x.com",
		"trailing.@x.com",
		"double..dot@x.com",
		"a@.x.com",
		"a@x.com.",
		"a@x..com",
	} {
		err := validateEmail(email)
		if err == nil {
			t.Errorf("validateEmail(%q) = nil, want error", email)
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("validateEmail(%q) = %T, want *ValidationError", email, err)
		}
	}
}

func TestValidatePasswordEnumeratesEveryMissingClass(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{"all missing", "", []string{
			"be at least 8 characters",
			"contain a lowercase letter",
			"contain an uppercase letter",
			"contain a digit",
			"contain a special character",
		}},
		{"no upper no digit", "abcdefg!", []string{
			"contain an uppercase letter",
			"contain a digit",
		}},
		{"short only", "Ab1!xyz", []string{"be at least 8 characters"}},
		{"no special", "Abc12345", []string{"contain a special character"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePassword(tt.password)
			if err == nil {
				t.Fatalf("validatePassword(%q) = nil, want error", tt.password)
			}
			for _, want := range tt.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q missing rule %q", err.Error(), want)
				}
			}
		})
	}
}

func TestValidatePasswordAcceptsStrong(t *testing.T) {
	for _, pw := range []string{"Abc12345!", "p@ssW0rd!", "Xy9?abcd"} {
		if err := validatePassword(pw); err != nil {
			t.Errorf("validatePassword(%q) = %v, want nil", pw, err)
		}
	}
}
