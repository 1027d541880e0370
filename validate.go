package authcore

import (
	"regexp"
	"strings"
	"unicode"
)

var emailShape = regexp.MustCompile(`^[A-Za-z0-9!#$%&'*+/=?^_` + "`" + `{|}~.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// validateEmail enforces a local@domain.tld shape. Dots may separate atoms
// but never lead, trail, or double up on either side of the @.
func validateEmail(email string) error {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return &ValidationError{Reason: "Invalid email address"}
	}
	local, domain := email[:at], email[at+1:]

	if !emailShape.MatchString(email) ||
		strings.Contains(email, "..") ||
		strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") ||
		strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return &ValidationError{Reason: "Invalid email address"}
	}

	return nil
}

const passwordMinLength = 8

// validatePassword applies the strength policy shared by registration and
// password reset. The returned message enumerates every unmet rule, not just
// the first, so a caller can fix the password in one round trip.
func validatePassword(pw string) error {
	var hasLower, hasUpper, hasDigit, hasPunct bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasPunct = true
		}
	}

	var missing []string
	if len(pw) < passwordMinLength {
		missing = append(missing, "be at least 8 characters")
	}
	if !hasLower {
		missing = append(missing, "contain a lowercase letter")
	}
	if !hasUpper {
		missing = append(missing, "contain an uppercase letter")
	}
	if !hasDigit {
		missing = append(missing, "contain a digit")
	}
	if !hasPunct {
		missing = append(missing, "contain a special character")
	}

	if len(missing) > 0 {
		return &ValidationError{Reason: "Password must " + strings.Join(missing, ", ")}
	}

	return nil
}
