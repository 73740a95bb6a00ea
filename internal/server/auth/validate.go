package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Password policy is a fixed external contract: 8–72 characters with at least
// one lowercase letter, one uppercase letter, one digit, and one symbol.
const (
	PasswordMinLen = 8
	PasswordMaxLen = 72
	NameMaxLen     = 50
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SignUpInput is the raw sign-up form payload.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// SignInInput is the raw sign-in form payload.
type SignInInput struct {
	Email    string
	Password string
}

// NormalizeEmail trims surrounding whitespace and lowercases, so the same
// address always maps to the same stored key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateSignUp checks the sign-up form and returns a normalized copy
// (trimmed name, lowercased email; the password is never trimmed). ok is
// false when any constraint fails.
func ValidateSignUp(in SignUpInput) (SignUpInput, bool) {
	out := SignUpInput{
		Name:     strings.TrimSpace(in.Name),
		Email:    NormalizeEmail(in.Email),
		Password: in.Password,
	}

	if out.Name == "" || utf8.RuneCountInString(out.Name) > NameMaxLen {
		return out, false
	}
	if !emailRe.MatchString(out.Email) {
		return out, false
	}
	if !validPassword(out.Password) {
		return out, false
	}
	return out, true
}

// ValidateSignIn checks the sign-in form: a syntactically valid email and a
// non-empty password. The full password policy is not re-applied here; the
// stored hash decides.
func ValidateSignIn(in SignInInput) (SignInInput, bool) {
	out := SignInInput{
		Email:    NormalizeEmail(in.Email),
		Password: in.Password,
	}
	if !emailRe.MatchString(out.Email) || out.Password == "" {
		return out, false
	}
	return out, true
}

func validPassword(password string) bool {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLen || n > PasswordMaxLen {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			// anything outside ASCII alphanumerics counts as a symbol
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}
