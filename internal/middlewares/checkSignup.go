package middlewares

import (
	"fmt"
	"strings"
	"unicode"
)

func CheckSignup(name, email, password, phone string) error {
	if name == "" || email == "" || password == "" || phone == "" {
		return ErrEmptyField
	}

	first := []rune(name)[0]
	if !unicode.IsUpper(first) {
		return ErrNameNotCapitalized
	}

	if !CorrectEmailChecker(email) {
		return ErrInvalidEmail
	}

	if len(phone) < 10 {
		return fmt.Errorf("%w: got %d", ErrPhoneTooShort, len(phone))
	}

	if len(password) < 8 {
		return fmt.Errorf("%w: minimum 8 characters required", ErrPasswordTooShort)
	}

	return nil
}

func CorrectEmailChecker(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}
