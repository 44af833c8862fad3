package middlewares

import "errors"

var (
	ErrEmptyField         = errors.New("all fields must be filled")
	ErrInvalidEmail       = errors.New("email is invalid")
	ErrNameNotCapitalized = errors.New("name should start with a capital letter")
	ErrPhoneTooShort      = errors.New("phone number must be at least 10 digits")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)
