package repository

import "errors"

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrEmailTaken      = errors.New("email already exists")
	ErrCoinNotFound    = errors.New("coin not found")
	ErrDuplicateTriple = errors.New("bit combination already minted")
	ErrAlreadyOwner    = errors.New("buyer already owns the coin")
)
