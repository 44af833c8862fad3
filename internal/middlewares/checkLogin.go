package middlewares

func CheckLogin(email, password string) error {
	if email == "" || password == "" {
		return ErrEmptyField
	}

	if !CorrectEmailChecker(email) {
		return ErrInvalidEmail
	}

	return nil
}
