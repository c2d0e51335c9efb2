package validation

import (
	"net/mail"
)

// ValidateEmail validates email format and length
// Uses Go's built-in net/mail parser which follows RFC 5322
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return invalid("email", "El correo es demasiado largo")
	}

	if email == "" {
		return invalid("email", "El correo es obligatorio")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email", "El correo no es válido")
	}

	return nil
}
