package validation

import (
	"strings"
	"time"
	"unicode/utf8"
)

// ValidateName validates profile name. Empty is allowed.
func ValidateName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) > 100 {
		return invalid("name", "El nombre es demasiado largo (máximo 100 caracteres)")
	}
	return nil
}

// ValidateTimezone accepts IANA zone names such as "America/Bogota".
func ValidateTimezone(tz string) error {
	if tz == "" {
		return nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return invalid("timezone", "Zona horaria no válida")
	}
	return nil
}
