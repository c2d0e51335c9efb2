package validation

import (
	"strings"

	"github.com/vicu/vicu-api/internal/whatsapp"
)

// NormalizePhone validates and normalizes a phone number for messaging.
func NormalizePhone(raw, defaultCC string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", invalid("phone", "El número de teléfono es obligatorio")
	}
	phone, err := whatsapp.NormalizePhone(raw, defaultCC)
	if err != nil {
		return "", invalid("phone", "El número de teléfono no es válido")
	}
	return phone, nil
}

// ValidateContact accepts an email address or a phone number, as left on a
// landing page. It returns the normalized contact.
func ValidateContact(raw, defaultCC string) (string, error) {
	contact := strings.TrimSpace(raw)
	if contact == "" {
		return "", invalid("contact", "Deja tu correo o tu WhatsApp")
	}
	if strings.Contains(contact, "@") {
		if err := ValidateEmail(contact); err != nil {
			return "", invalid("contact", "El correo no es válido")
		}
		return strings.ToLower(contact), nil
	}
	phone, err := whatsapp.NormalizePhone(contact, defaultCC)
	if err != nil {
		return "", invalid("contact", "El número de teléfono no es válido")
	}
	return phone, nil
}
