package whatsapp

import (
	"errors"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// callingCodes are the country prefixes recognized as already present.
// Three-digit codes come first so 591 is not read as 59 + local digits.
var callingCodes = []string{
	"591", "593", "595", "598", "502", "503", "504", "505", "506", "507",
	"34", "51", "52", "54", "55", "56", "57", "58",
	"1",
}

const (
	minLocalDigits = 8
	// A number shorter than this cannot carry a country code plus a local part.
	minInternationalDigits = 11
)

// NormalizePhone returns raw in "+<digits>" form. Numbers that already start
// with a known calling code are kept; anything else is treated as local, has
// its leading zeros stripped and gets defaultCC prepended.
func NormalizePhone(raw, defaultCC string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	international := strings.HasPrefix(strings.TrimSpace(raw), "+")
	if strings.HasPrefix(digits, "00") {
		digits = digits[2:]
		international = true
	}

	if international || len(digits) >= minInternationalDigits {
		for _, cc := range callingCodes {
			if strings.HasPrefix(digits, cc) && len(digits)-len(cc) >= minLocalDigits {
				return "+" + digits, nil
			}
		}
	}

	local := strings.TrimLeft(digits, "0")
	if len(local) < minLocalDigits {
		return "", ErrInvalidPhone
	}
	cc := strings.TrimLeft(strings.TrimSpace(defaultCC), "+")
	if cc == "" {
		cc = "52"
	}
	return "+" + cc + local, nil
}
