package util

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLabelLength caps faculty and year names.
const MaxLabelLength = 64

// ValidateLabel checks a taxonomy label: at most MaxLabelLength runes and no
// control characters. Empty labels pass; the catalog ignores them.
func ValidateLabel(label string) error {
	label = strings.TrimSpace(label)
	if n := utf8.RuneCountInString(label); n > MaxLabelLength {
		return fmt.Errorf("label too long, max %d characters, got %d", MaxLabelLength, n)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return fmt.Errorf("label contains control character %U", r)
		}
	}
	return nil
}

// ValidateBookletID checks an id taken from a URL path.
func ValidateBookletID(id string) error {
	if id == "" {
		return fmt.Errorf("id is empty")
	}
	if len(id) > 64 {
		return fmt.Errorf("id too long")
	}
	for _, r := range id {
		if !(r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return fmt.Errorf("id contains invalid character %q", r)
		}
	}
	return nil
}
