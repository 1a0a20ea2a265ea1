package catalog

import (
	"strconv"
	"strings"
)

// BookletForm is the admin form as submitted: every field is text.
// ID is empty when creating.
type BookletForm struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Subject string `json:"subject"`
	Faculty string `json:"faculty"`
	Year    string `json:"year"`
	Pages   string `json:"pages"`
}

// ValidationError lists the form fields that were missing or malformed.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid booklet: " + strings.Join(e.Fields, ", ")
}

// Validate checks that all five fields are present and that pages is a
// positive integer, returning the parsed page count.
func (f BookletForm) Validate() (int, error) {
	var bad []string
	for _, field := range []struct {
		name, value string
	}{
		{"title", f.Title},
		{"subject", f.Subject},
		{"faculty", f.Faculty},
		{"year", f.Year},
	} {
		if field.value == "" {
			bad = append(bad, field.name)
		}
	}

	pages, err := strconv.Atoi(strings.TrimSpace(f.Pages))
	if err != nil || pages < 1 {
		bad = append(bad, "pages")
	}

	if len(bad) > 0 {
		return 0, &ValidationError{Fields: bad}
	}
	return pages, nil
}
