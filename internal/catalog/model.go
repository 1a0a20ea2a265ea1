package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// Booklet is one printable course booklet. Faculty and Year are free strings
// that normally name a taxonomy entry; nothing enforces it.
type Booklet struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Subject string `json:"subject"`
	Faculty string `json:"faculty"`
	Year    string `json:"year"`
	Pages   int    `json:"pages"`
}

// Settings is the whole persisted catalog document.
type Settings struct {
	Faculties []string  `json:"faculties"`
	Years     []string  `json:"years"`
	Booklets  []Booklet `json:"booklets"`
}

var (
	defaultFaculties = []string{"Engineering", "Science", "Arts", "Business"}
	defaultYears     = []string{"1st Year", "2nd Year", "3rd Year"}
)

// Defaults is the document served when nothing usable is stored.
func Defaults() Settings {
	return Settings{
		Faculties: slices.Clone(defaultFaculties),
		Years:     slices.Clone(defaultYears),
		Booklets:  []Booklet{},
	}
}

func (s Settings) clone() Settings {
	return Settings{
		Faculties: slices.Clone(s.Faculties),
		Years:     slices.Clone(s.Years),
		Booklets:  slices.Clone(s.Booklets),
	}
}

// Kind selects one of the two taxonomy lists.
type Kind string

const (
	Faculty Kind = "faculty"
	Year    Kind = "year"
)

// ParseKind accepts the singular and plural spellings used by the admin API.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "faculty", "faculties":
		return Faculty, nil
	case "year", "years":
		return Year, nil
	}
	return "", fmt.Errorf("unknown taxonomy kind %q", s)
}

func (s *Settings) taxonomy(kind Kind) *[]string {
	if kind == Year {
		return &s.Years
	}
	return &s.Faculties
}

// Entries returns the taxonomy list for kind.
func (s Settings) Entries(kind Kind) []string {
	return *s.taxonomy(kind)
}
