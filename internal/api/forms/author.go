package forms

import (
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/5w1tchy/locallibrary/internal/models"
	"github.com/5w1tchy/locallibrary/internal/validate"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxNameRunes = 100

type AuthorForm struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	DateOfDeath string `json:"date_of_death"`
	Errors      Errors `json:"errors,omitempty"`
}

// InitialAuthor fills the form from an existing author (update) or leaves it
// blank with the death placeholder (create, a == nil).
func InitialAuthor(a *models.Author, placeholder *time.Time) AuthorForm {
	if a == nil {
		return AuthorForm{DateOfDeath: formatDate(placeholder)}
	}
	return AuthorForm{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		DateOfBirth: formatDate(a.DateOfBirth),
		DateOfDeath: formatDate(a.DateOfDeath),
	}
}

// ParseAuthor validates a submitted author. An omitted date_of_death takes
// placeholder, which may be nil.
func ParseAuthor(values url.Values, placeholder *time.Time) (models.AuthorInput, AuthorForm, bool) {
	f := AuthorForm{
		FirstName:   NormalizeName(values.Get("first_name")),
		LastName:    NormalizeName(values.Get("last_name")),
		DateOfBirth: values.Get("date_of_birth"),
		DateOfDeath: values.Get("date_of_death"),
		Errors:      Errors{},
	}
	in := models.AuthorInput{}

	var err error
	if in.FirstName, err = validate.RequireBounded("first_name", f.FirstName, 1, maxNameRunes); err != nil {
		f.Errors.Add("first_name", nameError(f.FirstName))
	}
	if in.LastName, err = validate.RequireBounded("last_name", f.LastName, 1, maxNameRunes); err != nil {
		f.Errors.Add("last_name", nameError(f.LastName))
	}
	if in.DateOfBirth, err = validate.OptionalDate(f.DateOfBirth); err != nil {
		f.Errors.Add("date_of_birth", msgInvalidDate)
	}
	if in.DateOfDeath, err = validate.OptionalDate(f.DateOfDeath); err != nil {
		f.Errors.Add("date_of_death", msgInvalidDate)
	} else if in.DateOfDeath == nil && placeholder != nil {
		d := *placeholder
		in.DateOfDeath = &d
		f.DateOfDeath = formatDate(&d)
	}
	if in.DateOfBirth != nil && in.DateOfDeath != nil && in.DateOfDeath.Before(*in.DateOfBirth) {
		f.Errors.Add("date_of_death", "Date of death must not be before date of birth.")
	}

	if f.Errors.Any() {
		return models.AuthorInput{}, f, false
	}
	f.Errors = nil
	return in, f, true
}

func nameError(s string) string {
	if s == "" {
		return msgRequired
	}
	return "Ensure this value has at most 100 characters."
}

// NormalizeName composes the name to NFC, drops control characters and trims
// it, so the 100-character limit counts what a reader sees.
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFC, runes.Remove(runes.In(unicode.Cc)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(out)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
