package forms

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/5w1tchy/locallibrary/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now      = time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)
	maxAhead = 4 * 7 * 24 * time.Hour
)

func TestInitialRenewal(t *testing.T) {
	f := InitialRenewal(now, 3*7*24*time.Hour, maxAhead)
	assert.Equal(t, "2024-03-31", f.RenewalDate)
	assert.Empty(t, f.Errors)
}

func TestParseRenewal(t *testing.T) {
	cases := []struct {
		in      string
		ok      bool
		message string
	}{
		{"2024-03-10", true, ""},
		{"2024-04-07", true, ""},
		{"2024-03-09", false, "Invalid date - renewal in past"},
		{"2024-04-08", false, "Invalid date - renewal more than 4 weeks ahead"},
		{"10/03/2024", false, "Enter a valid date."},
		{"", false, "This field is required."},
	}
	for _, tc := range cases {
		d, f, ok := ParseRenewal(url.Values{"renewal_date": {tc.in}}, now, maxAhead)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.in, d.Format(time.DateOnly))
			assert.Nil(t, f.Errors)
			continue
		}
		assert.Equal(t, []string{tc.message}, f.Errors["renewal_date"], tc.in)
		assert.Equal(t, tc.in, f.RenewalDate, "submitted value is echoed back")
	}
}

func TestParseAuthor_PlaceholderDeath(t *testing.T) {
	placeholder := time.Date(2023, 11, 11, 0, 0, 0, 0, time.UTC)
	in, f, ok := ParseAuthor(url.Values{
		"first_name": {" Ursula "}, "last_name": {"Le Guin"}, "date_of_birth": {"1929-10-21"},
	}, &placeholder)

	require.True(t, ok, f.Errors)
	assert.Equal(t, "Ursula", in.FirstName)
	require.NotNil(t, in.DateOfDeath)
	assert.Equal(t, placeholder, *in.DateOfDeath)
	assert.Equal(t, "2023-11-11", f.DateOfDeath)
}

func TestParseAuthor_NoPlaceholderOnUpdate(t *testing.T) {
	in, _, ok := ParseAuthor(url.Values{"first_name": {"Ann"}, "last_name": {"Leckie"}}, nil)
	require.True(t, ok)
	assert.Nil(t, in.DateOfDeath)
	assert.Nil(t, in.DateOfBirth)
}

func TestParseAuthor_Errors(t *testing.T) {
	_, f, ok := ParseAuthor(url.Values{
		"first_name":    {"   "},
		"last_name":     {strings.Repeat("x", 101)},
		"date_of_birth": {"2000-01-01"},
		"date_of_death": {"1999-12-31"},
	}, nil)

	require.False(t, ok)
	assert.Equal(t, []string{"This field is required."}, f.Errors["first_name"])
	assert.Len(t, f.Errors["last_name"], 1)
	assert.Len(t, f.Errors["date_of_death"], 1)

	_, f, ok = ParseAuthor(url.Values{"first_name": {"A"}, "last_name": {"B"}, "date_of_birth": {"yesterday"}}, nil)
	require.False(t, ok)
	assert.Equal(t, []string{"Enter a valid date."}, f.Errors["date_of_birth"])
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Zo\u00e9", NormalizeName("Zoe\u0301"))
	assert.Equal(t, "Ann", NormalizeName("An\x00n\n"))

	// 100 decomposed characters still fit after composition.
	long := strings.Repeat("e\u0301", 100)
	_, _, ok := ParseAuthor(url.Values{"first_name": {long}, "last_name": {"X"}}, nil)
	assert.True(t, ok)
}

func TestInitialAuthor(t *testing.T) {
	placeholder := time.Date(2023, 11, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2023-11-11", InitialAuthor(nil, &placeholder).DateOfDeath)

	born := time.Date(1920, 1, 2, 0, 0, 0, 0, time.UTC)
	f := InitialAuthor(&models.Author{FirstName: "Isaac", LastName: "Asimov", DateOfBirth: &born}, &placeholder)
	assert.Equal(t, "1920-01-02", f.DateOfBirth)
	assert.Empty(t, f.DateOfDeath)
}
