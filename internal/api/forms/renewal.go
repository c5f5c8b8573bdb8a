package forms

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/5w1tchy/locallibrary/internal/validate"
)

type RenewalForm struct {
	RenewalDate string `json:"renewal_date"`
	HelpText    string `json:"help_text"`
	Errors      Errors `json:"errors,omitempty"`
}

func renewalHelp(maxAhead time.Duration) string {
	return fmt.Sprintf("Enter a date between now and %d weeks (default 3).", weeks(maxAhead))
}

func weeks(d time.Duration) int { return int(d / (7 * 24 * time.Hour)) }

// InitialRenewal is the unsubmitted form, proposing today + ahead.
func InitialRenewal(now time.Time, ahead, maxAhead time.Duration) RenewalForm {
	return RenewalForm{
		RenewalDate: validate.Day(now).Add(ahead).Format(time.DateOnly),
		HelpText:    renewalHelp(maxAhead),
	}
}

// ParseRenewal checks renewal_date: a YYYY-MM-DD date from today up to maxAhead.
// ok is false when the form has errors.
func ParseRenewal(values url.Values, now time.Time, maxAhead time.Duration) (time.Time, RenewalForm, bool) {
	raw := strings.TrimSpace(values.Get("renewal_date"))
	f := RenewalForm{RenewalDate: raw, HelpText: renewalHelp(maxAhead), Errors: Errors{}}

	if raw == "" {
		f.Errors.Add("renewal_date", msgRequired)
		return time.Time{}, f, false
	}
	d, err := validate.OptionalDate(raw)
	if err != nil {
		f.Errors.Add("renewal_date", msgInvalidDate)
		return time.Time{}, f, false
	}

	today := validate.Day(now)
	switch {
	case d.Before(today):
		f.Errors.Add("renewal_date", "Invalid date - renewal in past")
	case d.After(today.Add(maxAhead)):
		f.Errors.Add("renewal_date", fmt.Sprintf("Invalid date - renewal more than %d weeks ahead", weeks(maxAhead)))
	}
	if f.Errors.Any() {
		return time.Time{}, f, false
	}
	f.Errors = nil
	return *d, f, true
}
