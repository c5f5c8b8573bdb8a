// Package forms validates the catalog's submitted forms and builds their
// rendering state. A form with errors is re-rendered as-is; nothing is saved.
package forms

const (
	msgRequired    = "This field is required."
	msgInvalidDate = "Enter a valid date."
)

// Errors maps a field name to its messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) { e[field] = append(e[field], msg) }

func (e Errors) Any() bool { return len(e) > 0 }
