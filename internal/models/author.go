package models

import (
	"fmt"
	"time"
)

type Author struct {
	ID          string     `json:"id" db:"id"`
	FirstName   string     `json:"first_name" db:"first_name"`
	LastName    string     `json:"last_name" db:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth" db:"date_of_birth"`
	DateOfDeath *time.Time `json:"date_of_death" db:"date_of_death"`
}

// Name renders "Last, First".
func (a Author) Name() string { return a.LastName + ", " + a.FirstName }

func (a Author) URL() string { return "/author/" + a.ID }

// AuthorInput carries validated author fields for create and update.
type AuthorInput struct {
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	DateOfDeath *time.Time
}

// DeletePolicy decides what happens to an author's books when the author is deleted.
type DeletePolicy string

const (
	DeleteProtect DeletePolicy = "protect"  // refuse while books reference the author
	DeleteCascade DeletePolicy = "cascade"  // delete the books and their copies too
	DeleteSetNull DeletePolicy = "set_null" // keep the books, clear their author
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(s); p {
	case DeleteProtect, DeleteCascade, DeleteSetNull:
		return p, nil
	}
	return "", fmt.Errorf("unknown delete policy %q", s)
}
