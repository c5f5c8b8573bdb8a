package models

import "time"

type LoanStatus string

const (
	StatusMaintenance LoanStatus = "m"
	StatusOnLoan      LoanStatus = "o"
	StatusAvailable   LoanStatus = "a"
	StatusReserved    LoanStatus = "r"
)

func (s LoanStatus) Label() string {
	switch s {
	case StatusMaintenance:
		return "Maintenance"
	case StatusOnLoan:
		return "On loan"
	case StatusAvailable:
		return "Available"
	case StatusReserved:
		return "Reserved"
	}
	return "Unknown"
}

// BookInstance is a physical copy of a book that can be borrowed.
type BookInstance struct {
	ID         string     `json:"id" db:"id"`
	BookID     string     `json:"book_id" db:"book_id"`
	BookTitle  string     `json:"book_title" db:"book_title"`
	Imprint    string     `json:"imprint" db:"imprint"`
	DueBack    *time.Time `json:"due_back" db:"due_back"`
	Status     LoanStatus `json:"status" db:"status"`
	BorrowerID *string    `json:"borrower_id,omitempty" db:"borrower_id"`
}

// IsOverdue reports whether the copy is due before the day of now.
func (bi BookInstance) IsOverdue(now time.Time) bool {
	if bi.DueBack == nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, bi.DueBack.Location())
	return bi.DueBack.Before(today)
}
