package models

type Book struct {
	ID         string  `json:"id" db:"id"`
	Title      string  `json:"title" db:"title"`
	Summary    string  `json:"summary" db:"summary"`
	ISBN       string  `json:"isbn" db:"isbn"`
	AuthorID   *string `json:"author_id" db:"author_id"`
	AuthorName string  `json:"author" db:"author_name"`
	CoverKey   *string `json:"-" db:"cover_key"`
}

func (b Book) URL() string { return "/book/" + b.ID }

// BookDetail is a book with its genres and copies.
type BookDetail struct {
	Book
	URL       string         `json:"url"`
	Genres    []Genre        `json:"genres"`
	Instances []BookInstance `json:"instances"`
}

type Genre struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Counts are the catalog totals shown on the home page.
type Counts struct {
	Books              int `json:"num_books"`
	Instances          int `json:"num_instances"`
	InstancesAvailable int `json:"num_instances_available"`
	Authors            int `json:"num_authors"`
}
