package models

// Language is immutable reference data describing a taught language.
type Language struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
