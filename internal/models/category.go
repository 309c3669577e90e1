package models

// Category is an independent catalog grouping. Products reference categories
// by id without a storage-level constraint.
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CategoryRequest is the body accepted when creating or replacing a category.
type CategoryRequest struct {
	Name string `json:"name"`
}
