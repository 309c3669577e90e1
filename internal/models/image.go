package models

// ImageRef records where an uploaded product image was stored.
type ImageRef struct {
	ID        int64  `db:"id" json:"id"`
	ProductID int64  `db:"product_id" json:"product_id"`
	ImagePath string `db:"image_path" json:"image_path"`
}
