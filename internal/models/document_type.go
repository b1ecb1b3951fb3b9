package models

import "time"

// DocumentType is a named archive category.
type DocumentType struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// DefaultDocumentTypeNames seed an empty registry.
var DefaultDocumentTypeNames = []string{
	"Surat Keputusan",
	"Surat Keterangan",
	"Surat Masuk",
	"Surat Keluar",
	"Peraturan Desa",
}
