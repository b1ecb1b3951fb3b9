package models

import "time"

// UnknownDocumentTypeName is snapshotted when an archive references a missing type.
const UnknownDocumentTypeName = "Document"

// Archive is one archived document with its stored file.
type Archive struct {
	ID               string    `db:"id" json:"id"`
	Title            string    `db:"title" json:"title"`
	DocumentTypeID   string    `db:"document_type_id" json:"documentTypeId"`
	DocumentTypeName string    `db:"document_type_name" json:"documentTypeName"`
	FileName         string    `db:"file_name" json:"fileName"`
	ContentType      string    `db:"content_type" json:"contentType"`
	SizeBytes        int64     `db:"size_bytes" json:"sizeBytes"`
	StorageLocator   string    `db:"storage_locator" json:"-"`
	UploadedBy       string    `db:"uploaded_by" json:"uploadedBy"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
	FileURL          string    `db:"-" json:"fileUrl"`
}

// ArchiveFilter narrows listing queries. From is inclusive and To exclusive.
type ArchiveFilter struct {
	DocumentTypeID string
	From           *time.Time
	To             *time.Time
}
