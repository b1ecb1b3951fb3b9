package dto

import "github.com/noah-isme/arsip-desa-api/internal/models"

// ArchiveJSONRequest is the JSON variant of archive create/update. FileData is
// base64, optionally with a data:<mime>;base64, prefix.
type ArchiveJSONRequest struct {
	Title          *string `json:"title"`
	DocumentTypeID *string `json:"documentTypeId"`
	FileName       string  `json:"fileName"`
	FileData       string  `json:"fileData"`
	ContentType    string  `json:"contentType"`
}

// ArchiveFields carries metadata for create and partial update.
type ArchiveFields struct {
	Title          *string
	DocumentTypeID *string
}

// PeriodQuery captures the raw month/year/typeId query parameters.
type PeriodQuery struct {
	Month  string `form:"month"`
	Year   string `form:"year"`
	TypeID string `form:"typeId"`
}

// ArchiveDownloadResponse enriches metadata with a signed download URL.
type ArchiveDownloadResponse struct {
	models.Archive
	DownloadURL string `json:"downloadUrl"`
	ExpiresAt   string `json:"expiresAt"`
}
