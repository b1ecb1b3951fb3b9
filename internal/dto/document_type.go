package dto

// CreateDocumentTypeRequest creates a category.
type CreateDocumentTypeRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// UpdateDocumentTypeRequest patches a category; nil fields are left untouched.
type UpdateDocumentTypeRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}
