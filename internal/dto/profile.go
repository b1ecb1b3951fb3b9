package dto

import "encoding/json"

// SaveProfileRequest holds the text fields of the profile form.
type SaveProfileRequest struct {
	Name           string  `form:"name" json:"name" validate:"required"`
	Address        string  `form:"address" json:"address" validate:"required"`
	Phone          string  `form:"phone" json:"phone" validate:"required"`
	Email          string  `form:"email" json:"email" validate:"required,email"`
	Description    string  `form:"description" json:"description" validate:"required"`
	DashboardTitle *string `form:"dashboardTitle" json:"dashboardTitle"`
	RemoveLogo     bool    `form:"removeLogo" json:"removeLogo"`

	// ExistingDocuments lists the document ids to keep on JSON saves. Omitted
	// keeps them all.
	ExistingDocuments json.RawMessage `form:"-" json:"existingDocuments,omitempty" swaggertype:"array,string"`
}
