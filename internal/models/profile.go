package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultProfileID keys the single institution profile row.
const DefaultProfileID = "default"

// ProfileDocument is a supporting PDF attached to the institution profile.
type ProfileDocument struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Locator     string    `json:"locator"`
	ContentType string    `json:"contentType"`
	UploadedAt  time.Time `json:"uploadedAt"`
	URL         string    `json:"url,omitempty"`
}

// ProfileDocuments is persisted as a JSONB array.
type ProfileDocuments []ProfileDocument

// Value marshals the documents to JSON for persistence.
func (d ProfileDocuments) Value() (driver.Value, error) {
	if d == nil {
		d = ProfileDocuments{}
	}
	stored := make([]ProfileDocument, len(d))
	for i, doc := range d {
		doc.URL = ""
		stored[i] = doc
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("marshal profile documents: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the documents slice.
func (d *ProfileDocuments) Scan(value interface{}) error {
	if value == nil {
		*d = ProfileDocuments{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ProfileDocuments", value)
	}
	if len(data) == 0 {
		*d = ProfileDocuments{}
		return nil
	}
	var docs []ProfileDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("unmarshal profile documents: %w", err)
	}
	*d = docs
	return nil
}

// InstitutionProfile describes the village office running the archive.
type InstitutionProfile struct {
	ID              string           `db:"id" json:"-"`
	Name            string           `db:"name" json:"name"`
	Address         string           `db:"address" json:"address"`
	Phone           string           `db:"phone" json:"phone"`
	Email           string           `db:"email" json:"email"`
	Description     string           `db:"description" json:"description"`
	DashboardTitle  *string          `db:"dashboard_title" json:"dashboardTitle,omitempty"`
	LogoLocator     *string          `db:"logo_locator" json:"-"`
	LogoName        *string          `db:"logo_name" json:"logoName,omitempty"`
	LogoContentType *string          `db:"logo_content_type" json:"-"`
	Documents       ProfileDocuments `db:"documents" json:"documents"`
	UpdatedBy       *string          `db:"updated_by" json:"updatedBy,omitempty"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updatedAt"`
	LogoURL         string           `db:"-" json:"logoUrl,omitempty"`
	Placeholder     bool             `db:"-" json:"placeholder,omitempty"`
}
