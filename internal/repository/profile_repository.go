package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/arsip-desa-api/internal/models"
)

// ProfileRepository persists the singleton institution profile.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get loads the profile row; sql.ErrNoRows when none was saved yet.
func (r *ProfileRepository) Get(ctx context.Context) (*models.InstitutionProfile, error) {
	const query = `SELECT id, name, address, phone, email, description, dashboard_title, logo_locator,
       logo_name, logo_content_type, documents, updated_by, updated_at
	FROM institution_profiles WHERE id = $1`
	var profile models.InstitutionProfile
	if err := r.db.GetContext(ctx, &profile, query, models.DefaultProfileID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert creates the profile on first save and updates it in place afterwards.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.InstitutionProfile) error {
	profile.ID = models.DefaultProfileID
	profile.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO institution_profiles (id, name, address, phone, email, description, dashboard_title,
	logo_locator, logo_name, logo_content_type, documents, updated_by, updated_at)
	VALUES (:id, :name, :address, :phone, :email, :description, :dashboard_title,
	:logo_locator, :logo_name, :logo_content_type, :documents, :updated_by, :updated_at)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		address = EXCLUDED.address,
		phone = EXCLUDED.phone,
		email = EXCLUDED.email,
		description = EXCLUDED.description,
		dashboard_title = EXCLUDED.dashboard_title,
		logo_locator = EXCLUDED.logo_locator,
		logo_name = EXCLUDED.logo_name,
		logo_content_type = EXCLUDED.logo_content_type,
		documents = EXCLUDED.documents,
		updated_by = EXCLUDED.updated_by,
		updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("upsert institution profile: %w", err)
	}
	return nil
}
