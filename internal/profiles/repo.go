package profiles

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarceloMarchiori/m3class-backend/internal/repo"
	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
)

// Repository exposes profile-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a profiles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// CreateWithSchools inserts the profile and its school links in one
// transaction. A failed link rolls back the profile row, so a retried
// provisioning call never hits its own half-created email.
func (r *Repository) CreateWithSchools(ctx context.Context, dto CreateProfileDTO, schoolIDs []uuid.UUID) (*models.Profile, error) {
	profile := dto.ToModel()
	if profile.ID == uuid.Nil {
		// The membership links need the id before the insert returns.
		profile.ID = uuid.New()
	}
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		for _, schoolID := range schoolIDs {
			link := &models.UserSchool{UserID: profile.ID, SchoolID: schoolID}
			if err := tx.Create(link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// FindByEmail retrieves the profile matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.DB(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByID loads a profile by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.DB(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateLastLogin refreshes the profile's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// ListSchoolIDs returns the school memberships recorded for the user.
func (r *Repository) ListSchoolIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB(ctx).
		Model(&models.UserSchool{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Pluck("school_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
