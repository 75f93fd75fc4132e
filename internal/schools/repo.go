package schools

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarceloMarchiori/m3class-backend/internal/repo"
	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
)

// Repository handles school persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to school operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create persists a new school row.
func (r *Repository) Create(ctx context.Context, dto CreateSchoolDTO) (*models.School, error) {
	school := dto.ToModel()
	if err := r.DB(ctx).Create(school).Error; err != nil {
		return nil, err
	}
	return school, nil
}

// FindByID loads a school by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.School, error) {
	var school models.School
	if err := r.DB(ctx).Where("id = ?", id).First(&school).Error; err != nil {
		return nil, err
	}
	return &school, nil
}

// ListAll returns every school, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]models.School, error) {
	var schools []models.School
	if err := r.DB(ctx).Order("created_at DESC").Find(&schools).Error; err != nil {
		return nil, err
	}
	return schools, nil
}

// ListByIDs returns the schools matching the provided ids, newest first.
func (r *Repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.School, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var schools []models.School
	if err := r.DB(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&schools).Error; err != nil {
		return nil, err
	}
	return schools, nil
}

// Update saves the provided school.
func (r *Repository) Update(ctx context.Context, school *models.School) error {
	if school == nil {
		return fmt.Errorf("school is required")
	}
	return r.DB(ctx).Save(school).Error
}
