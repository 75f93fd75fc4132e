package schools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarceloMarchiori/m3class-backend/internal/access"
	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
)

type schoolRepository interface {
	Create(ctx context.Context, dto CreateSchoolDTO) (*models.School, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.School, error)
	ListAll(ctx context.Context) ([]models.School, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.School, error)
	Update(ctx context.Context, school *models.School) error
}

// Service exposes tenant operations. Every read is filtered by the effective
// identity's school scope; writes beyond is_active flips are master only.
type Service interface {
	List(ctx context.Context, scope access.Scope) ([]SchoolDTO, error)
	GetByID(ctx context.Context, scope access.Scope, id uuid.UUID) (*SchoolDTO, error)
	Create(ctx context.Context, actor access.Identity, input CreateSchoolDTO) (*SchoolDTO, error)
	Update(ctx context.Context, actor access.Identity, scope access.Scope, id uuid.UUID, input UpdateSchoolInput) (*SchoolDTO, error)
}

type service struct {
	repo schoolRepository
}

// NewService builds a school service with the provided repository.
func NewService(repo schoolRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("school repository required")
	}
	return &service{repo: repo}, nil
}

// UpdateSchoolInput captures the allowed school fields for mutation.
type UpdateSchoolInput struct {
	Name        *string
	SchoolType  *enums.SchoolType
	Email       *string
	Phone       *string
	Address     *string
	City        *string
	State       *string
	ZipCode     *string
	AdminUserID *uuid.UUID
	IsActive    *bool
}

func (s *service) List(ctx context.Context, scope access.Scope) ([]SchoolDTO, error) {
	var (
		rows []models.School
		err  error
	)
	if scope.Unrestricted {
		rows, err = s.repo.ListAll(ctx)
	} else {
		rows, err = s.repo.ListByIDs(ctx, scope.SchoolIDs)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list schools")
	}

	dtos := make([]SchoolDTO, 0, len(rows))
	for idx := range rows {
		dtos = append(dtos, *FromModel(&rows[idx]))
	}
	return dtos, nil
}

func (s *service) GetByID(ctx context.Context, scope access.Scope, id uuid.UUID) (*SchoolDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "school id required")
	}
	if !scope.Allows(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito")
	}

	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "school not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load school")
	}
	return FromModel(school), nil
}

func (s *service) Create(ctx context.Context, actor access.Identity, input CreateSchoolDTO) (*SchoolDTO, error) {
	if actor.UserType != enums.UserTypeMaster {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito")
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "school name is required")
	}
	if input.SchoolType != nil && !input.SchoolType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid school type")
	}

	school, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create school")
	}
	return FromModel(school), nil
}

func (s *service) Update(ctx context.Context, actor access.Identity, scope access.Scope, id uuid.UUID, input UpdateSchoolInput) (*SchoolDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "school id required")
	}
	if actor.UserType != enums.UserTypeMaster && actor.UserType != enums.UserTypeSchoolAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito")
	}
	if !scope.Allows(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito")
	}

	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "school not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load school")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "school name cannot be empty")
		}
		school.Name = name
	}
	if input.SchoolType != nil {
		if !input.SchoolType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid school type")
		}
		school.SchoolType = *input.SchoolType
	}
	if input.Email != nil {
		school.Email = cloneStringPtr(input.Email)
	}
	if input.Phone != nil {
		school.Phone = cloneStringPtr(input.Phone)
	}
	if input.Address != nil {
		school.Address = cloneStringPtr(input.Address)
	}
	if input.City != nil {
		school.City = cloneStringPtr(input.City)
	}
	if input.State != nil {
		school.State = cloneStringPtr(input.State)
	}
	if input.ZipCode != nil {
		school.ZipCode = cloneStringPtr(input.ZipCode)
	}
	if input.AdminUserID != nil {
		cpy := *input.AdminUserID
		school.AdminUserID = &cpy
	}
	if input.IsActive != nil {
		// Deactivation only, reactivation included: soft flag, rows stay.
		school.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, school); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update school")
	}
	return FromModel(school), nil
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
