package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarceloMarchiori/m3class-backend/internal/access"
	"github.com/MarceloMarchiori/m3class-backend/internal/profiles"
	"github.com/MarceloMarchiori/m3class-backend/pkg/config"
	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
	"github.com/MarceloMarchiori/m3class-backend/pkg/security"
)

type profileRepository interface {
	CreateWithSchools(ctx context.Context, dto profiles.CreateProfileDTO, schoolIDs []uuid.UUID) (*models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
}

// CreateUserInput captures the data needed to provision a profile.
type CreateUserInput struct {
	Email          string
	Name           string
	Phone          *string
	UserType       enums.UserType
	SecretariaRole *enums.SecretariaRole
	SchoolIDs      []uuid.UUID
}

// CreatedUser is the provisioning result. The temp password is returned once
// and never stored in clear.
type CreatedUser struct {
	Profile      *profiles.ProfileDTO `json:"profile"`
	TempPassword string               `json:"temp_password"`
}

// Service provisions new profiles on behalf of privileged identities.
type Service interface {
	CreateUser(ctx context.Context, actor access.Identity, scope access.Scope, input CreateUserInput) (*CreatedUser, error)
}

type service struct {
	repo        profileRepository
	passwordCfg config.PasswordConfig
}

// NewService builds the provisioning service.
func NewService(repo profileRepository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

func (s *service) CreateUser(ctx context.Context, actor access.Identity, scope access.Scope, input CreateUserInput) (*CreatedUser, error) {
	if !access.CanCreateUsers(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito")
	}

	email := profiles.NormalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.UserType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user type")
	}
	if input.UserType == enums.UserTypeMaster {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "master accounts are not provisioned here")
	}
	if input.UserType == enums.UserTypeSecretaria {
		if input.SecretariaRole == nil || !input.SecretariaRole.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "secretaria role required")
		}
	} else if input.SecretariaRole != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "secretaria role only applies to secretaria users")
	}
	if len(input.SchoolIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one school is required")
	}
	for _, schoolID := range input.SchoolIDs {
		if schoolID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid school id")
		}
		if !scope.Allows(schoolID) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito")
		}
	}

	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup profile")
	}

	tempPassword, err := security.GenerateTempPassword(16)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	// Profile and membership rows land atomically: a failed link must not
	// leave an email behind that blocks the retry.
	primary := input.SchoolIDs[0]
	profile, err := s.repo.CreateWithSchools(ctx, profiles.CreateProfileDTO{
		Email:          email,
		PasswordHash:   hash,
		Name:           name,
		Phone:          input.Phone,
		UserType:       input.UserType,
		SecretariaRole: input.SecretariaRole,
		SchoolID:       &primary,
	}, input.SchoolIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}

	return &CreatedUser{
		Profile:      profiles.FromModel(profile),
		TempPassword: tempPassword,
	}, nil
}
