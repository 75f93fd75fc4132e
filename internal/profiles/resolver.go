package profiles

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
)

type resolverRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	ListSchoolIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Resolver loads the durable profile tied to an authenticated principal.
// Resolution is stateless: every request resolves against the request's own
// context, so a slow fetch for one principal can never leak into another.
type Resolver struct {
	repo resolverRepository
}

// NewResolver constructs a resolver over the profiles repository.
func NewResolver(repo resolverRepository) (*Resolver, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "profiles repository required")
	}
	return &Resolver{repo: repo}, nil
}

// Resolve fetches the profile and its school scope. Membership rows are
// authoritative; the legacy school_id column only contributes when no
// membership rows exist. A missing or inactive profile is unauthorized.
func (r *Resolver) Resolve(ctx context.Context, principalID uuid.UUID) (*ResolvedProfile, error) {
	if principalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "principal id required")
	}

	profile, err := r.repo.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch profile")
	}
	if !profile.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile is inactive")
	}

	schoolIDs, err := r.repo.ListSchoolIDs(ctx, principalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch school memberships")
	}
	if len(schoolIDs) == 0 && profile.SchoolID != nil && *profile.SchoolID != uuid.Nil {
		schoolIDs = []uuid.UUID{*profile.SchoolID}
	}

	return &ResolvedProfile{
		Profile:   *FromModel(profile),
		SchoolIDs: schoolIDs,
	}, nil
}

// NormalizeEmail lowers and trims an email before lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
