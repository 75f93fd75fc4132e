package impersonation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/MarceloMarchiori/m3class-backend/internal/access"
	"github.com/MarceloMarchiori/m3class-backend/internal/profiles"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
)

// TargetSummary is the minimal description of the profile being impersonated.
type TargetSummary struct {
	ID       uuid.UUID      `json:"id"`
	UserType enums.UserType `json:"user_type"`
	Name     string         `json:"name"`
}

// Overlay is the payload persisted per session while impersonation is active.
type Overlay struct {
	MasterID  uuid.UUID     `json:"master_id"`
	Target    TargetSummary `json:"target"`
	StartedAt time.Time     `json:"started_at"`
}

type overlayStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type overlayKeyer interface {
	ImpersonationKey(accessID string) string
}

type profileResolver interface {
	Resolve(ctx context.Context, principalID uuid.UUID) (*profiles.ResolvedProfile, error)
}

// Service manages the impersonation overlay. The overlay is keyed by the
// session's access ID, so revoking the session orphans the overlay and a
// fresh login starts clean.
type Service struct {
	store    overlayStore
	keyer    overlayKeyer
	resolver profileResolver
	ttl      time.Duration
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Store    overlayStore
	Keyer    overlayKeyer
	Resolver profileResolver
	TTL      time.Duration
}

// NewService constructs the impersonation service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("overlay store is required")
	}
	if params.Keyer == nil {
		return nil, fmt.Errorf("overlay keyer is required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("profile resolver is required")
	}
	if params.TTL <= 0 {
		return nil, fmt.Errorf("overlay ttl must be positive")
	}
	return &Service{
		store:    params.Store,
		keyer:    params.Keyer,
		resolver: params.Resolver,
		ttl:      params.TTL,
	}, nil
}

// Start activates the overlay for the session. Only a master identity may
// impersonate; everyone else is rejected with no effect.
func (s *Service) Start(ctx context.Context, actor access.Identity, accessID string, target TargetSummary) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id required")
	}
	if actor.UserType != enums.UserTypeMaster {
		return pkgerrors.New(pkgerrors.CodeForbidden, "acesso restrito")
	}
	if target.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "target profile id required")
	}
	if target.ID == actor.UserID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot impersonate yourself")
	}
	if !target.UserType.IsValid() || target.UserType == enums.UserTypeMaster {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid impersonation target")
	}

	overlay := Overlay{
		MasterID:  actor.UserID,
		Target:    target,
		StartedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(overlay)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode overlay")
	}
	if err := s.store.Set(ctx, s.keyer.ImpersonationKey(accessID), string(raw), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store overlay")
	}
	return nil
}

// Stop clears the overlay unconditionally. Stopping when nothing is active
// is a no-op, not an error.
func (s *Service) Stop(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id required")
	}
	if err := s.store.Del(ctx, s.keyer.ImpersonationKey(accessID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear overlay")
	}
	return nil
}

// Active returns the overlay stored for the session, or nil when none is set.
func (s *Service) Active(ctx context.Context, accessID string) (*Overlay, error) {
	if strings.TrimSpace(accessID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "access id required")
	}
	raw, err := s.store.Get(ctx, s.keyer.ImpersonationKey(accessID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load overlay")
	}
	var overlay Overlay
	if err := json.Unmarshal([]byte(raw), &overlay); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode overlay")
	}
	return &overlay, nil
}

// EffectiveIdentity returns the identity every downstream read must use.
// The caller's master status is re-validated on every call: a stale overlay
// left by a previous master session, or one read by a non-master profile,
// is discarded and removed.
func (s *Service) EffectiveIdentity(ctx context.Context, accessID string, real *profiles.ResolvedProfile) (access.Identity, bool, error) {
	if real == nil {
		return access.Identity{}, false, pkgerrors.New(pkgerrors.CodeUnauthorized, "no resolved profile")
	}
	realIdentity := real.Identity()

	overlay, err := s.Active(ctx, accessID)
	if err != nil {
		return access.Identity{}, false, err
	}
	if overlay == nil {
		return realIdentity, false, nil
	}

	if realIdentity.UserType != enums.UserTypeMaster || overlay.MasterID != realIdentity.UserID {
		_ = s.Stop(ctx, accessID)
		return realIdentity, false, nil
	}

	target, err := s.resolver.Resolve(ctx, overlay.Target.ID)
	if err != nil {
		// Target gone or deactivated: drop the overlay and fall back.
		_ = s.Stop(ctx, accessID)
		return realIdentity, false, nil
	}
	return target.Identity(), true, nil
}
