package access

import (
	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
)

// Identity is the effective identity consulted for every authorization
// decision. It is derived from the resolved profile, or from the active
// impersonation overlay when one applies.
type Identity struct {
	UserID         uuid.UUID
	Name           string
	UserType       enums.UserType
	SecretariaRole *enums.SecretariaRole
	SchoolIDs      []uuid.UUID
}

// Scope is the set of schools an identity may read or write. Unrestricted
// is only ever true for master identities.
type Scope struct {
	Unrestricted bool
	SchoolIDs    []uuid.UUID
}

// ResolveDashboard maps an identity to its top-level dashboard. Unrecognized
// role data resolves to the restricted dashboard, never to an elevated one.
func ResolveDashboard(id Identity) enums.Dashboard {
	switch id.UserType {
	case enums.UserTypeMaster:
		return enums.DashboardMaster
	case enums.UserTypeSchoolAdmin:
		return enums.DashboardSchoolAdmin
	case enums.UserTypeProfessor:
		return enums.DashboardProfessor
	case enums.UserTypeAluno:
		return enums.DashboardAluno
	case enums.UserTypeResponsavel:
		return enums.DashboardResponsavel
	case enums.UserTypeSecretaria:
		if id.SecretariaRole == nil || !id.SecretariaRole.IsValid() {
			return enums.DashboardRestricted
		}
		return enums.DashboardSecretaria
	default:
		return enums.DashboardRestricted
	}
}

// HasHierarchyAccess reports whether the identity clears the required
// secretaria hierarchy level. The hierarchy only exists inside the
// secretaria family, so every other user type is denied regardless of level.
func HasHierarchyAccess(id Identity, required enums.SecretariaRole) bool {
	if id.UserType != enums.UserTypeSecretaria {
		return false
	}
	if id.SecretariaRole == nil {
		return false
	}
	requiredLevel := required.Level()
	if requiredLevel == 0 {
		return false
	}
	return id.SecretariaRole.Level() >= requiredLevel
}

// CanCreateUsers reports whether the identity may provision new users.
func CanCreateUsers(id Identity) bool {
	switch id.UserType {
	case enums.UserTypeMaster, enums.UserTypeSchoolAdmin, enums.UserTypeSecretaria:
		return true
	default:
		return false
	}
}

// ResolveSchoolScope computes the tenant scope downstream queries must
// filter by. The authorizer only computes the scope; callers are required
// to apply it.
func ResolveSchoolScope(id Identity) Scope {
	if id.UserType == enums.UserTypeMaster {
		return Scope{Unrestricted: true}
	}
	ids := make([]uuid.UUID, 0, len(id.SchoolIDs))
	seen := make(map[uuid.UUID]struct{}, len(id.SchoolIDs))
	for _, schoolID := range id.SchoolIDs {
		if schoolID == uuid.Nil {
			continue
		}
		if _, ok := seen[schoolID]; ok {
			continue
		}
		seen[schoolID] = struct{}{}
		ids = append(ids, schoolID)
	}
	return Scope{SchoolIDs: ids}
}

// Allows reports whether the scope admits the given school.
func (s Scope) Allows(schoolID uuid.UUID) bool {
	if s.Unrestricted {
		return true
	}
	if schoolID == uuid.Nil {
		return false
	}
	for _, id := range s.SchoolIDs {
		if id == schoolID {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the scope grants access to nothing.
func (s Scope) IsEmpty() bool {
	return !s.Unrestricted && len(s.SchoolIDs) == 0
}
