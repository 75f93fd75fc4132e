package access

import (
	"testing"

	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
)

func secretariaIdentity(role enums.SecretariaRole) Identity {
	return Identity{
		UserID:         uuid.New(),
		UserType:       enums.UserTypeSecretaria,
		SecretariaRole: &role,
	}
}

func TestResolveDashboardPerUserType(t *testing.T) {
	cases := []struct {
		name     string
		identity Identity
		want     enums.Dashboard
	}{
		{"master", Identity{UserType: enums.UserTypeMaster}, enums.DashboardMaster},
		{"school admin", Identity{UserType: enums.UserTypeSchoolAdmin}, enums.DashboardSchoolAdmin},
		{"professor", Identity{UserType: enums.UserTypeProfessor}, enums.DashboardProfessor},
		{"aluno", Identity{UserType: enums.UserTypeAluno}, enums.DashboardAluno},
		{"responsavel", Identity{UserType: enums.UserTypeResponsavel}, enums.DashboardResponsavel},
		{"secretaria with role", secretariaIdentity(enums.SecretariaRoleOperacional), enums.DashboardSecretaria},
		{"unknown type", Identity{UserType: "superuser"}, enums.DashboardRestricted},
		{"empty type", Identity{}, enums.DashboardRestricted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveDashboard(tc.identity); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestResolveDashboardSecretariaWithoutRoleIsRestricted(t *testing.T) {
	id := Identity{UserType: enums.UserTypeSecretaria}
	if got := ResolveDashboard(id); got != enums.DashboardRestricted {
		t.Fatalf("secretaria without role must be restricted, got %s", got)
	}

	bad := enums.SecretariaRole("gerente")
	id.SecretariaRole = &bad
	if got := ResolveDashboard(id); got != enums.DashboardRestricted {
		t.Fatalf("secretaria with invalid role must be restricted, got %s", got)
	}
}

func TestHierarchyDeniedOutsideSecretariaFamily(t *testing.T) {
	levels := []enums.SecretariaRole{
		enums.SecretariaRoleOperacional,
		enums.SecretariaRoleSecretarioEducacao,
		enums.SecretariaRoleDiretor,
	}
	types := []enums.UserType{
		enums.UserTypeMaster,
		enums.UserTypeSchoolAdmin,
		enums.UserTypeProfessor,
		enums.UserTypeAluno,
		enums.UserTypeResponsavel,
	}
	for _, ut := range types {
		for _, lvl := range levels {
			if HasHierarchyAccess(Identity{UserType: ut}, lvl) {
				t.Fatalf("%s must never clear hierarchy level %s", ut, lvl)
			}
		}
	}
}

func TestHierarchyOrdering(t *testing.T) {
	allRoles := []enums.SecretariaRole{
		enums.SecretariaRoleOperacional,
		enums.SecretariaRoleSecretarioEducacao,
		enums.SecretariaRoleDiretor,
	}

	// Every valid role clears the lowest bar.
	for _, role := range allRoles {
		if !HasHierarchyAccess(secretariaIdentity(role), enums.SecretariaRoleOperacional) {
			t.Fatalf("%s should clear secretaria_operacional", role)
		}
	}

	// Only diretor clears the diretor bar.
	for _, role := range allRoles {
		got := HasHierarchyAccess(secretariaIdentity(role), enums.SecretariaRoleDiretor)
		want := role == enums.SecretariaRoleDiretor
		if got != want {
			t.Fatalf("diretor gate for %s: got %v, want %v", role, got, want)
		}
	}

	if !HasHierarchyAccess(secretariaIdentity(enums.SecretariaRoleDiretor), enums.SecretariaRoleSecretarioEducacao) {
		t.Fatal("diretor should clear secretario_educacao")
	}
	if HasHierarchyAccess(secretariaIdentity(enums.SecretariaRoleOperacional), enums.SecretariaRoleSecretarioEducacao) {
		t.Fatal("operacional should not clear secretario_educacao")
	}
}

func TestHierarchyFailsClosedOnBadData(t *testing.T) {
	if HasHierarchyAccess(Identity{UserType: enums.UserTypeSecretaria}, enums.SecretariaRoleOperacional) {
		t.Fatal("nil secretaria role must be denied")
	}
	if HasHierarchyAccess(secretariaIdentity(enums.SecretariaRoleDiretor), enums.SecretariaRole("presidente")) {
		t.Fatal("unknown required level must be denied")
	}
	bad := enums.SecretariaRole("gerente")
	if HasHierarchyAccess(Identity{UserType: enums.UserTypeSecretaria, SecretariaRole: &bad}, enums.SecretariaRoleOperacional) {
		t.Fatal("unknown held role must be denied")
	}
}

func TestCanCreateUsers(t *testing.T) {
	allowed := []enums.UserType{enums.UserTypeMaster, enums.UserTypeSchoolAdmin, enums.UserTypeSecretaria}
	for _, ut := range allowed {
		if !CanCreateUsers(Identity{UserType: ut}) {
			t.Fatalf("%s should be able to create users", ut)
		}
	}
	denied := []enums.UserType{enums.UserTypeProfessor, enums.UserTypeAluno, enums.UserTypeResponsavel, ""}
	for _, ut := range denied {
		if CanCreateUsers(Identity{UserType: ut}) {
			t.Fatalf("%s should not be able to create users", ut)
		}
	}
}

func TestResolveSchoolScope(t *testing.T) {
	s1 := uuid.New()
	s2 := uuid.New()

	master := ResolveSchoolScope(Identity{UserType: enums.UserTypeMaster})
	if !master.Unrestricted {
		t.Fatal("master scope must be unrestricted")
	}
	if !master.Allows(s1) || !master.Allows(uuid.New()) {
		t.Fatal("unrestricted scope must allow any school")
	}

	prof := ResolveSchoolScope(Identity{
		UserType:  enums.UserTypeProfessor,
		SchoolIDs: []uuid.UUID{s1, s2, s1, uuid.Nil},
	})
	if prof.Unrestricted {
		t.Fatal("professor scope must be restricted")
	}
	if len(prof.SchoolIDs) != 2 {
		t.Fatalf("expected deduplicated scope of 2, got %d", len(prof.SchoolIDs))
	}
	if !prof.Allows(s1) || !prof.Allows(s2) {
		t.Fatal("scope must allow member schools")
	}
	if prof.Allows(uuid.New()) {
		t.Fatal("scope must deny non-member schools")
	}

	empty := ResolveSchoolScope(Identity{UserType: enums.UserTypeAluno})
	if !empty.IsEmpty() {
		t.Fatal("identity with no schools must have an empty scope")
	}
	if empty.Allows(uuid.Nil) {
		t.Fatal("nil school id must never be allowed")
	}
}
