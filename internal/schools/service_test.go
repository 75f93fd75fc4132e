package schools

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarceloMarchiori/m3class-backend/internal/access"
	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
)

type stubSchoolRepo struct {
	schools map[uuid.UUID]*models.School
	listed  []models.School
	err     error
	updated *models.School
}

func newStubSchoolRepo(schools ...*models.School) *stubSchoolRepo {
	repo := &stubSchoolRepo{schools: make(map[uuid.UUID]*models.School)}
	for _, school := range schools {
		repo.schools[school.ID] = school
		repo.listed = append(repo.listed, *school)
	}
	return repo
}

func (s *stubSchoolRepo) Create(ctx context.Context, dto CreateSchoolDTO) (*models.School, error) {
	if s.err != nil {
		return nil, s.err
	}
	school := dto.ToModel()
	school.ID = uuid.New()
	s.schools[school.ID] = school
	return school, nil
}

func (s *stubSchoolRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.School, error) {
	if s.err != nil {
		return nil, s.err
	}
	school, ok := s.schools[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return school, nil
}

func (s *stubSchoolRepo) ListAll(ctx context.Context) ([]models.School, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.listed, nil
}

func (s *stubSchoolRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.School, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.School
	for _, id := range ids {
		if school, ok := s.schools[id]; ok {
			out = append(out, *school)
		}
	}
	return out, nil
}

func (s *stubSchoolRepo) Update(ctx context.Context, school *models.School) error {
	if s.err != nil {
		return s.err
	}
	s.updated = school
	s.schools[school.ID] = school
	return nil
}

func baseSchool(name string) *models.School {
	return &models.School{
		ID:         uuid.New(),
		Name:       name,
		SchoolType: enums.SchoolTypeTradicional,
		IsActive:   true,
	}
}

func mustService(t *testing.T, repo schoolRepository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func masterActor() access.Identity {
	return access.Identity{UserID: uuid.New(), UserType: enums.UserTypeMaster}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestServiceListUnrestrictedSeesAll(t *testing.T) {
	repo := newStubSchoolRepo(baseSchool("A"), baseSchool("B"))
	svc := mustService(t, repo)

	dtos, err := svc.List(context.Background(), access.Scope{Unrestricted: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(dtos) != 2 {
		t.Fatalf("expected all schools, got %d", len(dtos))
	}
}

func TestServiceListFiltersByScope(t *testing.T) {
	mine := baseSchool("Mine")
	other := baseSchool("Other")
	repo := newStubSchoolRepo(mine, other)
	svc := mustService(t, repo)

	dtos, err := svc.List(context.Background(), access.Scope{SchoolIDs: []uuid.UUID{mine.ID}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(dtos) != 1 || dtos[0].ID != mine.ID {
		t.Fatalf("scope filter failed: %+v", dtos)
	}
}

func TestServiceGetByIDOutsideScope(t *testing.T) {
	school := baseSchool("A")
	svc := mustService(t, newStubSchoolRepo(school))

	_, err := svc.GetByID(context.Background(), access.Scope{SchoolIDs: []uuid.UUID{uuid.New()}}, school.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestServiceGetByIDNotFound(t *testing.T) {
	svc := mustService(t, newStubSchoolRepo())

	_, err := svc.GetByID(context.Background(), access.Scope{Unrestricted: true}, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceCreateMasterOnly(t *testing.T) {
	svc := mustService(t, newStubSchoolRepo())

	actor := access.Identity{UserID: uuid.New(), UserType: enums.UserTypeSchoolAdmin}
	_, err := svc.Create(context.Background(), actor, CreateSchoolDTO{Name: "Nova Escola"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-master, got %v", err)
	}

	dto, err := svc.Create(context.Background(), masterActor(), CreateSchoolDTO{Name: "  Nova Escola  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Name != "Nova Escola" {
		t.Fatalf("name must be trimmed, got %q", dto.Name)
	}
	if !dto.IsActive {
		t.Fatal("new schools start active")
	}
	if dto.SchoolType != enums.SchoolTypeTradicional {
		t.Fatalf("default school type expected, got %s", dto.SchoolType)
	}
}

func TestServiceCreateRequiresName(t *testing.T) {
	svc := mustService(t, newStubSchoolRepo())

	_, err := svc.Create(context.Background(), masterActor(), CreateSchoolDTO{Name: "   "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceUpdateDeactivates(t *testing.T) {
	school := baseSchool("A")
	repo := newStubSchoolRepo(school)
	svc := mustService(t, repo)

	inactive := false
	dto, err := svc.Update(context.Background(), masterActor(), access.Scope{Unrestricted: true}, school.ID, UpdateSchoolInput{
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.IsActive {
		t.Fatal("school must be deactivated")
	}
	if repo.updated == nil || repo.updated.IsActive {
		t.Fatal("deactivation must persist")
	}
}

func TestServiceUpdateScopedAdmin(t *testing.T) {
	school := baseSchool("A")
	svc := mustService(t, newStubSchoolRepo(school))

	admin := access.Identity{UserID: uuid.New(), UserType: enums.UserTypeSchoolAdmin}
	newName := "Renomeada"

	// Outside scope the admin is rejected.
	_, err := svc.Update(context.Background(), admin, access.Scope{SchoolIDs: []uuid.UUID{uuid.New()}}, school.ID, UpdateSchoolInput{Name: &newName})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden outside scope, got %v", err)
	}

	dto, err := svc.Update(context.Background(), admin, access.Scope{SchoolIDs: []uuid.UUID{school.ID}}, school.ID, UpdateSchoolInput{Name: &newName})
	if err != nil {
		t.Fatalf("update in scope: %v", err)
	}
	if dto.Name != newName {
		t.Fatalf("expected rename, got %q", dto.Name)
	}
}

func TestServiceUpdateRejectsNonAdminTypes(t *testing.T) {
	school := baseSchool("A")
	svc := mustService(t, newStubSchoolRepo(school))

	professor := access.Identity{UserID: uuid.New(), UserType: enums.UserTypeProfessor}
	name := "Tentativa"
	_, err := svc.Update(context.Background(), professor, access.Scope{SchoolIDs: []uuid.UUID{school.ID}}, school.ID, UpdateSchoolInput{Name: &name})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for professor, got %v", err)
	}
}
