package profiles

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
)

func setupProfilesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  phone TEXT,
  user_type TEXT NOT NULL,
  secretaria_role TEXT,
  school_id TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS user_schools (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  school_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (user_id, school_id)
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func professorDTO(email string) CreateProfileDTO {
	return CreateProfileDTO{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Professor",
		UserType:     enums.UserTypeProfessor,
	}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

func TestProfileRepositoryCreateWithSchools(t *testing.T) {
	db := setupProfilesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	schoolA := uuid.New()
	schoolB := uuid.New()
	created, err := repo.CreateWithSchools(ctx, professorDTO("prof@escola.example"), []uuid.UUID{schoolA, schoolB})
	require.NoError(t, err)

	found, err := repo.FindByEmail(ctx, "prof@escola.example")
	require.NoError(t, err)
	assert.Equal(t, "Professor", found.Name)

	ids, err := repo.ListSchoolIDs(ctx, created.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{schoolA, schoolB}, ids)
	assert.EqualValues(t, 2, countRows(t, db, &models.UserSchool{}))
}

func TestProfileRepositoryCreateWithSchoolsRollsBackOnLinkFailure(t *testing.T) {
	db := setupProfilesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	// A duplicated school id trips the unique membership constraint on the
	// second link, after the profile row is already in the transaction.
	schoolID := uuid.New()
	_, err := repo.CreateWithSchools(ctx, professorDTO("prof@escola.example"), []uuid.UUID{schoolID, schoolID})
	require.Error(t, err)

	assert.EqualValues(t, 0, countRows(t, db, &models.Profile{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.UserSchool{}))

	// With no stranded email, the corrected retry goes through.
	created, err := repo.CreateWithSchools(ctx, professorDTO("prof@escola.example"), []uuid.UUID{schoolID})
	require.NoError(t, err)
	ids, err := repo.ListSchoolIDs(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{schoolID}, ids)
}

func TestProfileRepositoryFindByIDNotFound(t *testing.T) {
	db := setupProfilesTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProfileRepositoryUpdateLastLogin(t *testing.T) {
	db := setupProfilesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.CreateWithSchools(ctx, professorDTO("login@escola.example"), []uuid.UUID{uuid.New()})
	require.NoError(t, err)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, created.ID, at))

	found, err := repo.FindByEmail(ctx, "login@escola.example")
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	assert.WithinDuration(t, at, *found.LastLoginAt, time.Second)
}
