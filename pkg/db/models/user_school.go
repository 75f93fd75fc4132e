package models

import (
	"time"

	"github.com/google/uuid"
)

// UserSchool links a profile with a school. The set of rows for a profile
// is the authoritative scope list; Profile.SchoolID is only a legacy
// fallback for rows predating this table.
type UserSchool struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_user_school"`
	SchoolID  uuid.UUID `gorm:"column:school_id;type:uuid;not null;uniqueIndex:idx_user_school"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
