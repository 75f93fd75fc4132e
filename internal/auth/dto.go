package auth

import (
	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/internal/profiles"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens, profile, dashboard, and tenant scope
// produced by a successful login.
type LoginResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	Dashboard    enums.Dashboard      `json:"dashboard"`
	SchoolIDs    []uuid.UUID          `json:"school_ids"`
	User         *profiles.ProfileDTO `json:"user"`
}
