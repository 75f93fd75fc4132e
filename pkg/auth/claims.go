package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID         uuid.UUID
	UserType       enums.UserType
	SecretariaRole *enums.SecretariaRole
	SchoolID       *uuid.UUID
	JTI            string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID         uuid.UUID             `json:"user_id"`
	UserType       enums.UserType        `json:"user_type"`
	SecretariaRole *enums.SecretariaRole `json:"secretaria_role,omitempty"`
	SchoolID       *uuid.UUID            `json:"school_id,omitempty"`
	jwt.RegisteredClaims
}
