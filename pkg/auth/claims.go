package auth

import (
	"github.com/bazarly/bazarly-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload carried by access tokens. Subject holds the user or
// agent id; Role decides which route groups the bearer may hit.
type Claims struct {
	Role enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
