package security

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserClaims 身份服务签发的 Token 载荷
type UserClaims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}
