package model

import "github.com/golang-jwt/jwt/v5"

// AccessClaims identify the caller on every authenticated request.
type AccessClaims struct {
	UserID   string `json:"_id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsOwner  bool   `json:"isOwner"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}
