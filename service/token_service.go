package service

import (
	"errors"
	"fmt"
	"go-property-api/config"
	"go-property-api/logger"
	"go-property-api/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService signs and verifies access and refresh tokens. It keeps no state besides its keys.
type TokenService struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(accessSecret string, accessTTL time.Duration, refreshSecret string, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		accessTTL:     accessTTL,
		refreshSecret: []byte(refreshSecret),
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// NewTokenServiceFromConfig builds a TokenService from the loaded AppConfig.
func NewTokenServiceFromConfig() (*TokenService, error) {
	cfg := config.AppConfig.JWT
	accessTTL, err := config.ParseExpiry(cfg.AccessExpiry)
	if err != nil {
		return nil, fmt.Errorf("access token expiry: %w", err)
	}
	refreshTTL, err := config.ParseExpiry(cfg.RefreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("refresh token expiry: %w", err)
	}
	return NewTokenService(cfg.AccessSecret, accessTTL, cfg.RefreshSecret, refreshTTL), nil
}

func (s *TokenService) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) IssueAccessToken(user *model.User) (string, error) {
	claims := &model.AccessClaims{
		UserID:           user.ID.Hex(),
		FullName:         user.FullName,
		Email:            user.Email,
		Username:         user.Username,
		IsOwner:          user.IsOwner,
		RegisteredClaims: s.registered(s.accessTTL),
	}
	return s.sign(claims, s.accessSecret, user)
}

func (s *TokenService) IssueRefreshToken(user *model.User) (string, error) {
	claims := &model.RefreshClaims{
		UserID:           user.ID.Hex(),
		RegisteredClaims: s.registered(s.refreshTTL),
	}
	return s.sign(claims, s.refreshSecret, user)
}

func (s *TokenService) sign(claims jwt.Claims, secret []byte, user *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID.Hex()).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}
	return tokenString, nil
}

func (s *TokenService) VerifyAccessToken(tokenString string) (*model.AccessClaims, error) {
	claims := &model.AccessClaims{}
	if err := s.verify(tokenString, s.accessSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) VerifyRefreshToken(tokenString string) (*model.RefreshClaims, error) {
	claims := &model.RefreshClaims{}
	if err := s.verify(tokenString, s.refreshSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// verify checks signature, algorithm and expiry. Every failure collapses into ErrInvalidToken.
func (s *TokenService) verify(tokenString string, secret []byte, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))

	if err != nil || !token.Valid {
		logger.Log.WithError(err).Debug("Token verification failed")
		return ErrInvalidToken
	}
	return nil
}
