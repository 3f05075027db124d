package service

import (
	"context"
	"errors"
	"fmt"
	"go-property-api/config"
	"go-property-api/logger"
	"go-property-api/media"
	"go-property-api/model"
	"go-property-api/repository"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists        = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user does not exist")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrMissingToken      = errors.New("unauthorized request")
	ErrSessionRevoked    = errors.New("refresh token is expired or used")
	ErrUserGone          = errors.New("user behind this token no longer exists")
)

// Session is the result of a login or refresh.
type Session struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// AuthService owns the session lifecycle: registration, login, refresh, logout and password changes.
type AuthService struct {
	userRepo repository.IUserRepository
	tokens   *TokenService
	uploader media.Uploader
}

func NewAuthService(userRepo repository.IUserRepository, tokens *TokenService, uploader media.Uploader) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, uploader: uploader}
}

func bcryptCost() int {
	cost := config.AppConfig.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost())
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type field struct{ name, value string }

func missingFields(fields ...field) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Register creates a user. avatarPath is optional; without it, or when its upload fails,
// the user gets a generated placeholder avatar.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, avatarPath string) (*model.User, error) {
	if missing := missingFields(
		field{"fullName", req.FullName},
		field{"email", req.Email},
		field{"username", req.Username},
		field{"password", req.Password},
		field{"phone", req.Phone},
	); len(missing) > 0 {
		return nil, newValidationError("All fields are required", missing...)
	}

	phone, err := strconv.ParseInt(strings.TrimSpace(req.Phone), 10, 64)
	if err != nil {
		return nil, newValidationError("Phone must be a number", "phone")
	}

	user := &model.User{
		FullName: strings.TrimSpace(req.FullName),
		Email:    normalize(req.Email),
		Username: normalize(req.Username),
		Phone:    phone,
		IsOwner:  req.IsOwner,
	}

	log := logger.Log.WithFields(logrus.Fields{
		"email":    user.Email,
		"username": user.Username,
	})

	_, err = s.userRepo.FindByEmailOrUsername(ctx, user.Email, user.Username)
	switch {
	case err == nil:
		log.Info("Registration rejected, user already exists")
		return nil, ErrUserExists
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	user.Password, err = s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user.Avatar = media.PlaceholderAvatar(user.FullName)
	if avatarPath != "" && s.uploader != nil {
		url, err := s.uploader.Upload(ctx, avatarPath)
		if err != nil {
			log.WithError(err).Warn("Avatar upload failed, using placeholder")
		} else {
			user.Avatar = url
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	log.WithField("user_id", user.ID.Hex()).Info("User registered")
	return user, nil
}

// Login checks the credentials and opens a new session, replacing any previous refresh token.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*Session, error) {
	if missing := missingFields(field{"identifier", identifier}, field{"password", password}); len(missing) > 0 {
		return nil, newValidationError("All fields are required", missing...)
	}
	identifier = normalize(identifier)

	user, err := s.userRepo.FindByEmailOrUsername(ctx, identifier, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !s.CheckPasswordHash(password, user.Password) {
		logger.Log.WithField("user_id", user.ID.Hex()).Warn("Login failed, incorrect password")
		return nil, ErrIncorrectPassword
	}

	session, err := s.newSession(user)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetRefreshToken(ctx, user.ID, session.RefreshToken); err != nil {
		return nil, fmt.Errorf("could not store refresh token: %w", err)
	}

	logger.Log.WithField("user_id", user.ID.Hex()).Info("User logged in")
	return session, nil
}

func (s *AuthService) newSession(user *model.User) (*Session, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges the stored refresh token for a new token pair. A token is good for one exchange.
func (s *AuthService) Refresh(ctx context.Context, incoming string) (*Session, error) {
	if incoming == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.tokens.VerifyRefreshToken(incoming)
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserGone
		}
		return nil, err
	}

	log := logger.Log.WithField("user_id", userID.Hex())
	if user.RefreshToken != incoming {
		log.Warn("Refresh token does not match the stored one")
		return nil, ErrSessionRevoked
	}

	session, err := s.newSession(user)
	if err != nil {
		return nil, err
	}
	swapped, err := s.userRepo.ReplaceRefreshToken(ctx, userID, incoming, session.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("could not rotate refresh token: %w", err)
	}
	if !swapped {
		log.Warn("Refresh token was rotated concurrently")
		return nil, ErrSessionRevoked
	}

	log.Info("Session refreshed")
	return session, nil
}

// Logout revokes the stored refresh token. Calling it twice is harmless.
func (s *AuthService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	err := s.userRepo.SetRefreshToken(ctx, userID, "")
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	logger.Log.WithField("user_id", userID.Hex()).Info("User logged out")
	return nil
}

// ChangePassword replaces the password hash and revokes the refresh token so other sessions cannot renew.
func (s *AuthService) ChangePassword(ctx context.Context, userID primitive.ObjectID, current, next string) error {
	if missing := missingFields(field{"currentPassword", current}, field{"newPassword", next}); len(missing) > 0 {
		return newValidationError("All fields are required", missing...)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserGone
		}
		return err
	}
	if !s.CheckPasswordHash(current, user.Password) {
		return ErrIncorrectPassword
	}

	hash, err := s.HashPassword(next)
	if err != nil {
		return fmt.Errorf("could not hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	if err := s.userRepo.SetRefreshToken(ctx, userID, ""); err != nil {
		return err
	}

	logger.Log.WithField("user_id", userID.Hex()).Info("Password changed")
	return nil
}

// Authenticate resolves an access token to the user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	if accessToken == "" {
		return nil, ErrMissingToken
	}
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserGone
		}
		return nil, err
	}
	return user, nil
}
