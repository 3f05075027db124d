package service

import (
	"context"
	"errors"
	"fmt"
	"go-property-api/logger"
	"go-property-api/media"
	"go-property-api/model"
	"go-property-api/repository"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService handles profile reads and edits.
type UserService struct {
	userRepo repository.IUserRepository
	uploader media.Uploader
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.IUserRepository, uploader media.Uploader) *UserService {
	return &UserService{userRepo: userRepo, uploader: uploader}
}

// UpdateUser replaces the caller's non-empty profile fields and, when given, uploads a new avatar.
func (s *UserService) UpdateUser(ctx context.Context, userID primitive.ObjectID, req model.UpdateUserRequest, avatarPath string) (*model.User, error) {
	update := model.ProfileUpdate{
		FullName: strings.TrimSpace(req.FullName),
		Username: normalize(req.Username),
	}

	if avatarPath != "" && s.uploader != nil {
		url, err := s.uploader.Upload(ctx, avatarPath)
		if err != nil {
			return nil, fmt.Errorf("could not upload avatar: %w", err)
		}
		update.Avatar = url
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, ErrUserExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserGone
		}
		return nil, err
	}

	logger.Log.WithField("user_id", userID.Hex()).Info("User details updated")
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	userID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, newValidationError("Invalid user id", "id")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
