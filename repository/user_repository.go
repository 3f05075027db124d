package repository

import (
	"context"
	"errors"
	"go-property-api/logger"
	"go-property-api/model"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// IUserRepository defines the contract for user persistence.
type IUserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error)
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	ReplaceRefreshToken(ctx context.Context, id primitive.ObjectID, current, next string) (bool, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update model.ProfileUpdate) (*model.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserRepository implements IUserRepository on a MongoDB collection.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	log := logger.Log.WithFields(logrus.Fields{
		"email":    user.Email,
		"username": user.Username,
	})
	log.Info("Inserting a new user")

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Info("User insert rejected by unique index")
			return ErrDuplicateKey
		}
		log.WithError(err).Error("Failed to insert user")
		return err
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmailOrUsername returns the first user whose email or username matches.
func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		logger.Log.WithError(err).Error("Failed to query user")
		return nil, err
	}
	return &user, nil
}

// SetRefreshToken stores token as the user's only refresh token. An empty token unsets the slot.
func (r *UserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	update := bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": time.Now().UTC()}}
	if token == "" {
		update = bson.M{
			"$unset": bson.M{"refreshToken": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		}
	}
	return r.updateOne(ctx, id, update)
}

// ReplaceRefreshToken swaps current for next only while current is still the stored token.
// It reports false when the slot held something else.
func (r *UserRepository) ReplaceRefreshToken(ctx context.Context, id primitive.ObjectID, current, next string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "refreshToken": current},
		bson.M{"$set": bson.M{"refreshToken": next, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", id.Hex()).Error("Failed to rotate refresh token")
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"password": hash, "updatedAt": time.Now().UTC()}})
}

// UpdateProfile sets the non-empty fields of update and returns the stored result.
func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update model.ProfileUpdate) (*model.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.FullName != "" {
		set["fullName"] = update.FullName
	}
	if update.Username != "" {
		set["username"] = update.Username
	}
	if update.Avatar != "" {
		set["avatar"] = update.Avatar
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user model.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, ErrDuplicateKey
		}
		logger.Log.WithError(err).WithField("user_id", id.Hex()).Error("Failed to update user profile")
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", id.Hex()).Error("Failed to delete user")
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", id.Hex()).Error("Failed to update user")
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
