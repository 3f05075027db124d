package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account. Password and RefreshToken never leave the server.
type User struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FullName     string             `json:"fullName" bson:"fullName"`
	Email        string             `json:"email" bson:"email"`
	Username     string             `json:"username" bson:"username"`
	Phone        int64              `json:"phone" bson:"phone"`
	Password     string             `json:"-" bson:"password"`
	Avatar       string             `json:"avatar" bson:"avatar"`
	IsOwner      bool               `json:"isOwner" bson:"isOwner"`
	RefreshToken string             `json:"-" bson:"refreshToken,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ProfileUpdate lists the user fields a profile edit may replace. Empty values are skipped.
type ProfileUpdate struct {
	FullName string
	Username string
	Avatar   string
}
