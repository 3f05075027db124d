// file: model/request.go

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RegisterRequest is the multipart payload for creating a user. The avatar file travels alongside.
type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone" validate:"required,number"`
	IsOwner  bool   `json:"isOwner"`
}

// UnmarshalJSON accepts phone as a JSON string or a JSON number.
func (r *RegisterRequest) UnmarshalJSON(data []byte) error {
	type plain RegisterRequest
	aux := struct {
		*plain
		Phone json.RawMessage `json:"phone"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.Phone)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		return json.Unmarshal(raw, &r.Phone)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("phone must be a string or a number: %w", err)
	}
	r.Phone = n.String()
	return nil
}

// LoginRequest accepts either the email or the username as identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// UpdateUserRequest fields are optional; blanks are ignored.
type UpdateUserRequest struct {
	FullName string `json:"fullName"`
	Username string `json:"username" validate:"omitempty,max=50"`
}

// PropertyRequest is the multipart payload for listing a new property.
// Numbers arrive as form strings and tags as one comma separated string.
type PropertyRequest struct {
	Title        string `json:"title" validate:"required"`
	Address      string `json:"address" validate:"required"`
	PropertyType string `json:"propertyType" validate:"required,oneof='Meeting Room' 'Private Office Room' Desk"`
	Area         string `json:"area" validate:"required,numeric"`
	Tags         string `json:"tags" validate:"required"`
	HasParking   bool   `json:"hasParking"`
	IsAccessible bool   `json:"isAccessible"`
	IsAvailable  bool   `json:"isAvailable"`
	Capacity     string `json:"capacity" validate:"required,number"`
	LeaseTerm    string `json:"leaseTerm" validate:"required,oneof=Hourly Daily Weekly Monthly Yearly"`
	Price        string `json:"price" validate:"required,numeric"`
}

// EditPropertyRequest mirrors PropertyRequest with every field optional.
type EditPropertyRequest struct {
	Title        string `json:"title"`
	Address      string `json:"address"`
	PropertyType string `json:"propertyType" validate:"omitempty,oneof='Meeting Room' 'Private Office Room' Desk"`
	Area         string `json:"area" validate:"omitempty,numeric"`
	Tags         string `json:"tags"`
	HasParking   *bool  `json:"hasParking"`
	IsAccessible *bool  `json:"isAccessible"`
	IsAvailable  *bool  `json:"isAvailable"`
	Capacity     string `json:"capacity" validate:"omitempty,number"`
	LeaseTerm    string `json:"leaseTerm" validate:"omitempty,oneof=Hourly Daily Weekly Monthly Yearly"`
	Price        string `json:"price" validate:"omitempty,numeric"`
}

type RemoveImageRequest struct {
	ImageURL string `json:"imageUrl" validate:"required,url"`
}
