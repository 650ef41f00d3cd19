package auth

import (
	"github.com/google/uuid"

	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
)

// RegisterRequest captures a new member signup.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest rotates a refresh token. The access token may be expired;
// only its identity claims are read.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserSummary is the safe subset of a user row returned by auth endpoints.
type UserSummary struct {
	ID             uuid.UUID            `json:"id"`
	Email          string               `json:"email"`
	Name           string               `json:"name"`
	PhotoURL       *string              `json:"photo_url,omitempty"`
	Role           enums.UserRole       `json:"role"`
	Points         int64                `json:"points"`
	MembershipTier enums.MembershipTier `json:"membership_tier"`
	StoreName      *string              `json:"store_name,omitempty"`
}

// LoginResponse contains the token pair and the authenticated user.
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         UserSummary `json:"user"`
}

// RefreshResponse carries the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func summarize(user *models.User) UserSummary {
	return UserSummary{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		PhotoURL:       user.PhotoURL,
		Role:           user.Role,
		Points:         user.Points,
		MembershipTier: user.MembershipTier,
		StoreName:      user.StoreName,
	}
}
