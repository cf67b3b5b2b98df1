/**
 * @description
 * This file defines the user and profile models for the banking service.
 * Users authenticate with their email address; the email doubles as the
 * username. Staff users gain access to the administrative endpoints.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered customer or staff member.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserProfile holds the optional contact details captured at registration.
type UserProfile struct {
	UserID      uuid.UUID  `json:"user_id"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RegisterRequest is the DTO for incoming registration requests.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginRequest is the DTO for incoming login requests.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
