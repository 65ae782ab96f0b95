package domain

import "time"

type User struct {
	ID           string     `json:"id"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phone_number"`
	DateOfBirth  time.Time  `json:"date_of_birth"`
	Gender       string     `json:"gender,omitempty"`
	PasswordHash string     `json:"-"`
	Verified     bool       `json:"verified"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}
