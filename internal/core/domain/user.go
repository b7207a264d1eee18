package domain

import "time"

type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PendingUser holds a registration awaiting OTP verification. It only
// lives in the cache and expires with the OTP.
type PendingUser struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"password_hash"`
	OTP          string `json:"otp"`
}

type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}
