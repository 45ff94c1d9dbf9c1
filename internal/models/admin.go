package models

import "time"

// Admin represents an administrator account.
type Admin struct {
	ID           string    `bson:"-" json:"id"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token string `json:"token"`
	Admin Admin  `json:"admin"`
}

// Claims represents the verified contents of a session token.
type Claims struct {
	AdminID  string `json:"admin_id"`
	Username string `json:"username"`
	Exp      int64  `json:"exp"`
}
