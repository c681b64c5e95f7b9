package models

// User represents a registered account in the system
type User struct {
	ID           int    `json:"id"`
	FullName     string `json:"fullname"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never serialize the password hash
}
