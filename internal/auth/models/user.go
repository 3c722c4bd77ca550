package models

// ============================================================
// User Model
// ============================================================

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	StudentID    string `json:"studentId"`
	PasswordHash string `json:"-"`
	CreatedAt    string `json:"createdAt"`
}
