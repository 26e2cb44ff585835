package model

import "time"

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	Role           Role      `json:"role"`
	Name           string    `json:"name"`
	Specialization *string   `json:"specialization,omitempty"`
	IsBanned       bool      `json:"is_banned"`
	RefreshToken   *string   `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// DoctorPublic is the doctor projection exposed to patients.
type DoctorPublic struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Specialization *string `json:"specialization,omitempty"`
}
