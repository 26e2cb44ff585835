package model

import "time"

// Absence is a doctor's declared non-availability for one calendar date.
// Created once, never updated.
type Absence struct {
	ID        int64     `json:"id"`
	DoctorID  int64     `json:"doctor_id"`
	Date      time.Time `json:"date"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
