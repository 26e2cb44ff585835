package model

import "time"

type Rating struct {
	ID        int64     `json:"id"`
	DoctorID  int64     `json:"doctor_id"`
	PatientID int64     `json:"patient_id"`
	Stars     int       `json:"stars"` // 1..5
	Comment   string    `json:"comment"`
	Reply     *string   `json:"reply,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Joined for listings, not stored on the row.
	Doctor  *DoctorPublic `json:"doctor,omitempty"`
	Patient *User         `json:"patient,omitempty"`
}
