package model

import "time"

type SlotStatus string

const (
	SlotStatusFree    SlotStatus = "free"
	SlotStatusPending SlotStatus = "pending"
	SlotStatusBooked  SlotStatus = "booked"
	// SlotStatusCancelled is terminal: cancelled rows are never deleted or
	// regenerated over by the engine; retention is an operator concern.
	SlotStatusCancelled SlotStatus = "cancelled"
)

// Slot is the atomic 30-minute bookable unit of a doctor's calendar.
// (doctor_id, date, start_min) is unique.
type Slot struct {
	ID            int64      `json:"id"`
	DoctorID      int64      `json:"doctor_id"`
	Date          time.Time  `json:"date"`      // calendar date, midnight UTC
	StartMin      int        `json:"start_min"` // minutes from midnight, grid-aligned
	Status        SlotStatus `json:"status"`
	PatientID     *int64     `json:"patient_id"`
	VisitType     *string    `json:"visit_type"`
	PatientName   *string    `json:"patient_name"`
	PatientAge    *int       `json:"patient_age"`
	PatientGender *string    `json:"patient_gender"`
	PatientNotes  *string    `json:"patient_notes"`
	AttachmentRef *string    `json:"attachment_ref"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// VisitDetails is the patient-supplied metadata attached while holding a slot.
type VisitDetails struct {
	VisitType     string `json:"visit_type"`
	PatientName   string `json:"patient_name"`
	PatientAge    int    `json:"patient_age"`
	PatientGender string `json:"patient_gender"`
	Notes         string `json:"notes"`
}

// StartsAt returns the absolute start time of the slot.
func (s *Slot) StartsAt() time.Time {
	return s.Date.Add(time.Duration(s.StartMin) * time.Minute)
}

// TimeLabel formats StartMin as HH:MM for messages and logs.
func (s *Slot) TimeLabel() string {
	return ClockFromMinutes(s.StartMin)
}

// Hold marks the slot pending for a patient and attaches visit metadata.
func (s *Slot) Hold(patientID int64, details VisitDetails, attachmentRef *string) {
	s.Status = SlotStatusPending
	s.PatientID = &patientID
	s.VisitType = &details.VisitType
	s.PatientName = &details.PatientName
	age := details.PatientAge
	s.PatientAge = &age
	s.PatientGender = &details.PatientGender
	s.PatientNotes = &details.Notes
	s.AttachmentRef = attachmentRef
}

// Release reverts the slot to free and clears owner and metadata, keeping
// the invariant that a free slot carries no patient data.
func (s *Slot) Release() {
	s.Status = SlotStatusFree
	s.PatientID = nil
	s.VisitType = nil
	s.PatientName = nil
	s.PatientAge = nil
	s.PatientGender = nil
	s.PatientNotes = nil
	s.AttachmentRef = nil
}
