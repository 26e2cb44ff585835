package model

// DoctorAppointment is a booked slot as listed for the owning doctor.
type DoctorAppointment struct {
	Slot            Slot    `json:"slot"`
	PatientUsername *string `json:"patient_username,omitempty"`
}

// PatientAppointment is a booked or cancelled slot as listed for its patient.
type PatientAppointment struct {
	Slot   Slot          `json:"slot"`
	Doctor *DoctorPublic `json:"doctor,omitempty"`
}
