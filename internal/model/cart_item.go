package model

import "time"

// CartItem links a patient to one pending slot they currently hold. It is
// created and destroyed together with the slot's pending transition, never
// independently.
type CartItem struct {
	ID        int64     `json:"id"`
	PatientID int64     `json:"patient_id"`
	SlotID    int64     `json:"slot_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CartEntry is a cart item joined with its slot and the owning doctor's
// public info, as shown to the holding patient.
type CartEntry struct {
	Item   CartItem      `json:"item"`
	Slot   *Slot         `json:"slot"`
	Doctor *DoctorPublic `json:"doctor"`
}
