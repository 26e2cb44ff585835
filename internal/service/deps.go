package service

import (
	"context"
	"time"

	"github.com/medvisit/scheduler/internal/model"
)

// Store interfaces consumed by the services; implemented by the pgx
// repositories and by the in-memory fakes in the tests. Methods suffixed
// ForUpdate lock the returned rows for the duration of the enclosing
// transaction.

type SlotStore interface {
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Slot, error)
	GetByKeyForUpdate(ctx context.Context, doctorID int64, date time.Time, startMin int) (*model.Slot, error)
	Exists(ctx context.Context, doctorID int64, date time.Time, startMin int) (bool, error)
	ListByDoctorDateForUpdate(ctx context.Context, doctorID int64, date time.Time) ([]*model.Slot, error)
	ListByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]*model.Slot, error)
	Update(ctx context.Context, slot *model.Slot) error
	Delete(ctx context.Context, id int64) error
	GetBookedByPatient(ctx context.Context, slotID, patientID int64) (*model.Slot, error)
	ListBookedByDoctor(ctx context.Context, doctorID int64) ([]*model.DoctorAppointment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*model.PatientAppointment, error)
	HasBookedVisit(ctx context.Context, doctorID, patientID int64) (bool, error)
}

type AbsenceStore interface {
	Create(ctx context.Context, absence *model.Absence) error
	ExistsForDate(ctx context.Context, doctorID int64, date time.Time) (bool, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Absence, error)
}

type CartStore interface {
	Create(ctx context.Context, item *model.CartItem) error
	DeleteBySlot(ctx context.Context, patientID, slotID int64) (int64, error)
	DeleteByPatient(ctx context.Context, patientID int64) error
	ListByPatient(ctx context.Context, patientID int64) ([]*model.CartItem, error)
	ListEntriesByPatient(ctx context.Context, patientID int64) ([]*model.CartEntry, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateRefreshToken(ctx context.Context, userID int64, token *string) error
	SetBanned(ctx context.Context, userID int64, banned bool) error
	ListAll(ctx context.Context) ([]*model.User, error)
	ListDoctors(ctx context.Context) ([]*model.DoctorPublic, error)
}

type RatingStore interface {
	Create(ctx context.Context, rating *model.Rating) error
	ExistsForPair(ctx context.Context, doctorID, patientID int64) (bool, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Rating, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*model.Rating, error)
	ListAll(ctx context.Context) ([]*model.Rating, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type SettingStore interface {
	Get(ctx context.Context, key, fallback string) (string, error)
	Set(ctx context.Context, key, value string) error
}
