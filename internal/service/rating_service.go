package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/medvisit/scheduler/internal/clinicerr"
	"github.com/medvisit/scheduler/internal/model"
)

// RatingService lets patients rate doctors they have actually visited.
type RatingService struct {
	users   UserStore
	slots   SlotStore
	ratings RatingStore
	logger  *zap.Logger
}

func NewRatingService(users UserStore, slots SlotStore, ratings RatingStore, logger *zap.Logger) *RatingService {
	return &RatingService{
		users:   users,
		slots:   slots,
		ratings: ratings,
		logger:  logger,
	}
}

// Add records a rating. Banned patients are rejected, the patient must have
// a booked visit with the doctor, and each patient rates a doctor at most
// once.
func (s *RatingService) Add(ctx context.Context, patientID, doctorID int64, stars int, comment string) (*model.Rating, error) {
	if stars < 1 || stars > 5 {
		return nil, fmt.Errorf("%w: stars must be 1-5", clinicerr.ErrValidation)
	}

	patient, err := s.users.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, fmt.Errorf("%w: patient %d", clinicerr.ErrNotFound, patientID)
	}
	if patient.IsBanned {
		return nil, fmt.Errorf("%w: account banned", clinicerr.ErrForbidden)
	}

	visited, err := s.slots.HasBookedVisit(ctx, doctorID, patientID)
	if err != nil {
		return nil, err
	}
	if !visited {
		return nil, fmt.Errorf("%w: no visit with this doctor", clinicerr.ErrForbidden)
	}

	exists, err := s.ratings.ExistsForPair(ctx, doctorID, patientID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: doctor already rated", clinicerr.ErrValidation)
	}

	rating := &model.Rating{
		DoctorID:  doctorID,
		PatientID: patientID,
		Stars:     stars,
		Comment:   comment,
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		return nil, err
	}

	s.logger.Info("Rating added",
		zap.Int64("doctor_id", doctorID),
		zap.Int64("patient_id", patientID),
		zap.Int("stars", stars),
	)

	return rating, nil
}

// DoctorRatings is the public rating listing for one doctor.
func (s *RatingService) DoctorRatings(ctx context.Context, doctorID int64) ([]*model.Rating, error) {
	return s.ratings.ListByDoctor(ctx, doctorID)
}

// MyRatings lists the patient's own ratings.
func (s *RatingService) MyRatings(ctx context.Context, patientID int64) ([]*model.Rating, error) {
	return s.ratings.ListByPatient(ctx, patientID)
}

// Doctors is the public doctor directory.
func (s *RatingService) Doctors(ctx context.Context) ([]*model.DoctorPublic, error) {
	return s.users.ListDoctors(ctx)
}
