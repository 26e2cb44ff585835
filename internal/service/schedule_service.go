package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/medvisit/scheduler/internal/clinicerr"
	"github.com/medvisit/scheduler/internal/model"
	"github.com/medvisit/scheduler/internal/notify"
	"github.com/medvisit/scheduler/internal/repository/base"
	"github.com/medvisit/scheduler/internal/storage"
)

// ScheduleService serves role-aware projections of a doctor's calendar and
// patient-initiated cancellation of future bookings.
type ScheduleService struct {
	tx          base.TxRunner
	slots       SlotStore
	attachments storage.AttachmentStore
	notifier    notify.Notifier
	logger      *zap.Logger
	now         func() time.Time
}

func NewScheduleService(
	tx base.TxRunner,
	slots SlotStore,
	attachments storage.AttachmentStore,
	notifier notify.Notifier,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		tx:          tx,
		slots:       slots,
		attachments: attachments,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// Get returns the doctor's slots in [from, to] (zero times mean unbounded),
// ordered by date then time, sanitized for the requester. The owning doctor
// sees everything. Anyone else sees their own slots in full, and for
// strangers' slots only "free or not": pending and cancelled read as booked
// and every piece of patient data is stripped.
func (s *ScheduleService) Get(ctx context.Context, doctorID int64, requester model.Principal, from, to time.Time) ([]*model.Slot, error) {
	slots, err := s.slots.ListByDoctor(ctx, doctorID, from, to)
	if err != nil {
		return nil, err
	}

	if requester.Role == model.RoleDoctor && requester.ID == doctorID {
		return slots, nil
	}

	sanitized := make([]*model.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.PatientID != nil && *slot.PatientID == requester.ID {
			sanitized = append(sanitized, slot)
			continue
		}

		view := *slot
		if view.Status == model.SlotStatusPending || view.Status == model.SlotStatusCancelled {
			view.Status = model.SlotStatusBooked
		}
		view.PatientID = nil
		view.VisitType = nil
		view.PatientName = nil
		view.PatientAge = nil
		view.PatientGender = nil
		view.PatientNotes = nil
		view.AttachmentRef = nil
		sanitized = append(sanitized, &view)
	}

	return sanitized, nil
}

// DoctorAppointments lists the doctor's booked visits.
func (s *ScheduleService) DoctorAppointments(ctx context.Context, doctorID int64) ([]*model.DoctorAppointment, error) {
	return s.slots.ListBookedByDoctor(ctx, doctorID)
}

// PatientAppointments lists the patient's booked and cancelled visits.
func (s *ScheduleService) PatientAppointments(ctx context.Context, patientID int64) ([]*model.PatientAppointment, error) {
	return s.slots.ListByPatient(ctx, patientID)
}

// CancelAppointment frees a patient's booked slot, allowed only while the
// appointment is still in the future. Visit data and the stored attachment
// are cleared with it.
func (s *ScheduleService) CancelAppointment(ctx context.Context, patientID, slotID int64) error {
	var attachmentRef *string
	err := s.tx.RunTx(ctx, func(ctx context.Context) error {
		slot, err := s.slots.GetBookedByPatient(ctx, slotID, patientID)
		if err != nil {
			return err
		}
		if slot == nil {
			return fmt.Errorf("%w: booked slot %d", clinicerr.ErrNotFound, slotID)
		}

		if slot.StartsAt().Before(s.now()) {
			return fmt.Errorf("%w: appointment already took place", clinicerr.ErrValidation)
		}

		attachmentRef = slot.AttachmentRef
		slot.Release()
		return s.slots.Update(ctx, slot)
	})
	if err != nil {
		return err
	}

	if attachmentRef != nil {
		if err := s.attachments.Delete(ctx, *attachmentRef); err != nil {
			s.logger.Warn("Failed to delete attachment",
				zap.String("ref", *attachmentRef),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Appointment cancelled",
		zap.Int64("patient_id", patientID),
		zap.Int64("slot_id", slotID),
	)

	s.notifier.ScheduleChanged()
	return nil
}
