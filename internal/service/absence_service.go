package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/medvisit/scheduler/internal/model"
	"github.com/medvisit/scheduler/internal/notify"
	"github.com/medvisit/scheduler/internal/repository/base"
)

// AbsenceService registers a doctor's unavailability for a date and
// reconciles every slot already on that date.
type AbsenceService struct {
	tx       base.TxRunner
	slots    SlotStore
	absences AbsenceStore
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewAbsenceService(
	tx base.TxRunner,
	slots SlotStore,
	absences AbsenceStore,
	notifier notify.Notifier,
	logger *zap.Logger,
) *AbsenceService {
	return &AbsenceService{
		tx:       tx,
		slots:    slots,
		absences: absences,
		notifier: notifier,
		logger:   logger,
	}
}

// Register persists the absence and cascades over the date's slots in one
// transaction: booked and pending slots become cancelled with all patient
// data kept, so the patient can still see what was called off; free slots
// are deleted, there is nobody to tell. Returns the cancelled count.
func (s *AbsenceService) Register(ctx context.Context, doctorID int64, date time.Time, reason string) (int, error) {
	date = model.DateOnly(date)

	var cancelled int
	err := s.tx.RunTx(ctx, func(ctx context.Context) error {
		absence := &model.Absence{DoctorID: doctorID, Date: date, Reason: reason}
		if err := s.absences.Create(ctx, absence); err != nil {
			return err
		}

		slots, err := s.slots.ListByDoctorDateForUpdate(ctx, doctorID, date)
		if err != nil {
			return err
		}

		for _, slot := range slots {
			switch slot.Status {
			case model.SlotStatusBooked, model.SlotStatusPending:
				slot.Status = model.SlotStatusCancelled
				if err := s.slots.Update(ctx, slot); err != nil {
					return err
				}
				cancelled++
			case model.SlotStatusFree:
				if err := s.slots.Delete(ctx, slot.ID); err != nil {
					return err
				}
			}
			// Already-cancelled slots stay as they are.
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Absence registered",
		zap.Int64("doctor_id", doctorID),
		zap.Time("date", date),
		zap.Int("cancelled", cancelled),
	)

	s.notifier.ScheduleChanged()
	return cancelled, nil
}

// ListByDoctor returns a doctor's declared absences.
func (s *AbsenceService) ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Absence, error) {
	return s.absences.ListByDoctor(ctx, doctorID)
}
