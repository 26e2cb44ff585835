package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/medvisit/scheduler/internal/clinicerr"
	"github.com/medvisit/scheduler/internal/model"
	"github.com/medvisit/scheduler/internal/notify"
	"github.com/medvisit/scheduler/internal/repository/base"
)

// CheckoutService is the single point where holds become durable bookings.
type CheckoutService struct {
	tx       base.TxRunner
	slots    SlotStore
	cart     CartStore
	absences AbsenceStore
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewCheckoutService(
	tx base.TxRunner,
	slots SlotStore,
	cart CartStore,
	absences AbsenceStore,
	notifier notify.Notifier,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		tx:       tx,
		slots:    slots,
		cart:     cart,
		absences: absences,
		notifier: notifier,
		logger:   logger,
	}
}

// Commit books every slot in the patient's cart, or none of them. Each slot
// is re-validated under a row lock: it must still exist, must not have been
// booked or cancelled since the hold, and its doctor must not have declared
// an absence in the meantime. One bad slot aborts the whole batch, because
// the cart typically holds one multi-unit appointment and a half-booked
// appointment is useless. Returns the booked slot ids.
func (s *CheckoutService) Commit(ctx context.Context, patientID int64) ([]int64, error) {
	var bookedIDs []int64
	err := s.tx.RunTx(ctx, func(ctx context.Context) error {
		items, err := s.cart.ListByPatient(ctx, patientID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return clinicerr.ErrEmptyCart
		}

		slots := make([]*model.Slot, 0, len(items))
		for _, item := range items {
			slot, err := s.slots.GetByIDForUpdate(ctx, item.SlotID)
			if err != nil {
				return err
			}
			if slot == nil {
				return fmt.Errorf("%w: slot %d", clinicerr.ErrSlotGone, item.SlotID)
			}

			switch slot.Status {
			case model.SlotStatusBooked:
				return fmt.Errorf("%w: slot %d at %s", clinicerr.ErrSlotUnavailable, slot.ID, slot.TimeLabel())
			case model.SlotStatusCancelled:
				return fmt.Errorf("%w: slot %d at %s", clinicerr.ErrSlotCancelled, slot.ID, slot.TimeLabel())
			}

			absent, err := s.absences.ExistsForDate(ctx, slot.DoctorID, slot.Date)
			if err != nil {
				return err
			}
			if absent {
				return fmt.Errorf("%w: doctor %d on %s", clinicerr.ErrDoctorAbsent, slot.DoctorID, slot.Date.Format("2006-01-02"))
			}

			slots = append(slots, slot)
		}

		for _, slot := range slots {
			slot.Status = model.SlotStatusBooked
			slot.PatientID = &patientID
			if err := s.slots.Update(ctx, slot); err != nil {
				return err
			}
			bookedIDs = append(bookedIDs, slot.ID)
		}

		return s.cart.DeleteByPatient(ctx, patientID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Checkout committed",
		zap.Int64("patient_id", patientID),
		zap.Int("booked", len(bookedIDs)),
	)

	s.notifier.ScheduleChanged()
	return bookedIDs, nil
}
