package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/medvisit/scheduler/internal/clinicerr"
	"github.com/medvisit/scheduler/internal/model"
	"github.com/medvisit/scheduler/internal/notify"
	"github.com/medvisit/scheduler/internal/repository/base"
	"github.com/medvisit/scheduler/internal/storage"
)

// CartService implements the hold protocol: a patient tentatively claims a
// chain of contiguous free slots, which stay pending until checkout or
// release.
type CartService struct {
	tx          base.TxRunner
	slots       SlotStore
	cart        CartStore
	attachments storage.AttachmentStore
	notifier    notify.Notifier
	logger      *zap.Logger
}

func NewCartService(
	tx base.TxRunner,
	slots SlotStore,
	cart CartStore,
	attachments storage.AttachmentStore,
	notifier notify.Notifier,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		tx:          tx,
		slots:       slots,
		cart:        cart,
		attachments: attachments,
		notifier:    notifier,
		logger:      logger,
	}
}

// Add claims duration contiguous slots starting at startSlotID for the
// patient. Every slot in the chain must exist and be free; the whole claim
// happens under row locks in one transaction, so two patients racing for
// overlapping chains cannot both succeed. Returns the held slot ids.
func (s *CartService) Add(
	ctx context.Context,
	patientID, startSlotID int64,
	duration int,
	details model.VisitDetails,
	attachmentRef *string,
) ([]int64, error) {
	if duration < 1 {
		return nil, fmt.Errorf("%w: duration must be at least 1", clinicerr.ErrValidation)
	}

	var heldIDs []int64
	err := s.tx.RunTx(ctx, func(ctx context.Context) error {
		first, err := s.slots.GetByIDForUpdate(ctx, startSlotID)
		if err != nil {
			return err
		}
		if first == nil {
			return fmt.Errorf("%w: slot %d", clinicerr.ErrNotFound, startSlotID)
		}

		chain := []*model.Slot{first}
		startMin := first.StartMin
		for i := 1; i < duration; i++ {
			startMin += model.GridStep
			next, err := s.slots.GetByKeyForUpdate(ctx, first.DoctorID, first.Date, startMin)
			if err != nil {
				return err
			}
			if next == nil {
				return fmt.Errorf("%w: no slot at %s", clinicerr.ErrDiscontinuity, model.ClockFromMinutes(startMin))
			}
			chain = append(chain, next)
		}

		// Validated under the same locks that guard the mutation below, so
		// a concurrent overlapping claim blocks here and then sees pending.
		for _, slot := range chain {
			if slot.Status != model.SlotStatusFree {
				return fmt.Errorf("%w: slot at %s", clinicerr.ErrConflict, slot.TimeLabel())
			}
		}

		for _, slot := range chain {
			slot.Hold(patientID, details, attachmentRef)
			if err := s.slots.Update(ctx, slot); err != nil {
				return err
			}
			item := &model.CartItem{PatientID: patientID, SlotID: slot.ID}
			if err := s.cart.Create(ctx, item); err != nil {
				return err
			}
			heldIDs = append(heldIDs, slot.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Slots held",
		zap.Int64("patient_id", patientID),
		zap.Int64("start_slot_id", startSlotID),
		zap.Int("duration", duration),
	)

	s.notifier.ScheduleChanged()
	return heldIDs, nil
}

// Remove releases the patient's hold on one slot: the cart item goes away,
// the slot reverts to free with all visit data cleared, and the stored
// attachment (if any) is deleted. Releasing a slot the patient does not
// hold is a no-op success.
func (s *CartService) Remove(ctx context.Context, patientID, slotID int64) error {
	var (
		released      bool
		attachmentRef *string
	)
	err := s.tx.RunTx(ctx, func(ctx context.Context) error {
		slot, err := s.slots.GetByIDForUpdate(ctx, slotID)
		if err != nil {
			return err
		}
		if slot == nil {
			return fmt.Errorf("%w: slot %d", clinicerr.ErrNotFound, slotID)
		}

		deleted, err := s.cart.DeleteBySlot(ctx, patientID, slotID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return nil
		}

		attachmentRef = slot.AttachmentRef
		slot.Release()
		if err := s.slots.Update(ctx, slot); err != nil {
			return err
		}
		released = true
		return nil
	})
	if err != nil {
		return err
	}

	if !released {
		return nil
	}

	// The blob goes away only after the release committed; losing the file
	// for a still-held slot would be worse than a stray file.
	if attachmentRef != nil {
		if err := s.attachments.Delete(ctx, *attachmentRef); err != nil {
			s.logger.Warn("Failed to delete attachment",
				zap.String("ref", *attachmentRef),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Hold released",
		zap.Int64("patient_id", patientID),
		zap.Int64("slot_id", slotID),
	)

	s.notifier.ScheduleChanged()
	return nil
}

// Items returns the patient's current holds with slot and doctor info.
func (s *CartService) Items(ctx context.Context, patientID int64) ([]*model.CartEntry, error) {
	return s.cart.ListEntriesByPatient(ctx, patientID)
}
