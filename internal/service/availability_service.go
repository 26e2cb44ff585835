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
)

// AvailabilityService turns a doctor's declared open hours into free slot
// rows. Generation is idempotent: slots already occupying a
// (doctor, date, time) identity are left untouched, whatever their status.
type AvailabilityService struct {
	tx       base.TxRunner
	slots    SlotStore
	absences AbsenceStore
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewAvailabilityService(
	tx base.TxRunner,
	slots SlotStore,
	absences AbsenceStore,
	notifier notify.Notifier,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		tx:       tx,
		slots:    slots,
		absences: absences,
		notifier: notifier,
		logger:   logger,
	}
}

// AddDay generates free slots for one date over [startMin, endMin). Returns
// the number of slots actually created.
func (s *AvailabilityService) AddDay(ctx context.Context, doctorID int64, date time.Time, startMin, endMin int) (int, error) {
	r := model.TimeRange{StartMin: startMin, EndMin: endMin}
	if err := r.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", clinicerr.ErrValidation, err)
	}

	date = model.DateOnly(date)

	var created int
	err := s.tx.RunTx(ctx, func(ctx context.Context) error {
		n, err := s.generateForDate(ctx, doctorID, date, []model.TimeRange{r})
		created = n
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Availability added",
		zap.Int64("doctor_id", doctorID),
		zap.Time("date", date),
		zap.Int("created", created),
	)

	s.notifier.ScheduleChanged()
	return created, nil
}

// AddRecurring generates free slots for every date in [startDate, endDate]
// whose weekday is in weekdays, over every configured range. Dates the
// doctor declared an absence for are skipped entirely. The whole operation
// is one transaction; nothing persists on failure.
func (s *AvailabilityService) AddRecurring(
	ctx context.Context,
	doctorID int64,
	startDate, endDate time.Time,
	weekdays []time.Weekday,
	ranges []model.TimeRange,
) (int, error) {
	if len(ranges) == 0 {
		return 0, fmt.Errorf("%w: no time ranges given", clinicerr.ErrValidation)
	}
	for _, r := range ranges {
		if err := r.Validate(); err != nil {
			return 0, fmt.Errorf("%w: %v", clinicerr.ErrValidation, err)
		}
	}

	startDate = model.DateOnly(startDate)
	endDate = model.DateOnly(endDate)
	if endDate.Before(startDate) {
		return 0, fmt.Errorf("%w: end date before start date", clinicerr.ErrValidation)
	}

	wanted := make(map[time.Weekday]bool, len(weekdays))
	for _, wd := range weekdays {
		wanted[wd] = true
	}

	var created int
	err := s.tx.RunTx(ctx, func(ctx context.Context) error {
		for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
			if !wanted[d.Weekday()] {
				continue
			}

			absent, err := s.absences.ExistsForDate(ctx, doctorID, d)
			if err != nil {
				return err
			}
			if absent {
				continue
			}

			n, err := s.generateForDate(ctx, doctorID, d, ranges)
			if err != nil {
				return err
			}
			created += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Recurring availability added",
		zap.Int64("doctor_id", doctorID),
		zap.Time("start_date", startDate),
		zap.Time("end_date", endDate),
		zap.Int("created", created),
	)

	s.notifier.ScheduleChanged()
	return created, nil
}

func (s *AvailabilityService) generateForDate(ctx context.Context, doctorID int64, date time.Time, ranges []model.TimeRange) (int, error) {
	created := 0
	for _, r := range ranges {
		for _, startMin := range r.Enumerate() {
			exists, err := s.slots.Exists(ctx, doctorID, date, startMin)
			if err != nil {
				return 0, err
			}
			if exists {
				continue
			}

			slot := &model.Slot{
				DoctorID: doctorID,
				Date:     date,
				StartMin: startMin,
				Status:   model.SlotStatusFree,
			}
			if err := s.slots.Create(ctx, slot); err != nil {
				return 0, err
			}
			created++
		}
	}
	return created, nil
}
