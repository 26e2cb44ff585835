package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medvisit/scheduler/internal/clinicerr"
	"github.com/medvisit/scheduler/internal/model"
)

// Full booking lifecycle across services sharing one store: generation,
// competing holds, checkout, absence cascade over the booked result.
func TestBookingLifecycle(t *testing.T) {
	slots := newFakeSlotStore()
	cart := newFakeCartStore(slots)
	absences := newFakeAbsenceStore()
	notifier := &fakeNotifier{}
	logger := zap.NewNop()

	availability := NewAvailabilityService(&fakeTx{}, slots, absences, notifier, logger)
	holds := NewCartService(&fakeTx{}, slots, cart, newFakeAttachments(), notifier, logger)
	checkout := NewCheckoutService(&fakeTx{}, slots, cart, absences, notifier, logger)
	absence := NewAbsenceService(&fakeTx{}, slots, absences, notifier, logger)

	ctx := context.Background()
	day := date(2025, time.June, 2)
	patientA, patientB := int64(101), int64(102)

	// Doctor opens 09:00-10:00: exactly the 09:00 and 09:30 slots.
	created, err := availability.AddDay(ctx, 1, day, 9*60, 10*60)
	require.NoError(t, err)
	require.Equal(t, 2, created)

	first, err := slots.GetByKeyForUpdate(ctx, 1, day, 9*60)
	require.NoError(t, err)
	second, err := slots.GetByKeyForUpdate(ctx, 1, day, 9*60+30)
	require.NoError(t, err)

	// Patient A claims both; slots go pending under A.
	held, err := holds.Add(ctx, patientA, first.ID, 2, model.VisitDetails{PatientName: "A"}, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{first.ID, second.ID}, held)

	// Patient B races for the second slot and loses.
	_, err = holds.Add(ctx, patientB, second.ID, 1, model.VisitDetails{PatientName: "B"}, nil)
	assert.ErrorIs(t, err, clinicerr.ErrConflict)

	// A's checkout books both.
	booked, err := checkout.Commit(ctx, patientA)
	require.NoError(t, err)
	assert.ElementsMatch(t, held, booked)
	for _, id := range booked {
		s, _ := slots.GetByID(ctx, id)
		require.Equal(t, model.SlotStatusBooked, s.Status)
		assert.Equal(t, patientA, *s.PatientID)
	}

	// The doctor calls the day off: booked slots are cancelled, not deleted,
	// and keep the patient's data.
	cancelled, err := absence.Register(ctx, 1, day, "sick")
	require.NoError(t, err)
	assert.Equal(t, 2, cancelled)
	for _, id := range booked {
		s, _ := slots.GetByID(ctx, id)
		require.NotNil(t, s)
		assert.Equal(t, model.SlotStatusCancelled, s.Status)
		require.NotNil(t, s.PatientID)
		assert.Equal(t, patientA, *s.PatientID)
	}

	// Regeneration over the same window creates nothing: the cancelled
	// slots still occupy their keys and are never regenerated over.
	created, err = availability.AddDay(ctx, 1, day, 9*60, 10*60)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}
