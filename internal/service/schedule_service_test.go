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

type scheduleFixture struct {
	svc         *ScheduleService
	slots       *fakeSlotStore
	attachments *fakeAttachments
	notifier    *fakeNotifier
}

func newScheduleFixture() *scheduleFixture {
	slots := newFakeSlotStore()
	attachments := newFakeAttachments()
	notifier := &fakeNotifier{}
	svc := NewScheduleService(&fakeTx{}, slots, attachments, notifier, zap.NewNop())
	return &scheduleFixture{svc: svc, slots: slots, attachments: attachments, notifier: notifier}
}

func (f *scheduleFixture) seedMixedDay(day time.Time) {
	patientID := int64(42)
	name := "Ann"
	f.slots.add(&model.Slot{DoctorID: 1, Date: day, StartMin: 9 * 60, Status: model.SlotStatusFree})
	f.slots.add(&model.Slot{
		DoctorID: 1, Date: day, StartMin: 10 * 60,
		Status: model.SlotStatusPending, PatientID: &patientID, PatientName: &name,
	})
	f.slots.add(&model.Slot{
		DoctorID: 1, Date: day, StartMin: 11 * 60,
		Status: model.SlotStatusBooked, PatientID: &patientID, PatientName: &name,
	})
	f.slots.add(&model.Slot{
		DoctorID: 1, Date: day, StartMin: 12 * 60,
		Status: model.SlotStatusCancelled, PatientID: &patientID, PatientName: &name,
	})
}

func TestScheduleOwningDoctorSeesEverything(t *testing.T) {
	f := newScheduleFixture()
	day := date(2025, time.June, 2)
	f.seedMixedDay(day)

	got, err := f.svc.Get(context.Background(), 1, model.Principal{ID: 1, Role: model.RoleDoctor}, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, model.SlotStatusPending, got[1].Status)
	assert.Equal(t, model.SlotStatusCancelled, got[3].Status)
	require.NotNil(t, got[2].PatientName)
	assert.Equal(t, "Ann", *got[2].PatientName)
}

func TestScheduleStrangerSeesSanitizedView(t *testing.T) {
	f := newScheduleFixture()
	day := date(2025, time.June, 2)
	f.seedMixedDay(day)

	// Patient 7 holds nothing here; everything not free reads as booked and
	// carries no patient data.
	got, err := f.svc.Get(context.Background(), 1, model.Principal{ID: 7, Role: model.RolePatient}, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, model.SlotStatusFree, got[0].Status)
	for _, s := range got[1:] {
		assert.Equal(t, model.SlotStatusBooked, s.Status)
		assert.Nil(t, s.PatientID)
		assert.Nil(t, s.PatientName)
		assert.Nil(t, s.AttachmentRef)
	}
}

func TestScheduleOtherDoctorIsSanitizedToo(t *testing.T) {
	f := newScheduleFixture()
	day := date(2025, time.June, 2)
	f.seedMixedDay(day)

	got, err := f.svc.Get(context.Background(), 1, model.Principal{ID: 2, Role: model.RoleDoctor}, time.Time{}, time.Time{})
	require.NoError(t, err)
	for _, s := range got {
		assert.Nil(t, s.PatientID)
	}
}

func TestSchedulePatientSeesOwnSlotsInFull(t *testing.T) {
	f := newScheduleFixture()
	day := date(2025, time.June, 2)
	f.seedMixedDay(day)

	got, err := f.svc.Get(context.Background(), 1, model.Principal{ID: 42, Role: model.RolePatient}, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 4)

	// The patient's own holds keep real status and data.
	assert.Equal(t, model.SlotStatusPending, got[1].Status)
	require.NotNil(t, got[1].PatientName)
	assert.Equal(t, "Ann", *got[1].PatientName)
	assert.Equal(t, model.SlotStatusCancelled, got[3].Status)
}

func TestScheduleDateWindow(t *testing.T) {
	f := newScheduleFixture()
	f.slots.add(&model.Slot{DoctorID: 1, Date: date(2025, time.June, 2), StartMin: 9 * 60, Status: model.SlotStatusFree})
	f.slots.add(&model.Slot{DoctorID: 1, Date: date(2025, time.June, 9), StartMin: 9 * 60, Status: model.SlotStatusFree})

	got, err := f.svc.Get(context.Background(), 1, model.Principal{ID: 1, Role: model.RoleDoctor},
		date(2025, time.June, 1), date(2025, time.June, 5))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Date.Equal(date(2025, time.June, 2)))
}

func TestCancelAppointment(t *testing.T) {
	f := newScheduleFixture()
	ctx := context.Background()
	patientID := int64(42)
	ref := "scan.pdf"
	future := model.DateOnly(time.Now().UTC().AddDate(0, 0, 7))
	s := f.slots.add(&model.Slot{
		DoctorID: 1, Date: future, StartMin: 9 * 60,
		Status: model.SlotStatusBooked, PatientID: &patientID, AttachmentRef: &ref,
	})

	require.NoError(t, f.svc.CancelAppointment(ctx, patientID, s.ID))

	got, _ := f.slots.GetByID(ctx, s.ID)
	assert.Equal(t, model.SlotStatusFree, got.Status)
	assert.Nil(t, got.PatientID)
	assert.Nil(t, got.AttachmentRef)
	assert.Equal(t, []string{"scan.pdf"}, f.attachments.deleted)
	assert.Equal(t, 1, f.notifier.changes)
}

func TestCancelAppointmentInPast(t *testing.T) {
	f := newScheduleFixture()
	ctx := context.Background()
	patientID := int64(42)
	s := f.slots.add(&model.Slot{
		DoctorID: 1, Date: date(2025, time.June, 2), StartMin: 9 * 60,
		Status: model.SlotStatusBooked, PatientID: &patientID,
	})
	f.svc.now = func() time.Time { return date(2025, time.June, 3) }

	err := f.svc.CancelAppointment(ctx, patientID, s.ID)
	assert.ErrorIs(t, err, clinicerr.ErrValidation)

	got, _ := f.slots.GetByID(ctx, s.ID)
	assert.Equal(t, model.SlotStatusBooked, got.Status)
}

func TestCancelAppointmentNotOwn(t *testing.T) {
	f := newScheduleFixture()
	ctx := context.Background()
	patientID := int64(42)
	future := model.DateOnly(time.Now().UTC().AddDate(0, 0, 7))
	s := f.slots.add(&model.Slot{
		DoctorID: 1, Date: future, StartMin: 9 * 60,
		Status: model.SlotStatusBooked, PatientID: &patientID,
	})

	err := f.svc.CancelAppointment(ctx, 7, s.ID)
	assert.ErrorIs(t, err, clinicerr.ErrNotFound)
}
