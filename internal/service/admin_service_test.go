package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medvisit/scheduler/internal/clinicerr"
	"github.com/medvisit/scheduler/internal/model"
)

func newAdminFixture() (*AdminService, *fakeUserStore, *fakeRatingStore, *fakeSettingStore) {
	users := newFakeUserStore()
	ratings := newFakeRatingStore()
	settings := newFakeSettingStore()
	svc := NewAdminService(users, ratings, settings, zap.NewNop())
	return svc, users, ratings, settings
}

func TestCreateDoctor(t *testing.T) {
	svc, _, _, _ := newAdminFixture()
	ctx := context.Background()

	doctor, err := svc.CreateDoctor(ctx, "doc", "password1", "Dr. Who", "cardiology")
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, doctor.Role)
	require.NotNil(t, doctor.Specialization)
	assert.Equal(t, "cardiology", *doctor.Specialization)

	_, err = svc.CreateDoctor(ctx, "doc", "other", "Twin", "")
	assert.ErrorIs(t, err, clinicerr.ErrValidation)
}

func TestCreateDoctorWithoutSpecialization(t *testing.T) {
	svc, _, _, _ := newAdminFixture()
	doctor, err := svc.CreateDoctor(context.Background(), "doc", "password1", "Dr. Who", "")
	require.NoError(t, err)
	assert.Nil(t, doctor.Specialization)
}

func TestSetBan(t *testing.T) {
	svc, users, _, _ := newAdminFixture()
	ctx := context.Background()
	patient := users.add(&model.User{Username: "ann", Role: model.RolePatient})
	admin := users.add(&model.User{Username: "root", Role: model.RoleAdmin})

	require.NoError(t, svc.SetBan(ctx, patient.ID, true))
	got, _ := users.GetByID(ctx, patient.ID)
	assert.True(t, got.IsBanned)

	require.NoError(t, svc.SetBan(ctx, patient.ID, false))
	got, _ = users.GetByID(ctx, patient.ID)
	assert.False(t, got.IsBanned)

	assert.ErrorIs(t, svc.SetBan(ctx, admin.ID, true), clinicerr.ErrValidation)
	assert.ErrorIs(t, svc.SetBan(ctx, 999, true), clinicerr.ErrNotFound)
}

func TestDeleteRating(t *testing.T) {
	svc, _, ratings, _ := newAdminFixture()
	ctx := context.Background()

	r := &model.Rating{DoctorID: 1, PatientID: 42, Stars: 1, Comment: "spam"}
	require.NoError(t, ratings.Create(ctx, r))

	require.NoError(t, svc.DeleteRating(ctx, r.ID))
	assert.ErrorIs(t, svc.DeleteRating(ctx, r.ID), clinicerr.ErrNotFound)
}

func TestSetAuthMode(t *testing.T) {
	svc, _, _, settings := newAdminFixture()
	ctx := context.Background()

	require.NoError(t, svc.SetAuthMode(ctx, "session"))
	mode, _ := settings.Get(ctx, model.SettingAuthMode, "jwt")
	assert.Equal(t, "session", mode)

	assert.ErrorIs(t, svc.SetAuthMode(ctx, "oauth"), clinicerr.ErrValidation)
}
