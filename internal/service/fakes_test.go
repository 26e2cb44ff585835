package service

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/medvisit/scheduler/internal/model"
)

// In-memory store fakes. They implement the same interfaces the pgx
// repositories do, minus locking, which single-goroutine tests do not need.

type fakeTx struct {
	runs int
}

func (f *fakeTx) RunTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.runs++
	return fn(ctx)
}

type fakeNotifier struct {
	changes int
}

func (f *fakeNotifier) ScheduleChanged() { f.changes++ }

type fakeAttachments struct {
	saved   map[string][]byte
	deleted []string
}

func newFakeAttachments() *fakeAttachments {
	return &fakeAttachments{saved: map[string][]byte{}}
}

func (f *fakeAttachments) Save(_ context.Context, name string, _ io.Reader) (string, error) {
	f.saved[name] = nil
	return name, nil
}

func (f *fakeAttachments) Delete(_ context.Context, ref string) error {
	f.deleted = append(f.deleted, ref)
	return nil
}

type fakeSlotStore struct {
	slots  map[int64]*model.Slot
	nextID int64
}

func newFakeSlotStore() *fakeSlotStore {
	return &fakeSlotStore{slots: map[int64]*model.Slot{}, nextID: 1}
}

func (f *fakeSlotStore) add(slot *model.Slot) *model.Slot {
	if slot.ID == 0 {
		slot.ID = f.nextID
		f.nextID++
	}
	cp := *slot
	f.slots[cp.ID] = &cp
	return &cp
}

func (f *fakeSlotStore) Create(_ context.Context, slot *model.Slot) error {
	slot.ID = f.nextID
	f.nextID++
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = slot.CreatedAt
	cp := *slot
	f.slots[cp.ID] = &cp
	return nil
}

func (f *fakeSlotStore) GetByID(_ context.Context, id int64) (*model.Slot, error) {
	slot, ok := f.slots[id]
	if !ok {
		return nil, nil
	}
	cp := *slot
	return &cp, nil
}

func (f *fakeSlotStore) GetByIDForUpdate(ctx context.Context, id int64) (*model.Slot, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeSlotStore) GetByKeyForUpdate(_ context.Context, doctorID int64, date time.Time, startMin int) (*model.Slot, error) {
	for _, slot := range f.slots {
		if slot.DoctorID == doctorID && slot.Date.Equal(date) && slot.StartMin == startMin {
			cp := *slot
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSlotStore) Exists(ctx context.Context, doctorID int64, date time.Time, startMin int) (bool, error) {
	slot, err := f.GetByKeyForUpdate(ctx, doctorID, date, startMin)
	return slot != nil, err
}

func (f *fakeSlotStore) ListByDoctorDateForUpdate(_ context.Context, doctorID int64, date time.Time) ([]*model.Slot, error) {
	var out []*model.Slot
	for _, slot := range f.slots {
		if slot.DoctorID == doctorID && slot.Date.Equal(date) {
			cp := *slot
			out = append(out, &cp)
		}
	}
	sortSlots(out)
	return out, nil
}

func (f *fakeSlotStore) ListByDoctor(_ context.Context, doctorID int64, from, to time.Time) ([]*model.Slot, error) {
	var out []*model.Slot
	for _, slot := range f.slots {
		if slot.DoctorID != doctorID {
			continue
		}
		if !from.IsZero() && slot.Date.Before(from) {
			continue
		}
		if !to.IsZero() && slot.Date.After(to) {
			continue
		}
		cp := *slot
		out = append(out, &cp)
	}
	sortSlots(out)
	return out, nil
}

func (f *fakeSlotStore) Update(_ context.Context, slot *model.Slot) error {
	cp := *slot
	cp.UpdatedAt = time.Now()
	f.slots[cp.ID] = &cp
	return nil
}

func (f *fakeSlotStore) Delete(_ context.Context, id int64) error {
	delete(f.slots, id)
	return nil
}

func (f *fakeSlotStore) GetBookedByPatient(_ context.Context, slotID, patientID int64) (*model.Slot, error) {
	slot, ok := f.slots[slotID]
	if !ok || slot.Status != model.SlotStatusBooked || slot.PatientID == nil || *slot.PatientID != patientID {
		return nil, nil
	}
	cp := *slot
	return &cp, nil
}

func (f *fakeSlotStore) ListBookedByDoctor(_ context.Context, doctorID int64) ([]*model.DoctorAppointment, error) {
	var out []*model.DoctorAppointment
	for _, slot := range f.slots {
		if slot.DoctorID == doctorID && slot.Status == model.SlotStatusBooked {
			out = append(out, &model.DoctorAppointment{Slot: *slot})
		}
	}
	return out, nil
}

func (f *fakeSlotStore) ListByPatient(_ context.Context, patientID int64) ([]*model.PatientAppointment, error) {
	var out []*model.PatientAppointment
	for _, slot := range f.slots {
		if slot.PatientID == nil || *slot.PatientID != patientID {
			continue
		}
		if slot.Status == model.SlotStatusBooked || slot.Status == model.SlotStatusCancelled {
			out = append(out, &model.PatientAppointment{Slot: *slot})
		}
	}
	return out, nil
}

func (f *fakeSlotStore) HasBookedVisit(_ context.Context, doctorID, patientID int64) (bool, error) {
	for _, slot := range f.slots {
		if slot.DoctorID == doctorID && slot.Status == model.SlotStatusBooked &&
			slot.PatientID != nil && *slot.PatientID == patientID {
			return true, nil
		}
	}
	return false, nil
}

func sortSlots(slots []*model.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		return slots[i].StartMin < slots[j].StartMin
	})
}

type fakeAbsenceStore struct {
	absences []*model.Absence
	nextID   int64
}

func newFakeAbsenceStore() *fakeAbsenceStore {
	return &fakeAbsenceStore{nextID: 1}
}

func (f *fakeAbsenceStore) Create(_ context.Context, absence *model.Absence) error {
	absence.ID = f.nextID
	f.nextID++
	absence.CreatedAt = time.Now()
	cp := *absence
	f.absences = append(f.absences, &cp)
	return nil
}

func (f *fakeAbsenceStore) ExistsForDate(_ context.Context, doctorID int64, date time.Time) (bool, error) {
	for _, a := range f.absences {
		if a.DoctorID == doctorID && a.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAbsenceStore) ListByDoctor(_ context.Context, doctorID int64) ([]*model.Absence, error) {
	var out []*model.Absence
	for _, a := range f.absences {
		if a.DoctorID == doctorID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeCartStore struct {
	items  map[int64]*model.CartItem
	slots  *fakeSlotStore
	nextID int64
}

func newFakeCartStore(slots *fakeSlotStore) *fakeCartStore {
	return &fakeCartStore{items: map[int64]*model.CartItem{}, slots: slots, nextID: 1}
}

func (f *fakeCartStore) Create(_ context.Context, item *model.CartItem) error {
	item.ID = f.nextID
	f.nextID++
	item.CreatedAt = time.Now()
	cp := *item
	f.items[cp.ID] = &cp
	return nil
}

func (f *fakeCartStore) DeleteBySlot(_ context.Context, patientID, slotID int64) (int64, error) {
	for id, item := range f.items {
		if item.PatientID == patientID && item.SlotID == slotID {
			delete(f.items, id)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeCartStore) DeleteByPatient(_ context.Context, patientID int64) error {
	for id, item := range f.items {
		if item.PatientID == patientID {
			delete(f.items, id)
		}
	}
	return nil
}

func (f *fakeCartStore) ListByPatient(_ context.Context, patientID int64) ([]*model.CartItem, error) {
	var out []*model.CartItem
	for _, item := range f.items {
		if item.PatientID == patientID {
			cp := *item
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotID < out[j].SlotID })
	return out, nil
}

func (f *fakeCartStore) ListEntriesByPatient(ctx context.Context, patientID int64) ([]*model.CartEntry, error) {
	items, _ := f.ListByPatient(ctx, patientID)
	var out []*model.CartEntry
	for _, item := range items {
		slot, _ := f.slots.GetByID(ctx, item.SlotID)
		out = append(out, &model.CartEntry{Item: *item, Slot: slot})
	}
	return out, nil
}

type fakeUserStore struct {
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*model.User{}, nextID: 1}
}

func (f *fakeUserStore) add(user *model.User) *model.User {
	if user.ID == 0 {
		user.ID = f.nextID
		f.nextID++
	}
	cp := *user
	f.users[cp.ID] = &cp
	return &cp
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	cp := *user
	f.users[cp.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) UpdateRefreshToken(_ context.Context, userID int64, token *string) error {
	if user, ok := f.users[userID]; ok {
		user.RefreshToken = token
	}
	return nil
}

func (f *fakeUserStore) SetBanned(_ context.Context, userID int64, banned bool) error {
	if user, ok := f.users[userID]; ok {
		user.IsBanned = banned
	}
	return nil
}

func (f *fakeUserStore) ListAll(_ context.Context) ([]*model.User, error) {
	var out []*model.User
	for _, user := range f.users {
		cp := *user
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserStore) ListDoctors(_ context.Context) ([]*model.DoctorPublic, error) {
	var out []*model.DoctorPublic
	for _, user := range f.users {
		if user.Role == model.RoleDoctor {
			out = append(out, &model.DoctorPublic{ID: user.ID, Name: user.Name, Specialization: user.Specialization})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeRatingStore struct {
	ratings map[int64]*model.Rating
	nextID  int64
}

func newFakeRatingStore() *fakeRatingStore {
	return &fakeRatingStore{ratings: map[int64]*model.Rating{}, nextID: 1}
}

func (f *fakeRatingStore) Create(_ context.Context, rating *model.Rating) error {
	rating.ID = f.nextID
	f.nextID++
	rating.CreatedAt = time.Now()
	cp := *rating
	f.ratings[cp.ID] = &cp
	return nil
}

func (f *fakeRatingStore) ExistsForPair(_ context.Context, doctorID, patientID int64) (bool, error) {
	for _, r := range f.ratings {
		if r.DoctorID == doctorID && r.PatientID == patientID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRatingStore) ListByDoctor(_ context.Context, doctorID int64) ([]*model.Rating, error) {
	var out []*model.Rating
	for _, r := range f.ratings {
		if r.DoctorID == doctorID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRatingStore) ListByPatient(_ context.Context, patientID int64) ([]*model.Rating, error) {
	var out []*model.Rating
	for _, r := range f.ratings {
		if r.PatientID == patientID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRatingStore) ListAll(_ context.Context) ([]*model.Rating, error) {
	var out []*model.Rating
	for _, r := range f.ratings {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRatingStore) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := f.ratings[id]; !ok {
		return false, nil
	}
	delete(f.ratings, id)
	return true, nil
}

type fakeSettingStore struct {
	values map[string]string
}

func newFakeSettingStore() *fakeSettingStore {
	return &fakeSettingStore{values: map[string]string{}}
}

func (f *fakeSettingStore) Get(_ context.Context, key, fallback string) (string, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (f *fakeSettingStore) Set(_ context.Context, key, value string) error {
	f.values[key] = value
	return nil
}
