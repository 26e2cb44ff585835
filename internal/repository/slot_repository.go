package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medvisit/scheduler/internal/model"
	"github.com/medvisit/scheduler/internal/repository/base"
)

type SlotRepository struct {
	pool *pgxpool.Pool
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

const slotCols = `id, doctor_id, date, start_min, status, patient_id,
	visit_type, patient_name, patient_age, patient_gender, patient_notes,
	attachment_ref, created_at, updated_at`

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var s model.Slot
	err := row.Scan(
		&s.ID,
		&s.DoctorID,
		&s.Date,
		&s.StartMin,
		&s.Status,
		&s.PatientID,
		&s.VisitType,
		&s.PatientName,
		&s.PatientAge,
		&s.PatientGender,
		&s.PatientNotes,
		&s.AttachmentRef,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSlots(rows pgx.Rows) ([]*model.Slot, error) {
	defer rows.Close()
	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// Create inserts a new slot row.
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (doctor_id, date, start_min, status, patient_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := base.Conn(ctx, r.pool).QueryRow(
		ctx, query,
		slot.DoctorID,
		slot.Date,
		slot.StartMin,
		slot.Status,
		slot.PatientID,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID returns the slot or nil when it does not exist.
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotCols + ` FROM slots WHERE id = $1`

	slot, err := scanSlot(base.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// GetByIDForUpdate loads the slot under a row lock held until the enclosing
// transaction ends. Returns nil when the row does not exist.
func (r *SlotRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotCols + ` FROM slots WHERE id = $1 FOR UPDATE`

	slot, err := scanSlot(base.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get slot for update: %w", err)
	}

	return slot, nil
}

// GetByKeyForUpdate loads and locks the slot at the (doctor, date, time)
// identity. Returns nil when no slot exists at that key.
func (r *SlotRepository) GetByKeyForUpdate(ctx context.Context, doctorID int64, date time.Time, startMin int) (*model.Slot, error) {
	query := `
		SELECT ` + slotCols + `
		FROM slots
		WHERE doctor_id = $1 AND date = $2 AND start_min = $3
		FOR UPDATE
	`

	slot, err := scanSlot(base.Conn(ctx, r.pool).QueryRow(ctx, query, doctorID, date, startMin))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get slot by key: %w", err)
	}

	return slot, nil
}

// Exists checks whether a slot occupies the (doctor, date, time) identity,
// regardless of status.
func (r *SlotRepository) Exists(ctx context.Context, doctorID int64, date time.Time, startMin int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM slots
			WHERE doctor_id = $1 AND date = $2 AND start_min = $3
		)
	`

	var exists bool
	err := base.Conn(ctx, r.pool).QueryRow(ctx, query, doctorID, date, startMin).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slot exists: %w", err)
	}

	return exists, nil
}

// ListByDoctorDateForUpdate loads and locks every slot of a doctor on one
// date, for the absence cascade.
func (r *SlotRepository) ListByDoctorDateForUpdate(ctx context.Context, doctorID int64, date time.Time) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotCols + `
		FROM slots
		WHERE doctor_id = $1 AND date = $2
		ORDER BY start_min
		FOR UPDATE
	`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("list slots by doctor and date: %w", err)
	}

	return collectSlots(rows)
}

// ListByDoctor returns a doctor's slots ordered by date then time. From/to
// bound the date range when non-zero.
func (r *SlotRepository) ListByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotCols + `
		FROM slots
		WHERE doctor_id = $1
		  AND ($2::date IS NULL OR date >= $2)
		  AND ($3::date IS NULL OR date <= $3)
		ORDER BY date, start_min
	`

	var fromArg, toArg any
	if !from.IsZero() {
		fromArg = from
	}
	if !to.IsZero() {
		toArg = to
	}

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query, doctorID, fromArg, toArg)
	if err != nil {
		return nil, fmt.Errorf("list slots by doctor: %w", err)
	}

	return collectSlots(rows)
}

// Update persists every mutable field of the slot.
func (r *SlotRepository) Update(ctx context.Context, slot *model.Slot) error {
	query := `
		UPDATE slots
		SET status = $2, patient_id = $3, visit_type = $4, patient_name = $5,
			patient_age = $6, patient_gender = $7, patient_notes = $8,
			attachment_ref = $9, updated_at = now()
		WHERE id = $1
	`

	tag, err := base.Conn(ctx, r.pool).Exec(
		ctx, query,
		slot.ID,
		slot.Status,
		slot.PatientID,
		slot.VisitType,
		slot.PatientName,
		slot.PatientAge,
		slot.PatientGender,
		slot.PatientNotes,
		slot.AttachmentRef,
	)
	if err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update slot %d: no row", slot.ID)
	}

	return nil
}

// Delete removes the slot row outright.
func (r *SlotRepository) Delete(ctx context.Context, id int64) error {
	tag, err := base.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete slot %d: no row", id)
	}

	return nil
}

// GetBookedByPatient returns the patient's booked slot or nil.
func (r *SlotRepository) GetBookedByPatient(ctx context.Context, slotID, patientID int64) (*model.Slot, error) {
	query := `
		SELECT ` + slotCols + `
		FROM slots
		WHERE id = $1 AND patient_id = $2 AND status = 'booked'
		FOR UPDATE
	`

	slot, err := scanSlot(base.Conn(ctx, r.pool).QueryRow(ctx, query, slotID, patientID))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get booked slot: %w", err)
	}

	return slot, nil
}

// ListBookedByDoctor returns a doctor's booked visits with the patient
// username attached, ordered by date then time.
func (r *SlotRepository) ListBookedByDoctor(ctx context.Context, doctorID int64) ([]*model.DoctorAppointment, error) {
	query := `
		SELECT ` + prefixedSlotCols("s") + `, p.username
		FROM slots s
		LEFT JOIN users p ON p.id = s.patient_id
		WHERE s.doctor_id = $1 AND s.status = 'booked'
		ORDER BY s.date, s.start_min
	`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list booked slots by doctor: %w", err)
	}
	defer rows.Close()

	var appts []*model.DoctorAppointment
	for rows.Next() {
		var a model.DoctorAppointment
		err := rows.Scan(
			&a.Slot.ID,
			&a.Slot.DoctorID,
			&a.Slot.Date,
			&a.Slot.StartMin,
			&a.Slot.Status,
			&a.Slot.PatientID,
			&a.Slot.VisitType,
			&a.Slot.PatientName,
			&a.Slot.PatientAge,
			&a.Slot.PatientGender,
			&a.Slot.PatientNotes,
			&a.Slot.AttachmentRef,
			&a.Slot.CreatedAt,
			&a.Slot.UpdatedAt,
			&a.PatientUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("scan doctor appointment: %w", err)
		}
		appts = append(appts, &a)
	}

	return appts, rows.Err()
}

// ListByPatient returns a patient's booked and cancelled visits with the
// doctor's public info, newest first.
func (r *SlotRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.PatientAppointment, error) {
	query := `
		SELECT ` + prefixedSlotCols("s") + `, d.id, d.name, d.specialization
		FROM slots s
		JOIN users d ON d.id = s.doctor_id
		WHERE s.patient_id = $1 AND s.status IN ('booked', 'cancelled')
		ORDER BY s.date DESC, s.start_min DESC
	`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("list slots by patient: %w", err)
	}
	defer rows.Close()

	var appts []*model.PatientAppointment
	for rows.Next() {
		var a model.PatientAppointment
		a.Doctor = &model.DoctorPublic{}
		err := rows.Scan(
			&a.Slot.ID,
			&a.Slot.DoctorID,
			&a.Slot.Date,
			&a.Slot.StartMin,
			&a.Slot.Status,
			&a.Slot.PatientID,
			&a.Slot.VisitType,
			&a.Slot.PatientName,
			&a.Slot.PatientAge,
			&a.Slot.PatientGender,
			&a.Slot.PatientNotes,
			&a.Slot.AttachmentRef,
			&a.Slot.CreatedAt,
			&a.Slot.UpdatedAt,
			&a.Doctor.ID,
			&a.Doctor.Name,
			&a.Doctor.Specialization,
		)
		if err != nil {
			return nil, fmt.Errorf("scan patient appointment: %w", err)
		}
		appts = append(appts, &a)
	}

	return appts, rows.Err()
}

// HasBookedVisit checks whether the patient has a booked slot with the
// doctor, the precondition for rating them.
func (r *SlotRepository) HasBookedVisit(ctx context.Context, doctorID, patientID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM slots
			WHERE doctor_id = $1 AND patient_id = $2 AND status = 'booked'
		)
	`

	var exists bool
	err := base.Conn(ctx, r.pool).QueryRow(ctx, query, doctorID, patientID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check booked visit: %w", err)
	}

	return exists, nil
}

func prefixedSlotCols(alias string) string {
	return alias + `.id, ` + alias + `.doctor_id, ` + alias + `.date, ` +
		alias + `.start_min, ` + alias + `.status, ` + alias + `.patient_id, ` +
		alias + `.visit_type, ` + alias + `.patient_name, ` + alias + `.patient_age, ` +
		alias + `.patient_gender, ` + alias + `.patient_notes, ` + alias + `.attachment_ref, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}
