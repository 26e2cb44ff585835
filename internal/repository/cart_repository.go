package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medvisit/scheduler/internal/model"
	"github.com/medvisit/scheduler/internal/repository/base"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Create persists a cart item alongside its slot's pending transition.
func (r *CartRepository) Create(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (patient_id, slot_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := base.Conn(ctx, r.pool).QueryRow(ctx, query, item.PatientID, item.SlotID).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("create cart item: %w", err)
	}

	return nil
}

// DeleteBySlot removes the patient's cart item for one slot and reports how
// many rows went away (zero means the hold did not exist).
func (r *CartRepository) DeleteBySlot(ctx context.Context, patientID, slotID int64) (int64, error) {
	query := `DELETE FROM cart_items WHERE patient_id = $1 AND slot_id = $2`

	tag, err := base.Conn(ctx, r.pool).Exec(ctx, query, patientID, slotID)
	if err != nil {
		return 0, fmt.Errorf("delete cart item: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteByPatient clears the patient's whole cart.
func (r *CartRepository) DeleteByPatient(ctx context.Context, patientID int64) error {
	query := `DELETE FROM cart_items WHERE patient_id = $1`

	if _, err := base.Conn(ctx, r.pool).Exec(ctx, query, patientID); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}

	return nil
}

// ListByPatient returns the patient's cart items ordered by slot id, so
// concurrent checkouts lock slot rows in a consistent order.
func (r *CartRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.CartItem, error) {
	query := `
		SELECT id, patient_id, slot_id, created_at
		FROM cart_items
		WHERE patient_id = $1
		ORDER BY slot_id
	`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var items []*model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ID, &item.PatientID, &item.SlotID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

// ListEntriesByPatient returns the patient's cart joined with slots and the
// owning doctors' public info, for display.
func (r *CartRepository) ListEntriesByPatient(ctx context.Context, patientID int64) ([]*model.CartEntry, error) {
	query := `
		SELECT ci.id, ci.patient_id, ci.slot_id, ci.created_at,
			` + prefixedSlotCols("s") + `,
			d.id, d.name, d.specialization
		FROM cart_items ci
		JOIN slots s ON s.id = ci.slot_id
		JOIN users d ON d.id = s.doctor_id
		WHERE ci.patient_id = $1
		ORDER BY s.date, s.start_min
	`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("list cart entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.CartEntry
	for rows.Next() {
		var e model.CartEntry
		e.Slot = &model.Slot{}
		e.Doctor = &model.DoctorPublic{}
		err := rows.Scan(
			&e.Item.ID,
			&e.Item.PatientID,
			&e.Item.SlotID,
			&e.Item.CreatedAt,
			&e.Slot.ID,
			&e.Slot.DoctorID,
			&e.Slot.Date,
			&e.Slot.StartMin,
			&e.Slot.Status,
			&e.Slot.PatientID,
			&e.Slot.VisitType,
			&e.Slot.PatientName,
			&e.Slot.PatientAge,
			&e.Slot.PatientGender,
			&e.Slot.PatientNotes,
			&e.Slot.AttachmentRef,
			&e.Slot.CreatedAt,
			&e.Slot.UpdatedAt,
			&e.Doctor.ID,
			&e.Doctor.Name,
			&e.Doctor.Specialization,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart entry: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// ExistsForSlot checks whether the patient currently holds the slot.
func (r *CartRepository) ExistsForSlot(ctx context.Context, patientID, slotID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM cart_items
			WHERE patient_id = $1 AND slot_id = $2
		)
	`

	var exists bool
	err := base.Conn(ctx, r.pool).QueryRow(ctx, query, patientID, slotID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check cart item exists: %w", err)
	}

	return exists, nil
}
