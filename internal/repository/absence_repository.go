package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medvisit/scheduler/internal/model"
	"github.com/medvisit/scheduler/internal/repository/base"
)

type AbsenceRepository struct {
	pool *pgxpool.Pool
}

func NewAbsenceRepository(pool *pgxpool.Pool) *AbsenceRepository {
	return &AbsenceRepository{pool: pool}
}

// Create inserts an absence row.
func (r *AbsenceRepository) Create(ctx context.Context, absence *model.Absence) error {
	query := `
		INSERT INTO absences (doctor_id, date, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := base.Conn(ctx, r.pool).QueryRow(
		ctx, query,
		absence.DoctorID,
		absence.Date,
		absence.Reason,
	).Scan(&absence.ID, &absence.CreatedAt)

	if err != nil {
		return fmt.Errorf("create absence: %w", err)
	}

	return nil
}

// ExistsForDate checks whether the doctor has any absence on the date.
func (r *AbsenceRepository) ExistsForDate(ctx context.Context, doctorID int64, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM absences
			WHERE doctor_id = $1 AND date = $2
		)
	`

	var exists bool
	err := base.Conn(ctx, r.pool).QueryRow(ctx, query, doctorID, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check absence exists: %w", err)
	}

	return exists, nil
}

// ListByDoctor returns a doctor's absences, newest date first.
func (r *AbsenceRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Absence, error) {
	query := `
		SELECT id, doctor_id, date, reason, created_at
		FROM absences
		WHERE doctor_id = $1
		ORDER BY date DESC
	`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list absences by doctor: %w", err)
	}
	defer rows.Close()

	var absences []*model.Absence
	for rows.Next() {
		var a model.Absence
		if err := rows.Scan(&a.ID, &a.DoctorID, &a.Date, &a.Reason, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan absence: %w", err)
		}
		absences = append(absences, &a)
	}

	return absences, rows.Err()
}
