package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medvisit/scheduler/internal/model"
	"github.com/medvisit/scheduler/internal/repository/base"
)

type RatingRepository struct {
	pool *pgxpool.Pool
}

func NewRatingRepository(pool *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// Create inserts a rating row.
func (r *RatingRepository) Create(ctx context.Context, rating *model.Rating) error {
	query := `
		INSERT INTO ratings (doctor_id, patient_id, stars, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := base.Conn(ctx, r.pool).QueryRow(
		ctx, query,
		rating.DoctorID,
		rating.PatientID,
		rating.Stars,
		rating.Comment,
	).Scan(&rating.ID, &rating.CreatedAt)

	if err != nil {
		return fmt.Errorf("create rating: %w", err)
	}

	return nil
}

// ExistsForPair checks whether the patient already rated the doctor.
func (r *RatingRepository) ExistsForPair(ctx context.Context, doctorID, patientID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM ratings
			WHERE doctor_id = $1 AND patient_id = $2
		)
	`

	var exists bool
	err := base.Conn(ctx, r.pool).QueryRow(ctx, query, doctorID, patientID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check rating exists: %w", err)
	}

	return exists, nil
}

// ListByDoctor returns a doctor's ratings with the authoring patient's
// username.
func (r *RatingRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]*model.Rating, error) {
	query := `
		SELECT r.id, r.doctor_id, r.patient_id, r.stars, r.comment, r.reply, r.created_at, p.username
		FROM ratings r
		JOIN users p ON p.id = r.patient_id
		WHERE r.doctor_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list ratings by doctor: %w", err)
	}
	defer rows.Close()

	var ratings []*model.Rating
	for rows.Next() {
		var rt model.Rating
		rt.Patient = &model.User{}
		err := rows.Scan(&rt.ID, &rt.DoctorID, &rt.PatientID, &rt.Stars, &rt.Comment, &rt.Reply, &rt.CreatedAt, &rt.Patient.Username)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, &rt)
	}

	return ratings, rows.Err()
}

// ListByPatient returns the patient's own ratings with doctor info.
func (r *RatingRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.Rating, error) {
	query := `
		SELECT r.id, r.doctor_id, r.patient_id, r.stars, r.comment, r.reply, r.created_at,
			d.id, d.name, d.specialization
		FROM ratings r
		JOIN users d ON d.id = r.doctor_id
		WHERE r.patient_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("list ratings by patient: %w", err)
	}
	defer rows.Close()

	var ratings []*model.Rating
	for rows.Next() {
		var rt model.Rating
		rt.Doctor = &model.DoctorPublic{}
		err := rows.Scan(&rt.ID, &rt.DoctorID, &rt.PatientID, &rt.Stars, &rt.Comment, &rt.Reply, &rt.CreatedAt,
			&rt.Doctor.ID, &rt.Doctor.Name, &rt.Doctor.Specialization)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, &rt)
	}

	return ratings, rows.Err()
}

// ListAll returns every rating with both parties attached, newest first.
func (r *RatingRepository) ListAll(ctx context.Context) ([]*model.Rating, error) {
	query := `
		SELECT r.id, r.doctor_id, r.patient_id, r.stars, r.comment, r.reply, r.created_at,
			d.id, d.name, d.specialization, p.name, p.username
		FROM ratings r
		JOIN users d ON d.id = r.doctor_id
		JOIN users p ON p.id = r.patient_id
		ORDER BY r.created_at DESC
	`

	rows, err := base.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*model.Rating
	for rows.Next() {
		var rt model.Rating
		rt.Doctor = &model.DoctorPublic{}
		rt.Patient = &model.User{}
		err := rows.Scan(&rt.ID, &rt.DoctorID, &rt.PatientID, &rt.Stars, &rt.Comment, &rt.Reply, &rt.CreatedAt,
			&rt.Doctor.ID, &rt.Doctor.Name, &rt.Doctor.Specialization, &rt.Patient.Name, &rt.Patient.Username)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, &rt)
	}

	return ratings, rows.Err()
}

// Delete removes a rating and reports whether it existed.
func (r *RatingRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := base.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM ratings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete rating: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
