package postgres

import (
	"context"
	"fmt"

	"patient-service/internal/domain/patient"
	apperrors "patient-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const patientColumns = `id, full_name, age, gender, address,
		diagnosis_description, diagnosis_time, image_urls, created_at, updated_at`

type PatientRepository struct {
	db *DB
}

func NewPatientRepository(db *DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func scanPatient(row pgx.Row) (*patient.Record, error) {
	rec := &patient.Record{}
	err := row.Scan(
		&rec.ID,
		&rec.FullName,
		&rec.Age,
		&rec.Gender,
		&rec.Address,
		&rec.Diagnosis.Description,
		&rec.Diagnosis.Time,
		&rec.Diagnosis.ImageURLs,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if rec.Diagnosis.ImageURLs == nil {
		rec.Diagnosis.ImageURLs = []string{}
	}
	return rec, nil
}

func (r *PatientRepository) Create(ctx context.Context, input patient.CreateRecordInput) (*patient.Record, error) {
	query := `
		INSERT INTO patients (full_name, age, gender, address, diagnosis_description, diagnosis_time, image_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + patientColumns

	urls := input.ImageURLs
	if urls == nil {
		urls = []string{}
	}

	rec, err := scanPatient(r.db.Pool.QueryRow(ctx, query,
		input.FullName,
		input.Age,
		input.Gender,
		input.Address,
		input.DiagnosisDescription,
		input.DiagnosisTime,
		urls,
	))

	if err != nil {
		return nil, apperrors.Storage("failed to create patient record", err)
	}

	return rec, nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Record, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	rec, err := scanPatient(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errPatientNotFound)
		}
		return nil, apperrors.Storage("failed to get patient record", err)
	}

	return rec, nil
}

// List returns all records in insertion order.
func (r *PatientRepository) List(ctx context.Context) ([]*patient.Record, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at, id`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.Storage("failed to list patient records", err)
	}
	defer rows.Close()

	records := []*patient.Record{}
	for rows.Next() {
		rec, err := scanPatient(rows)
		if err != nil {
			return nil, apperrors.Storage("failed to scan patient record", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("failed to iterate patient records", err)
	}

	return records, nil
}

// Update overwrites only the fields set in input and returns the resulting
// record. Concurrent updates are last-write-wins; there is no version check.
func (r *PatientRepository) Update(ctx context.Context, id uuid.UUID, input patient.UpdateRecordInput) (*patient.Record, error) {
	query := "UPDATE patients SET updated_at = NOW()"
	args := []interface{}{id}
	argCount := 1

	set := func(column string, value interface{}) {
		argCount++
		query += fmt.Sprintf(", %s = $%d", column, argCount)
		args = append(args, value)
	}

	if input.FullName != nil {
		set("full_name", *input.FullName)
	}
	if input.Age != nil {
		set("age", *input.Age)
	}
	if input.Gender != nil {
		set("gender", *input.Gender)
	}
	if input.Address != nil {
		set("address", *input.Address)
	}
	if input.DiagnosisDescription != nil {
		set("diagnosis_description", *input.DiagnosisDescription)
	}
	if input.DiagnosisTime != nil {
		set("diagnosis_time", *input.DiagnosisTime)
	}
	if input.ImageURLs != nil {
		set("image_urls", input.ImageURLs)
	}

	query += " WHERE id = $1 RETURNING " + patientColumns

	rec, err := scanPatient(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errPatientNotFound)
		}
		return nil, apperrors.Storage("failed to update patient record", err)
	}

	return rec, nil
}

func (r *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := "DELETE FROM patients WHERE id = $1"

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return apperrors.Storage("failed to delete patient record", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errPatientNotFound)
	}

	return nil
}
