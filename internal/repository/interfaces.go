package repository

import (
	"context"

	"patient-service/internal/domain/patient"
	"patient-service/internal/domain/user"

	"github.com/google/uuid"
)

// Repository interfaces that concrete implementations must satisfy.

type UserRepository interface {
	Create(ctx context.Context, input user.CreateUserInput) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type PatientRepository interface {
	Create(ctx context.Context, input patient.CreateRecordInput) (*patient.Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Record, error)
	List(ctx context.Context) ([]*patient.Record, error)
	Update(ctx context.Context, id uuid.UUID, input patient.UpdateRecordInput) (*patient.Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
