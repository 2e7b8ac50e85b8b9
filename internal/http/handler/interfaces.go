package handler

import (
	"context"
	"io"

	"patient-service/internal/domain/patient"
	"patient-service/internal/domain/user"

	"github.com/google/uuid"
)

// Consumer-side interfaces defined by handlers
// Each interface contains only the methods needed by the specific handler

// AuthHandler interfaces
type UserRepository interface {
	Create(ctx context.Context, input user.CreateUserInput) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type TokenGenerator interface {
	Generate(userID uuid.UUID, email string) (string, error)
}

// PatientHandler interfaces
type PatientRepository interface {
	Create(ctx context.Context, input patient.CreateRecordInput) (*patient.Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Record, error)
	List(ctx context.Context) ([]*patient.Record, error)
	Update(ctx context.Context, id uuid.UUID, input patient.UpdateRecordInput) (*patient.Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AttachmentSink stores an uploaded file and returns its durable URL.
type AttachmentSink interface {
	Upload(ctx context.Context, fileName, author, contentType string, body io.Reader) (string, error)
}

type UploadMetrics interface {
	RecordUpload()
	RecordUploadRejected()
}
