package patient

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is one of the two accepted values.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Diagnosis is the embedded sub-record describing a medical finding.
// ImageURLs is ordered by upload order and may be empty.
type Diagnosis struct {
	Description string    `json:"description"`
	Time        time.Time `json:"time"`
	ImageURLs   []string  `json:"imageUrls"`
}

type Record struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	Age       int       `json:"age"`
	Gender    Gender    `json:"gender"`
	Address   string    `json:"address"`
	Diagnosis Diagnosis `json:"diagnosis"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateRecordInput struct {
	FullName             string
	Age                  int
	Gender               Gender
	Address              string
	DiagnosisDescription string
	DiagnosisTime        time.Time
	ImageURLs            []string
}

// UpdateRecordInput carries a partial update. A nil field means the stored
// value is kept; a non-nil field overwrites it. ImageURLs, when non-nil,
// replaces the whole stored list rather than merging into it.
type UpdateRecordInput struct {
	FullName             *string
	Age                  *int
	Gender               *Gender
	Address              *string
	DiagnosisDescription *string
	DiagnosisTime        *time.Time
	ImageURLs            []string
}
