package handler

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"patient-service/internal/domain/patient"
	apperrors "patient-service/pkg/errors"
	"patient-service/pkg/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type PatientHandler struct {
	records        PatientRepository
	sink           AttachmentSink
	uploads        UploadMetrics
	maxAttachments int
}

func NewPatientHandler(records PatientRepository, sink AttachmentSink, uploads UploadMetrics, maxAttachments int) *PatientHandler {
	return &PatientHandler{
		records:        records,
		sink:           sink,
		uploads:        uploads,
		maxAttachments: maxAttachments,
	}
}

type PatientResponse struct {
	Message string          `json:"message"`
	Data    *patient.Record `json:"data"`
}

func (h *PatientHandler) List(c echo.Context) error {
	records, err := h.records.List(c.Request().Context())
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgListPatientsFail)
	}

	return c.JSON(http.StatusOK, records)
}

func (h *PatientHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusNotFound, msgPatientNotFound)
	}

	rec, err := h.records.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return respondError(c, http.StatusNotFound, msgPatientNotFound)
		}
		return respondError(c, http.StatusInternalServerError, msgGetPatientFail)
	}

	return c.JSON(http.StatusOK, rec)
}

func (h *PatientHandler) Create(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidMultipartForm)
	}

	input, verr := parseCreateForm(form)
	if verr != nil {
		return respondError(c, http.StatusUnprocessableEntity, verr.Error())
	}

	files := form.File[fieldDiagnosisImages]
	if len(files) > h.maxAttachments {
		return respondError(c, http.StatusUnprocessableEntity,
			fmt.Sprintf(msgTooManyAttachmentsFmt, h.maxAttachments))
	}

	urls, err := h.uploadAll(c.Request().Context(), files, input.FullName)
	if err != nil {
		return h.respondUploadError(c, err)
	}
	input.ImageURLs = urls

	rec, err := h.records.Create(c.Request().Context(), *input)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgCreatePatientFail)
	}

	return c.JSON(http.StatusOK, PatientResponse{
		Message: msgPatientCreated,
		Data:    rec,
	})
}

func (h *PatientHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusNotFound, msgPatientNotFound)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidMultipartForm)
	}

	input, verr := parseUpdateForm(form)
	if verr != nil {
		return respondError(c, http.StatusUnprocessableEntity, verr.Error())
	}

	if files := form.File[fieldDiagnosisImages]; len(files) > 0 {
		if len(files) > h.maxAttachments {
			return respondError(c, http.StatusUnprocessableEntity,
				fmt.Sprintf(msgTooManyAttachmentsFmt, h.maxAttachments))
		}

		author, err := h.uploadAuthor(c.Request().Context(), id, input.FullName)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return respondError(c, http.StatusNotFound, msgPatientNotFound)
			}
			return respondError(c, http.StatusInternalServerError, msgGetPatientFail)
		}

		urls, err := h.uploadAll(c.Request().Context(), files, author)
		if err != nil {
			return h.respondUploadError(c, err)
		}
		// New uploads replace the stored list wholesale.
		input.ImageURLs = urls
	}

	rec, err := h.records.Update(c.Request().Context(), id, *input)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return respondError(c, http.StatusNotFound, msgPatientNotFound)
		}
		return respondError(c, http.StatusInternalServerError, msgUpdatePatientFail)
	}

	return c.JSON(http.StatusOK, PatientResponse{
		Message: msgPatientUpdated,
		Data:    rec,
	})
}

func (h *PatientHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusNotFound, msgPatientNotFound)
	}

	if err := h.records.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return respondError(c, http.StatusNotFound, msgPatientNotFound)
		}
		return respondError(c, http.StatusInternalServerError, msgDeletePatientFail)
	}

	return respondMessage(c, http.StatusOK, msgPatientDeleted)
}

// uploadAll pushes every attachment through the sink, in arrival order,
// and collects the resulting URLs.
func (h *PatientHandler) uploadAll(ctx context.Context, files []*multipart.FileHeader, author string) ([]string, error) {
	urls := []string{}
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return nil, apperrors.InternalServer(msgStoreUploadFail, err)
		}

		url, err := h.sink.Upload(ctx, fh.Filename, author, fh.Header.Get(echo.HeaderContentType), src)
		src.Close()
		if err != nil {
			if errors.Is(err, apperrors.ErrUploadRejected) {
				h.uploads.RecordUploadRejected()
			}
			return nil, err
		}

		h.uploads.RecordUpload()
		urls = append(urls, url)
	}
	return urls, nil
}

// uploadAuthor resolves the naming hint for new attachments: the submitted
// fullName when present, otherwise the stored record's name.
func (h *PatientHandler) uploadAuthor(ctx context.Context, id uuid.UUID, fullName *string) (string, error) {
	if fullName != nil {
		return *fullName, nil
	}

	rec, err := h.records.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return rec.FullName, nil
}

func (h *PatientHandler) respondUploadError(c echo.Context, err error) error {
	var appErr *apperrors.AppError
	if errors.Is(err, apperrors.ErrUploadRejected) && errors.As(err, &appErr) {
		return respondError(c, http.StatusUnprocessableEntity, appErr.Message)
	}
	return respondError(c, http.StatusInternalServerError, msgStoreUploadFail)
}

// parseCreateForm validates that every required field is present and
// well-formed. Validation failures halt the request; nothing is persisted.
func parseCreateForm(form *multipart.Form) (*patient.CreateRecordInput, error) {
	input := &patient.CreateRecordInput{}

	fullName, ok := formValue(form, fieldFullName)
	if !ok {
		return nil, errors.New(msgIncompleteForm)
	}
	if err := validator.FullName(fullName); err != nil {
		return nil, err
	}
	input.FullName = fullName

	ageRaw, ok := formValue(form, fieldAge)
	if !ok {
		return nil, errors.New(msgIncompleteForm)
	}
	age, err := parseAge(ageRaw)
	if err != nil {
		return nil, err
	}
	input.Age = age

	genderRaw, ok := formValue(form, fieldGender)
	if !ok {
		return nil, errors.New(msgIncompleteForm)
	}
	gender, err := parseGender(genderRaw)
	if err != nil {
		return nil, err
	}
	input.Gender = gender

	address, ok := formValue(form, fieldAddress)
	if !ok {
		return nil, errors.New(msgIncompleteForm)
	}
	if err := validator.Address(address); err != nil {
		return nil, err
	}
	input.Address = address

	description, ok := formValue(form, fieldDiagnosisDescription)
	if !ok || description == "" {
		return nil, errors.New(msgIncompleteForm)
	}
	input.DiagnosisDescription = description

	timeRaw, ok := formValue(form, fieldDiagnosisTime)
	if !ok {
		return nil, errors.New(msgIncompleteForm)
	}
	diagnosisTime, err := parseDiagnosisTime(timeRaw)
	if err != nil {
		return nil, err
	}
	input.DiagnosisTime = diagnosisTime

	return input, nil
}

// parseUpdateForm builds a partial update keyed on form-field presence:
// a provided field overwrites the stored value even when it is zero-valued
// (age=0, empty address), an absent field keeps it.
func parseUpdateForm(form *multipart.Form) (*patient.UpdateRecordInput, error) {
	input := &patient.UpdateRecordInput{}

	if fullName, ok := formValue(form, fieldFullName); ok {
		if err := validator.FullName(fullName); err != nil {
			return nil, err
		}
		input.FullName = &fullName
	}

	if ageRaw, ok := formValue(form, fieldAge); ok {
		age, err := parseAge(ageRaw)
		if err != nil {
			return nil, err
		}
		input.Age = &age
	}

	if genderRaw, ok := formValue(form, fieldGender); ok {
		gender, err := parseGender(genderRaw)
		if err != nil {
			return nil, err
		}
		input.Gender = &gender
	}

	if address, ok := formValue(form, fieldAddress); ok {
		if err := validator.Address(address); err != nil {
			return nil, err
		}
		input.Address = &address
	}

	if description, ok := formValue(form, fieldDiagnosisDescription); ok {
		if description == "" {
			return nil, errors.New(msgIncompleteForm)
		}
		input.DiagnosisDescription = &description
	}

	if timeRaw, ok := formValue(form, fieldDiagnosisTime); ok {
		diagnosisTime, err := parseDiagnosisTime(timeRaw)
		if err != nil {
			return nil, err
		}
		input.DiagnosisTime = &diagnosisTime
	}

	return input, nil
}

func parseAge(raw string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New(msgIncompleteForm)
	}
	if err := validator.Age(age); err != nil {
		return 0, err
	}
	return age, nil
}

func parseGender(raw string) (patient.Gender, error) {
	gender := patient.Gender(strings.ToLower(strings.TrimSpace(raw)))
	if !gender.Valid() {
		return "", errors.New(msgIncompleteForm)
	}
	return gender, nil
}

func parseDiagnosisTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, errors.New(msgIncompleteForm)
	}
	return t, nil
}
