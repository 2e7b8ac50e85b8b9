package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"patient-service/internal/auth"
	"patient-service/internal/config"
	"patient-service/internal/domain/patient"
	"patient-service/internal/domain/user"
	apperrors "patient-service/pkg/errors"
	"patient-service/pkg/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserRepo struct {
	byEmail map[string]*user.User
}

func (m *memUserRepo) Create(_ context.Context, input user.CreateUserInput) (*user.User, error) {
	if _, exists := m.byEmail[input.Email]; exists {
		return nil, apperrors.Conflict("email already registered")
	}
	now := time.Now().UTC()
	u := &user.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.byEmail[input.Email] = u
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return u, nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

type memPatientRepo struct {
	records map[uuid.UUID]*patient.Record
}

func (m *memPatientRepo) Create(_ context.Context, input patient.CreateRecordInput) (*patient.Record, error) {
	urls := input.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	now := time.Now().UTC()
	rec := &patient.Record{
		ID:       uuid.New(),
		FullName: input.FullName,
		Age:      input.Age,
		Gender:   input.Gender,
		Address:  input.Address,
		Diagnosis: patient.Diagnosis{
			Description: input.DiagnosisDescription,
			Time:        input.DiagnosisTime,
			ImageURLs:   urls,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, apperrors.NotFound("patient record not found")
	}
	return rec, nil
}

func (m *memPatientRepo) List(_ context.Context) ([]*patient.Record, error) {
	out := []*patient.Record{}
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

func (m *memPatientRepo) Update(_ context.Context, id uuid.UUID, input patient.UpdateRecordInput) (*patient.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, apperrors.NotFound("patient record not found")
	}
	if input.FullName != nil {
		rec.FullName = *input.FullName
	}
	if input.Age != nil {
		rec.Age = *input.Age
	}
	if input.Address != nil {
		rec.Address = *input.Address
	}
	if input.ImageURLs != nil {
		rec.Diagnosis.ImageURLs = input.ImageURLs
	}
	return rec, nil
}

func (m *memPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return apperrors.NotFound("patient record not found")
	}
	delete(m.records, id)
	return nil
}

type memSink struct{}

func (memSink) Upload(_ context.Context, fileName, _, contentType string, body io.Reader) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", apperrors.UploadRejected("please upload image only")
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	return "https://bucket.s3.test/" + fileName, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:         "0",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		JWT: config.JWTConfig{
			Secret:         "0123456789abcdef0123456789abcdef",
			ExpiryDuration: time.Hour,
		},
		App: config.AppConfig{
			MaxUploadSize:  2 << 20,
			MaxAttachments: 10,
		},
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryDuration)

	return NewServer(&ServerDependencies{
		Config:         cfg,
		UserRepo:       &memUserRepo{byEmail: map[string]*user.User{}},
		PatientRepo:    &memPatientRepo{records: map[uuid.UUID]*patient.Record{}},
		AttachmentSink: memSink{},
		JWTService:     jwtService,
		AuthMiddleware: auth.NewMiddleware(jwtService),
		Metrics:        metrics.NewCollector(),
		Logger:         zerolog.Nop(),
	})
}

func doJSON(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func signUpAndSignIn(t *testing.T, s *Server) string {
	t.Helper()

	rec := doJSON(s, stdhttp.MethodPost, "/auth/signup",
		`{"email":"user@example.com","password":"secret123"}`)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(s, stdhttp.MethodPost, "/auth/signin",
		`{"email":"user@example.com","password":"secret123"}`)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.UserID)
	return resp.Token
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusOK, rec.Code)
}

func TestServer_PatientsRequireToken(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/patients", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Not authenticated"}`, rec.Body.String())
}

func TestServer_PatientsRejectBadToken(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/patients", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid or expired token"}`, rec.Body.String())
}

func TestServer_SignUpSignInAndCRUD(t *testing.T) {
	s := newTestServer(t)
	token := signUpAndSignIn(t, s)

	// Create a record with one attachment.
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range map[string]string{
		"fullName":             "Jane Doe",
		"age":                  "34",
		"gender":               "female",
		"address":              "12 Example Street",
		"diagnosisDescription": "Seasonal allergies",
		"diagnosisTime":        "2026-08-30T10:00:00Z",
	} {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="diagnosisImageUrl"; filename="scan.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(stdhttp.MethodPost, "/patients", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())

	var created struct {
		Message string          `json:"message"`
		Data    *patient.Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.Data)
	assert.Equal(t, "Patient record has been created", created.Message)
	assert.Equal(t, []string{"https://bucket.s3.test/scan.png"}, created.Data.Diagnosis.ImageURLs)

	id := created.Data.ID.String()

	// Read it back.
	req = httptest.NewRequest(stdhttp.MethodGet, "/patients/"+id, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	// Partial update.
	var updateBuf bytes.Buffer
	updateWriter := multipart.NewWriter(&updateBuf)
	require.NoError(t, updateWriter.WriteField("address", "99 New Avenue"))
	require.NoError(t, updateWriter.Close())

	req = httptest.NewRequest(stdhttp.MethodPut, "/patients/edit/"+id, &updateBuf)
	req.Header.Set(echo.HeaderContentType, updateWriter.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())

	var updated struct {
		Data *patient.Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.NotNil(t, updated.Data)
	assert.Equal(t, "99 New Avenue", updated.Data.Address)
	assert.Equal(t, "Jane Doe", updated.Data.FullName)

	// Delete, then confirm it is gone.
	req = httptest.NewRequest(stdhttp.MethodDelete, "/patients/"+id, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Patient record has been deleted"}`, rec.Body.String())

	req = httptest.NewRequest(stdhttp.MethodGet, "/patients/"+id, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

func TestServer_Me(t *testing.T) {
	s := newTestServer(t)
	token := signUpAndSignIn(t, s)

	req := httptest.NewRequest(stdhttp.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	var resp struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user@example.com", resp.Email)
	assert.NotEmpty(t, resp.ID)

	req = httptest.NewRequest(stdhttp.MethodGet, "/auth/me", nil)
	rec = httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
}

func TestServer_BodyLimitFromConfig(t *testing.T) {
	s := newTestServer(t)

	oversized := bytes.Repeat([]byte("a"), 3<<20)
	req := httptest.NewRequest(stdhttp.MethodPost, "/auth/signup", bytes.NewReader(oversized))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusRequestEntityTooLarge, rec.Code)
}

func TestServer_AttachmentCountBound(t *testing.T) {
	s := newTestServer(t)
	token := signUpAndSignIn(t, s)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range map[string]string{
		"fullName":             "Jane Doe",
		"age":                  "34",
		"gender":               "female",
		"address":              "12 Example Street",
		"diagnosisDescription": "Seasonal allergies",
		"diagnosisTime":        "2026-08-30T10:00:00Z",
	} {
		require.NoError(t, writer.WriteField(key, value))
	}
	for i := 0; i < 11; i++ {
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {fmt.Sprintf(`form-data; name="diagnosisImageUrl"; filename="scan-%d.png"`, i)},
			"Content-Type":        {"image/png"},
		})
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(stdhttp.MethodPost, "/patients", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"message":"a maximum of 10 attachments is allowed"}`, rec.Body.String())
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t)

	// Preflight.
	req := httptest.NewRequest(stdhttp.MethodOptions, "/patients", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, stdhttp.MethodGet)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	// Simple cross-origin request.
	req = httptest.NewRequest(stdhttp.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
	rec = httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestServer_DuplicateSignUp(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(s, stdhttp.MethodPost, "/auth/signup",
		`{"email":"user@example.com","password":"secret123"}`)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = doJSON(s, stdhttp.MethodPost, "/auth/signup",
		`{"email":"user@example.com","password":"secret123"}`)
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"message":"Email already registered, please use another email"}`, rec.Body.String())
}

func TestServer_UnknownRoute(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "message")
}
