package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"patient-service/internal/auth"
	"patient-service/internal/domain/user"
	apperrors "patient-service/pkg/errors"
	"patient-service/pkg/password"
	"patient-service/pkg/validator"

	"github.com/labstack/echo/v4"
)

// Pre-computed bcrypt hash (cost 12) used to equalize timing on failed lookups.
// The actual plaintext is irrelevant — this just ensures constant-time response.
const dummyBcryptHash = "$2a$12$dWR5CQpS4zNHLavLSIr4o.P6QDQEUJKv7mJ7WekUHHqyRSRMJzH0S"

type AuthHandler struct {
	users  UserRepository
	tokens TokenGenerator
}

func NewAuthHandler(users UserRepository, tokens TokenGenerator) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
	}
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResult is an account as returned to the caller. The password hash
// never leaves the server.
type UserResult struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SignUpResponse struct {
	Message string     `json:"message"`
	Result  UserResult `json:"result"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.Email(req.Email); err != nil {
		return respondError(c, http.StatusUnprocessableEntity, msgInvalidEmail)
	}

	if err := validator.Password(req.Password); err != nil {
		return respondError(c, http.StatusUnprocessableEntity, err.Error())
	}

	passwordHash, err := password.Hash(req.Password)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgPasswordProcessFail)
	}

	u, err := h.users.Create(c.Request().Context(), user.CreateUserInput{
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return respondError(c, http.StatusUnprocessableEntity, msgEmailTaken)
		}
		return respondError(c, http.StatusInternalServerError, msgCreateAccountFail)
	}

	return c.JSON(http.StatusOK, SignUpResponse{
		Message: msgUserCreated,
		Result: UserResult{
			ID:        u.ID.String(),
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		},
	})
}

// Me returns the account behind the presented bearer token.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, msgNotAuthenticated)
	}

	u, err := h.users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return respondError(c, http.StatusNotFound, msgUserNotFound)
		}
		return respondError(c, http.StatusInternalServerError, msgLookupUserFail)
	}

	return c.JSON(http.StatusOK, UserResult{
		ID:        u.ID.String(),
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	})
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	u, err := h.users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Run bcrypt against a dummy hash to prevent a timing oracle
			// that would leak which emails are registered.
			password.Verify(req.Password, dummyBcryptHash)
			return respondError(c, http.StatusUnauthorized, msgNoSuchUser)
		}
		return respondError(c, http.StatusInternalServerError, msgLookupUserFail)
	}

	if !password.Verify(req.Password, u.PasswordHash) {
		return respondError(c, http.StatusUnauthorized, msgWrongPassword)
	}

	token, err := h.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgGenerateTokenFail)
	}

	return c.JSON(http.StatusOK, SignInResponse{
		Token:  token,
		UserID: u.ID.String(),
	})
}
