package http

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "patient-service/pkg/errors"

	"github.com/labstack/echo/v4"
)

// CustomHTTPErrorHandler handles errors that escape handlers and middleware.
// It maps sentinel errors to HTTP status codes, sanitizes internal errors,
// and always renders the JSON {message} shape the API promises.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	} else {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			code = http.StatusNotFound
			message = "Resource not found"
		case errors.Is(err, apperrors.ErrUnauthorized):
			code = http.StatusUnauthorized
			message = "Unauthorized"
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			code = http.StatusUnauthorized
			message = "Invalid credentials"
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrUploadRejected):
			code = http.StatusUnprocessableEntity
			message = "Validation error"
		case errors.Is(err, apperrors.ErrConflict):
			// The API contract reports duplicate resources as 422.
			code = http.StatusUnprocessableEntity
			message = "Resource already exists"
		case errors.Is(err, apperrors.ErrBadRequest):
			code = http.StatusBadRequest
			message = "Bad request"
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if code < 500 {
				message = appErr.Message
			}
		}
	}

	if code >= 500 {
		c.Logger().Errorf("request failed: status=%d err=%v", code, err)
		message = "Internal server error"
	}

	if err := c.JSON(code, map[string]string{"message": message}); err != nil {
		c.Logger().Error(err)
	}
}
