package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CharlesTPAquino/RegistroMM/internal/repository"
	"github.com/CharlesTPAquino/RegistroMM/internal/transport/http/middleware"
	"github.com/CharlesTPAquino/RegistroMM/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError resolves the provided error against the typed domain
// errors first, then the provided sentinel cases, and falls back to a generic
// response. Internal error details never reach the client.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	var validationErr *usecase.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   validationErr.Message,
			Field:   validationErr.Field,
			Code:    validationErr.Code,
			TraceID: middleware.GetTraceID(c),
		})
		return
	}

	var conflictErr *repository.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   conflictErr.Field + " already taken",
			Field:   conflictErr.Field,
			Code:    "conflict",
			TraceID: middleware.GetTraceID(c),
		})
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}
