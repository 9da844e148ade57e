package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"address-gateway/core/logger"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"
)

// ServiceError is implemented by errors that know their own envelope.
type ServiceError interface {
	ToServiceError() *goerrors.Error
}

// Mapper turns an error it recognizes into an envelope, or returns nil.
type Mapper func(error) *goerrors.Error

// ErrorResponse is the JSON body of every error answered by the server.
type ErrorResponse struct {
	Category string `json:"category"`
	Code     int    `json:"code"`
	TextCode string `json:"text_code"`
	Message  string `json:"message"`
	RayID    string `json:"ray_id,omitempty"`
}

// ToServiceError converts err into an error envelope. Mappers are consulted
// after typed errors and before Fiber errors.
func ToServiceError(err error, mappers ...Mapper) *goerrors.Error {
	var typed ServiceError
	if errors.As(err, &typed) {
		return ensureEnvelope(typed.ToServiceError())
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return ensureEnvelope(rich)
	}

	for _, m := range mappers {
		if mapped := m(err); mapped != nil {
			return ensureEnvelope(mapped)
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return ensureEnvelope(goerrors.New(fe.Message, categoryFor(fe.Code)).WithCode(fe.Code))
	}

	return ensureEnvelope(goerrors.New("", goerrors.CategoryInternal))
}

// ErrorHandler returns a Fiber error handler writing ErrorResponse bodies.
func ErrorHandler(log *zap.Logger, mappers ...Mapper) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		env := ToServiceError(err, mappers...)

		l := logger.WithRayID(log, c).With(
			zap.Int("status", env.Code),
			zap.String("text_code", env.TextCode),
			zap.Error(err),
		)
		if env.Code >= http.StatusInternalServerError {
			l.Error("Request failed")
		} else {
			l.Warn("Request rejected")
		}

		rid, _ := c.Locals(logger.RayIDKey).(string)
		return c.Status(env.Code).JSON(ErrorResponse{
			Category: fmt.Sprintf("%s", env.Category),
			Code:     env.Code,
			TextCode: env.TextCode,
			Message:  env.Message,
			RayID:    rid,
		})
	}
}

func ensureEnvelope(err *goerrors.Error) *goerrors.Error {
	if err.Code == 0 {
		err.Code = statusFor(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = textCodeFor(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func statusFor(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func textCodeFor(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return "BAD_INPUT"
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return "PERMISSION_DENIED"
	case goerrors.CategoryNotFound:
		return "NOT_FOUND"
	case goerrors.CategoryConflict:
		return "CONFLICT"
	case goerrors.CategoryRateLimit:
		return "RATE_LIMITED"
	case goerrors.CategoryExternal:
		return "UPSTREAM_FAILED"
	default:
		return "INTERNAL_ERROR"
	}
}

func categoryFor(status int) goerrors.Category {
	switch {
	case status == http.StatusNotFound:
		return goerrors.CategoryNotFound
	case status == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case status == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case status == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	case status >= 400 && status < 500:
		return goerrors.CategoryBadInput
	default:
		return goerrors.CategoryInternal
	}
}
