package handlerUtil

import (
	"HospitalKiosk/internal/api/kiosk"
	"HospitalKiosk/internal/api/proxy"
	"HospitalKiosk/internal/api/staff"
	"HospitalKiosk/pkg/log"
	"HospitalKiosk/pkg/response"
	"context"
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// errorCodes gives clients a stable identifier for the errors they branch on.
var errorCodes = []struct {
	err  error
	code string
}{
	{kiosk.ErrSessionNotFound, "SESSION_NOT_FOUND"},
	{kiosk.ErrSessionLimit, "SESSION_LIMIT"},
	{kiosk.ErrTurnInProgress, "TURN_IN_PROGRESS"},
	{kiosk.ErrTurnCanceled, "TURN_CANCELED"},
	{kiosk.ErrInvalidService, "INVALID_SERVICE"},
	{kiosk.ErrInvalidResetTarget, "INVALID_RESET_TARGET"},
	{kiosk.ErrInvalidCommand, "INVALID_COMMAND"},
	{kiosk.ErrAudioRequired, "AUDIO_REQUIRED"},
	{kiosk.ErrInvalidAudio, "INVALID_AUDIO"},
	{kiosk.ErrEscalationNotFound, "ESCALATION_NOT_FOUND"},
	{kiosk.ErrEscalationResolved, "ESCALATION_RESOLVED"},
	{proxy.ErrAudioRefRequired, "AUDIO_REF_REQUIRED"},
	{proxy.ErrAudioNotFound, "AUDIO_NOT_FOUND"},
	{proxy.ErrAudioUnavailable, "AUDIO_UNAVAILABLE"},
	{proxy.ErrFileRequired, "FILE_REQUIRED"},
	{staff.ErrInvalidCredentials, "INVALID_CREDENTIALS"},
	{staff.ErrTooManyAttempts, "TOO_MANY_ATTEMPTS"},
	{staff.ErrLoginUnavailable, "LOGIN_UNAVAILABLE"},
	{staff.ErrRecordsUnavailable, "RECORDS_UNAVAILABLE"},
}

func CodeOf(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(ErrorResponse{
			Error: respErr.Error(),
			Code:  CodeOf(err),
		})
	}

	if errors.Is(err, context.DeadlineExceeded) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation timed out")
		return h.HandleRequestTimeout(c)
	}

	traceID := log.ErrorWithTraceID(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}, "Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "Internal server error",
		Code:    "INTERNAL_ERROR",
		TraceID: traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(ErrorResponse{
		Error: utils.StatusMessage(fiber.StatusRequestTimeout),
		Code:  "REQUEST_TIMEOUT",
	})
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
