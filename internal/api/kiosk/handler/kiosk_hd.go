package kioskHandler

import (
	"HospitalKiosk/internal/api/kiosk"
	contextPkg "HospitalKiosk/pkg/context"
	"HospitalKiosk/pkg/handlerUtil"
	"HospitalKiosk/pkg/log"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

// turnTimeout covers a full backend exchange plus speech synthesis.
const turnTimeout = 30 * time.Second

func (h *KioskHandler) CreateSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	session, err := h.kioskService.CreateSession(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_session")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, session)
	}
}

func (h *KioskHandler) GetSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	session, err := h.kioskService.GetSession(c, ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_session")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, session)
	}
}

func (h *KioskHandler) CloseSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	if err := h.kioskService.CloseSession(c, ctx.Params("id")); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "close_session")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusNoContent, nil)
}

func (h *KioskHandler) SelectMode(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), turnTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req kiosk.SelectModeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	resp, err := h.kioskService.SelectMode(c, ctx.Params("id"), *req.Simulation)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "select_mode")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
	}
}

func (h *KioskHandler) StartSession(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), turnTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	resp, err := h.kioskService.Start(c, ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "start_session")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
	}
}

func (h *KioskHandler) SelectService(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), turnTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req kiosk.SelectServiceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"session_id": ctx.Params("id"),
		"service":    req.Service,
	}).Debug("Processing service selection")

	resp, err := h.kioskService.SelectService(c, ctx.Params("id"), req.Service)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "select_service")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
	}
}

func (h *KioskHandler) HandleUtterance(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), turnTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req kiosk.UtteranceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	resp, err := h.kioskService.HandleUtterance(c, ctx.Params("id"), req.Text)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "handle_utterance")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
	}
}

func (h *KioskHandler) HandleAudio(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), turnTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	audioFile, err := ctx.FormFile("audio")
	if err != nil {
		return errHandler.Handle(ctx, requestID, kiosk.ErrAudioRequired, ctx.Path(), "handle_audio")
	}
	if err := h.utils.ValidateAudioFile(audioFile); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, errors.Join(kiosk.ErrInvalidAudio, err), ctx.Path())
	}

	data, err := h.utils.ReadFile(audioFile)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_audio")
	}

	resp, err := h.kioskService.HandleAudio(c, ctx.Params("id"), audioFile.Filename, data)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "handle_audio")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
	}
}

func (h *KioskHandler) Reset(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), turnTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req kiosk.ResetRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	resp, err := h.kioskService.Reset(c, ctx.Params("id"), kiosk.ResetTarget(req.Target))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "reset")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
	}
}

func (h *KioskHandler) ReportError(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), turnTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req kiosk.ErrorReportRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	resp, err := h.kioskService.ReportError(c, ctx.Params("id"), req.Reason)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "report_error")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
	}
}
