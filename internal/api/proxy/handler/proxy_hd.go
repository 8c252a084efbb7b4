package proxyHandler

import (
	"HospitalKiosk/internal/api/proxy"
	"HospitalKiosk/pkg/backend"
	contextPkg "HospitalKiosk/pkg/context"
	"HospitalKiosk/pkg/handlerUtil"
	"HospitalKiosk/pkg/log"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *ProxyHandler) Health(ctx *fiber.Ctx) error {
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.gateway.Health(c))
}

func (h *ProxyHandler) Speak(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req proxy.SpeakRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	speech := h.gateway.Speak(c, req.Text)
	if speech.Simulated {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
		}).Debug("Speech synthesis simulated")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, speech)
}

func (h *ProxyHandler) UploadAudio(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	file, err := ctx.FormFile("file")
	if err != nil {
		return errHandler.Handle(ctx, requestID, proxy.ErrFileRequired, ctx.Path(), "upload_audio")
	}
	if err := h.utils.ValidateAudioFile(file); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	data, err := h.utils.ReadFile(file)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "upload_audio")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.gateway.UploadAudio(c, file.Filename, data))
}

// Audio streams synthesized speech from the backend by file path or absolute url.
func (h *ProxyHandler) Audio(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var query proxy.AudioQuery
	if err := ctx.QueryParser(&query); err != nil || query.Ref() == "" {
		return errHandler.Handle(ctx, requestID, proxy.ErrAudioRefRequired, ctx.Path(), "fetch_audio")
	}

	data, contentType, err := h.gateway.FetchAudio(c, query.Ref())
	switch {
	case errors.Is(err, backend.ErrAudioNotFound):
		return errHandler.Handle(ctx, requestID, proxy.ErrAudioNotFound, ctx.Path(), "fetch_audio")
	case err != nil:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"ref":        query.Ref(),
			"error":      err.Error(),
		}).Warn("Failed to fetch audio from backend")
		return errHandler.Handle(ctx, requestID, proxy.ErrAudioUnavailable, ctx.Path(), "fetch_audio")
	}

	if contentType == "" {
		contentType = "audio/mpeg"
	}
	ctx.Set(fiber.HeaderContentType, contentType)
	ctx.Set(fiber.HeaderCacheControl, "no-store")
	return ctx.Status(fiber.StatusOK).Send(data)
}
