package proxyHandler

import (
	"HospitalKiosk/internal/middleware"
	"HospitalKiosk/pkg/backend"
	"HospitalKiosk/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ProxyHandler exposes the speech backend to the kiosk page under the same
// origin. Failures degrade to simulated payloads, never to errors.
type ProxyHandler struct {
	log        *logrus.Logger
	validator  *validator.Validate
	middleware middleware.Middleware
	gateway    backend.IGateway
	utils      utils.IUtils
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	gateway backend.IGateway,
	utils utils.IUtils,
) *ProxyHandler {
	return &ProxyHandler{
		log:        log,
		validator:  validate,
		middleware: middleware,
		gateway:    gateway,
		utils:      utils,
	}
}

func (h *ProxyHandler) Start(srv fiber.Router) {
	srv.Get("/health", h.Health)
	srv.Post("/speak", h.Speak)
	srv.Post("/upload-audio", h.UploadAudio)
	srv.Get("/audio", h.Audio)
}
