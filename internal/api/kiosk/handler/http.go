package kioskHandler

import (
	kioskService "HospitalKiosk/internal/api/kiosk/service"
	"HospitalKiosk/internal/middleware"
	"HospitalKiosk/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type KioskHandler struct {
	log          *logrus.Logger
	validator    *validator.Validate
	middleware   middleware.Middleware
	kioskService kioskService.IKioskService
	utils        utils.IUtils
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	ks kioskService.IKioskService,
	utils utils.IUtils,
) *KioskHandler {
	return &KioskHandler{
		log:          log,
		validator:    validate,
		middleware:   middleware,
		kioskService: ks,
		utils:        utils,
	}
}

func (h *KioskHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	kiosk := srv.Group("/kiosk")

	kiosk.Post("/sessions", h.CreateSession)
	kiosk.Get("/sessions/:id", h.GetSession)
	kiosk.Delete("/sessions/:id", h.CloseSession)

	// Screen transitions
	kiosk.Post("/sessions/:id/mode", h.SelectMode)
	kiosk.Post("/sessions/:id/start", h.StartSession)
	kiosk.Post("/sessions/:id/service", h.SelectService)
	kiosk.Post("/sessions/:id/reset", h.Reset)

	// Voice input
	kiosk.Post("/sessions/:id/utterance", h.HandleUtterance)
	kiosk.Post("/sessions/:id/audio", h.HandleAudio)
	kiosk.Post("/sessions/:id/errors", h.ReportError)

	kiosk.Use("/ws", wsMiddleware)
	kiosk.Get("/ws/:id", websocket.New(h.handleWebSocket))
}
