package staffHandler

import (
	staffService "HospitalKiosk/internal/api/staff/service"
	"HospitalKiosk/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type StaffHandler struct {
	log          *logrus.Logger
	validator    *validator.Validate
	middleware   middleware.Middleware
	staffService staffService.IStaffService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	ss staffService.IStaffService,
) *StaffHandler {
	return &StaffHandler{
		log:          log,
		validator:    validate,
		middleware:   middleware,
		staffService: ss,
	}
}

func (h *StaffHandler) Start(srv fiber.Router) {
	staff := srv.Group("/staff")

	staff.Post("/login", h.middleware.NewRateLimiter, h.Login)

	// Staff console (requires auth)
	staff.Get("/escalations", h.middleware.NewTokenMiddleware, h.GetOpenEscalations)
	staff.Patch("/escalations/:id/resolve", h.middleware.NewTokenMiddleware, h.ResolveEscalation)
	staff.Get("/sessions/:id/turns", h.middleware.NewTokenMiddleware, h.GetSessionTurns)
}
