package kiosk

import "HospitalKiosk/pkg/response"

var (
	ErrSessionNotFound    = response.NewError(404, "kiosk session not found")
	ErrSessionLimit       = response.NewError(503, "too many active kiosk sessions")
	ErrTurnInProgress     = response.NewError(409, "a turn is already in progress")
	ErrTurnCanceled       = response.NewError(409, "turn canceled by reset")
	ErrInvalidService     = response.NewError(400, "unknown service")
	ErrInvalidResetTarget = response.NewError(400, "unknown reset target")
	ErrInvalidCommand     = response.NewError(400, "unknown command")
	ErrAudioRequired      = response.NewError(400, "audio file is required")
	ErrInvalidAudio       = response.NewError(400, "invalid audio file")
	ErrEscalationNotFound = response.NewError(404, "escalation not found")
	ErrEscalationResolved = response.NewError(409, "escalation already resolved")
)
