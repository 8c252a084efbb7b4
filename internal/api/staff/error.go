package staff

import "HospitalKiosk/pkg/response"

var (
	ErrInvalidCredentials = response.NewError(401, "invalid username or password")
	ErrTooManyAttempts    = response.NewError(429, "too many failed login attempts, try again later")
	ErrLoginUnavailable   = response.NewError(503, "staff login is not configured")
	ErrRecordsUnavailable = response.NewError(503, "kiosk records are not configured")
)
