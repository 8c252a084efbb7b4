package staffService

import (
	"HospitalKiosk/internal/api/staff"
	contextPkg "HospitalKiosk/pkg/context"
	jwtPkg "HospitalKiosk/pkg/jwt"
	"context"

	"github.com/sirupsen/logrus"
)

func (s *staffService) Login(ctx context.Context, req staff.LoginRequest) (staff.LoginResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.config.PasswordHash == "" {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Staff login attempted without STAFF_PASSWORD_HASH")
		return staff.LoginResponse{}, staff.ErrLoginUnavailable
	}

	if s.lockedOut(ctx, req.Username) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"username":   req.Username,
		}).Warn("Staff login locked out")
		return staff.LoginResponse{}, staff.ErrTooManyAttempts
	}

	if req.Username != s.config.Username || !s.bcryptUtils.Matches(s.config.PasswordHash, req.Password) {
		s.recordFailure(ctx, req.Username)
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"username":   req.Username,
		}).Warn("Invalid staff credentials")
		return staff.LoginResponse{}, staff.ErrInvalidCredentials
	}

	if s.redis != nil {
		_ = s.redis.ResetLoginFailures(ctx, req.Username)
	}

	token, expiresAt, err := jwtPkg.Sign(map[string]interface{}{
		"id":       "staff:" + s.config.Username,
		"username": s.config.Username,
	}, s.config.TokenTTL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign staff token")
		return staff.LoginResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"username":   req.Username,
	}).Info("Staff logged in")

	return staff.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

// lockedOut fails open when redis is unreachable.
func (s *staffService) lockedOut(ctx context.Context, username string) bool {
	if s.redis == nil || s.config.MaxLoginFailures <= 0 {
		return false
	}
	failures, err := s.redis.LoginFailures(ctx, username)
	if err != nil {
		return false
	}
	return failures >= s.config.MaxLoginFailures
}

func (s *staffService) recordFailure(ctx context.Context, username string) {
	if s.redis == nil {
		return
	}
	_, _ = s.redis.IncrementLoginFailures(ctx, username, s.config.LockoutWindow)
}
