package staffService

import (
	kioskRepository "HospitalKiosk/internal/api/kiosk/repository"
	"HospitalKiosk/internal/api/staff"
	"HospitalKiosk/internal/entity"
	"HospitalKiosk/pkg/bcrypt"
	redisPkg "HospitalKiosk/pkg/redis"
	"HospitalKiosk/pkg/s3"
	"HospitalKiosk/pkg/utils"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type IStaffService interface {
	Login(ctx context.Context, req staff.LoginRequest) (staff.LoginResponse, error)
	GetOpenEscalations(ctx context.Context) ([]staff.EscalationResponse, error)
	ResolveEscalation(ctx context.Context, id string, resolvedBy entity.StaffLoginData) (staff.EscalationResponse, error)
	GetSessionTurns(ctx context.Context, sessionID string) ([]staff.TurnResponse, error)
}

type StaffConfig struct {
	Username         string
	PasswordHash     string
	TokenTTL         time.Duration
	MaxLoginFailures int64
	LockoutWindow    time.Duration
	ListLimit        int
}

func StaffConfigFromEnv() StaffConfig {
	return StaffConfig{
		Username:         utils.GetEnv("STAFF_USERNAME", "staff"),
		PasswordHash:     utils.GetEnv("STAFF_PASSWORD_HASH", ""),
		TokenTTL:         utils.GetEnvDuration("STAFF_TOKEN_TTL", 12*time.Hour),
		MaxLoginFailures: 5,
		LockoutWindow:    15 * time.Minute,
		ListLimit:        100,
	}
}

type staffService struct {
	log         *logrus.Logger
	config      StaffConfig
	repo        kioskRepository.Repository
	redis       redisPkg.IRedis
	s3Client    s3.ItfS3
	bcryptUtils bcrypt.IBcrypt
}

func NewStaffService(
	log *logrus.Logger,
	config StaffConfig,
	repo kioskRepository.Repository,
	redis redisPkg.IRedis,
	s3Client s3.ItfS3,
	bcryptUtils bcrypt.IBcrypt,
) IStaffService {
	return &staffService{
		log:         log,
		config:      config,
		repo:        repo,
		redis:       redis,
		s3Client:    s3Client,
		bcryptUtils: bcryptUtils,
	}
}
