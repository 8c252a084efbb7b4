package kioskService

import (
	"HospitalKiosk/internal/api/kiosk"
	kioskRepository "HospitalKiosk/internal/api/kiosk/repository"
	"HospitalKiosk/pkg/backend"
	"HospitalKiosk/pkg/dialogue"
	"HospitalKiosk/pkg/nlp"
	redisPkg "HospitalKiosk/pkg/redis"
	"HospitalKiosk/pkg/s3"
	"HospitalKiosk/pkg/simulator"
	"HospitalKiosk/pkg/utils"
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type IKioskService interface {
	CreateSession(ctx context.Context) (*kiosk.SessionView, error)
	GetSession(ctx context.Context, sessionID string) (*kiosk.SessionView, error)
	CloseSession(ctx context.Context, sessionID string) error

	SelectMode(ctx context.Context, sessionID string, simulation bool) (*kiosk.TurnResponse, error)
	Start(ctx context.Context, sessionID string) (*kiosk.TurnResponse, error)
	SelectService(ctx context.Context, sessionID string, service string) (*kiosk.TurnResponse, error)
	HandleUtterance(ctx context.Context, sessionID string, text string) (*kiosk.TurnResponse, error)
	HandleAudio(ctx context.Context, sessionID string, filename string, data []byte) (*kiosk.TurnResponse, error)
	Reset(ctx context.Context, sessionID string, target kiosk.ResetTarget) (*kiosk.TurnResponse, error)
	ReportError(ctx context.Context, sessionID string, reason string) (*kiosk.TurnResponse, error)

	// Subscribe streams every reply of a session, including ones the
	// subscriber did not trigger such as the staff handoff reset.
	Subscribe(sessionID string) (<-chan kiosk.Event, func(), error)

	// Run reaps idle sessions until ctx ends.
	Run(ctx context.Context)
	Shutdown()
}

type KioskConfig struct {
	SimulationDelay    time.Duration `json:"simulation_delay"`
	StaffResetDelay    time.Duration `json:"staff_reset_delay"`
	TTSCompletionDelay time.Duration `json:"tts_completion_delay"`
	IdleTimeout        time.Duration `json:"idle_timeout"`
	HealthInterval     time.Duration `json:"health_interval"`
	MaxSessions        int           `json:"max_sessions"`
}

func DefaultKioskConfig() KioskConfig {
	return KioskConfig{
		SimulationDelay:    simulator.DefaultDelay,
		StaffResetDelay:    3 * time.Second,
		TTSCompletionDelay: 2 * time.Second,
		IdleTimeout:        30 * time.Minute,
		HealthInterval:     10 * time.Second,
		MaxSessions:        64,
	}
}

type kioskService struct {
	log        *logrus.Logger
	config     KioskConfig
	gateway    backend.IGateway
	controller *dialogue.Controller
	normalizer nlp.INormalizer
	recorder   *recorder

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*sessionActor
}

func NewKioskService(
	log *logrus.Logger,
	config *KioskConfig,
	gateway backend.IGateway,
	kioskRepo kioskRepository.Repository,
	redis redisPkg.IRedis,
	s3Client s3.ItfS3,
	utils utils.IUtils,
	normalizer nlp.INormalizer,
) IKioskService {
	cfg := DefaultKioskConfig()
	if config != nil {
		cfg = *config
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &kioskService{
		log:        log,
		config:     cfg,
		gateway:    gateway,
		controller: dialogue.NewController(gateway, simulator.New(cfg.SimulationDelay), dialogue.NewFixedScheduler()),
		normalizer: normalizer,
		recorder: &recorder{
			log:      log,
			repo:     kioskRepo,
			redis:    redis,
			s3Client: s3Client,
			utils:    utils,
		},
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*sessionActor),
	}
}

func (s *kioskService) actor(sessionID string) (*sessionActor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.sessions[sessionID]
	if !ok {
		return nil, kiosk.ErrSessionNotFound
	}
	return a, nil
}

func (s *kioskService) remove(sessionID string) *sessionActor {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	delete(s.sessions, sessionID)
	return a
}

func (s *kioskService) Run(ctx context.Context) {
	interval := s.config.IdleTimeout / 2
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.reapIdle(time.Now())
		}
	}
}

func (s *kioskService) reapIdle(now time.Time) {
	if s.config.IdleTimeout <= 0 {
		return
	}

	s.mu.RLock()
	var idle []string
	for id, a := range s.sessions {
		if now.Sub(a.lastSeen()) > s.config.IdleTimeout {
			idle = append(idle, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range idle {
		if a := s.remove(id); a != nil {
			a.stop()
			s.log.WithField("session_id", id).Info("Closed idle kiosk session")
		}
	}
}

func (s *kioskService) Shutdown() {
	s.mu.Lock()
	actors := make([]*sessionActor, 0, len(s.sessions))
	for id, a := range s.sessions {
		actors = append(actors, a)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, a := range actors {
		a.stop()
	}
	s.cancel()
	s.recorder.wait()
}
