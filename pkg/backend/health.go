package backend

import (
	"context"
	"net/http"
	"sync"
	"time"
)

type Health struct {
	STT bool `json:"stt"`
	LLM bool `json:"llm"`
	TTS bool `json:"tts"`
}

// Health never fails. An unreachable backend reports every subsystem down.
func (g *gateway) Health(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.ExchangeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.HTTPURL+"/health", nil)
	if err != nil {
		return Health{}
	}

	var health Health
	if err := g.doJSON(req, &health); err != nil {
		g.log.WithField("error", err.Error()).Debug("Backend health check failed")
		return Health{}
	}
	return health
}

type HealthChecker interface {
	Health(ctx context.Context) Health
}

type Status struct {
	Health
	CheckedAt time.Time `json:"checked_at"`
}

// Probe polls backend health on its own goroutine and keeps the last result.
type Probe struct {
	checker  HealthChecker
	interval time.Duration

	mu     sync.RWMutex
	status Status
}

func NewProbe(checker HealthChecker, interval time.Duration) *Probe {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Probe{checker: checker, interval: interval}
}

// Run checks immediately and then on every tick until ctx ends.
func (p *Probe) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.check(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Probe) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *Probe) check(ctx context.Context) {
	health := p.checker.Health(ctx)
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	p.status = Status{Health: health, CheckedAt: time.Now()}
	p.mu.Unlock()
}
