package config

import (
	kioskService "HospitalKiosk/internal/api/kiosk/service"
	"HospitalKiosk/pkg/utils"
	"strconv"
)

// KioskConfigFromEnv reads the conversation timings, falling back to the defaults.
func KioskConfigFromEnv() kioskService.KioskConfig {
	cfg := kioskService.DefaultKioskConfig()

	cfg.SimulationDelay = utils.GetEnvDuration("SIMULATION_DELAY", cfg.SimulationDelay)
	cfg.StaffResetDelay = utils.GetEnvDuration("STAFF_RESET_DELAY", cfg.StaffResetDelay)
	cfg.TTSCompletionDelay = utils.GetEnvDuration("TTS_COMPLETION_DELAY", cfg.TTSCompletionDelay)
	cfg.IdleTimeout = utils.GetEnvDuration("SESSION_IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.HealthInterval = utils.GetEnvDuration("HEALTH_INTERVAL", cfg.HealthInterval)

	if n, err := strconv.Atoi(utils.GetEnv("MAX_SESSIONS", "")); err == nil && n > 0 {
		cfg.MaxSessions = n
	}

	return cfg
}
