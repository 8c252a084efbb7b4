package backend

import (
	"HospitalKiosk/pkg/utils"
	"strings"
	"time"
)

type Config struct {
	HTTPURL string
	WSURL   string

	// ExchangeTimeout bounds one single-shot request from dial to answer.
	ExchangeTimeout time.Duration
	// RecognitionTimeout bounds waiting for a transcript of uploaded audio.
	RecognitionTimeout time.Duration
	HTTPTimeout        time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		HTTPURL:            strings.TrimRight(utils.GetEnv("BACKEND_HTTP_URL", "http://localhost:8000"), "/"),
		WSURL:              utils.GetEnv("BACKEND_WS_URL", "ws://localhost:8000/ws/kiosk"),
		ExchangeTimeout:    utils.GetEnvDuration("BACKEND_TIMEOUT", 3*time.Second),
		RecognitionTimeout: utils.GetEnvDuration("RECOGNITION_TIMEOUT", 30*time.Second),
		HTTPTimeout:        utils.GetEnvDuration("BACKEND_HTTP_TIMEOUT", 30*time.Second),
	}
}

func (c Config) withDefaults() Config {
	if c.ExchangeTimeout <= 0 {
		c.ExchangeTimeout = 3 * time.Second
	}
	if c.RecognitionTimeout <= 0 {
		c.RecognitionTimeout = 30 * time.Second
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
	c.HTTPURL = strings.TrimRight(c.HTTPURL, "/")
	return c
}
