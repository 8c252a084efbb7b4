package staff

import "time"

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

type EscalationResponse struct {
	ID         string     `json:"id"`
	SessionID  string     `json:"session_id"`
	Reason     string     `json:"reason"`
	Screen     string     `json:"screen"`
	Service    string     `json:"service,omitempty"`
	Step       string     `json:"step,omitempty"`
	Status     string     `json:"status"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

type TurnResponse struct {
	ID        string    `json:"id"`
	Screen    string    `json:"screen"`
	Service   string    `json:"service,omitempty"`
	Step      string    `json:"step,omitempty"`
	Utterance string    `json:"utterance"`
	Reply     string    `json:"reply"`
	Escalated bool      `json:"escalated"`
	AudioURL  string    `json:"audio_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
