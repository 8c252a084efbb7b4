package kiosk

import (
	"HospitalKiosk/pkg/dialogue"
	"time"
)

type SelectModeRequest struct {
	Simulation *bool `json:"simulation" validate:"required"`
}

type SelectServiceRequest struct {
	Service string `json:"service" validate:"required,oneof=reception lookup direction"`
}

type UtteranceRequest struct {
	Text string `json:"text" validate:"max=500"`
}

type ResetTarget string

const (
	ResetMain     ResetTarget = "main"
	ResetServices ResetTarget = "services"
	ResetStart    ResetTarget = "start"
	ResetMode     ResetTarget = "mode"
)

type ResetRequest struct {
	Target string `json:"target" validate:"required,oneof=main services start mode"`
}

// ErrorReportRequest is sent by the kiosk when it could not capture input at all,
// e.g. a browser without speech recognition.
type ErrorReportRequest struct {
	Reason string `json:"reason" validate:"max=200"`
}

type HealthView struct {
	STT       bool       `json:"stt"`
	LLM       bool       `json:"llm"`
	TTS       bool       `json:"tts"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
}

type SessionView struct {
	ID                  string                    `json:"id"`
	Mode                string                    `json:"mode"`
	Screen              string                    `json:"screen"`
	Service             string                    `json:"service,omitempty"`
	ServiceLabel        string                    `json:"service_label,omitempty"`
	Step                string                    `json:"step,omitempty"`
	StepLabel           string                    `json:"step_label,omitempty"`
	Busy                bool                      `json:"busy"`
	Speaking            bool                      `json:"speaking"`
	StaffCalled         bool                      `json:"staff_called"`
	Status              string                    `json:"status,omitempty"`
	ErrorCount          int                       `json:"error_count"`
	RetryCount          int                       `json:"retry_count"`
	Patient             *dialogue.Patient         `json:"patient,omitempty"`
	PredictedDepartment string                    `json:"predicted_department,omitempty"`
	Reception           *dialogue.ReceptionResult `json:"reception,omitempty"`
	Health              *HealthView               `json:"health,omitempty"`
}

type AudioView struct {
	Path      string `json:"path,omitempty"`
	Simulated bool   `json:"simulated"`
}

type TurnResponse struct {
	SessionID string      `json:"session_id"`
	Utterance string      `json:"utterance,omitempty"`
	Text      string      `json:"text"`
	Escalate  bool        `json:"escalate"`
	Audio     AudioView   `json:"audio"`
	Session   SessionView `json:"session"`
}

type CommandType string

const (
	CommandMode      CommandType = "mode"
	CommandStart     CommandType = "start"
	CommandService   CommandType = "service"
	CommandUtterance CommandType = "utterance"
	CommandReset     CommandType = "reset"
	CommandError     CommandType = "error"
	CommandSnapshot  CommandType = "snapshot"
)

// WSCommand is one message a kiosk sends over its websocket.
type WSCommand struct {
	Type       string `json:"type" validate:"required,oneof=mode start service utterance reset error snapshot"`
	Text       string `json:"text,omitempty" validate:"max=500"`
	Service    string `json:"service,omitempty"`
	Target     string `json:"target,omitempty"`
	Simulation *bool  `json:"simulation,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type EventType string

const (
	EventTurn    EventType = "turn"
	EventSession EventType = "session"
	EventError   EventType = "error"
	EventStaff   EventType = "staff"
	// EventAudio carries the synthesized audio of a reply already sent as EventTurn.
	EventAudio EventType = "audio"
)

// Event is pushed to every subscriber of a session.
type Event struct {
	Type    EventType     `json:"type"`
	Turn    *TurnResponse `json:"turn,omitempty"`
	Session *SessionView  `json:"session,omitempty"`
	Error   string        `json:"error,omitempty"`
}
