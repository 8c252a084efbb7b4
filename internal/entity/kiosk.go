package entity

import (
	"database/sql"
	"time"
)

// KioskTurn is one utterance and the reply it produced.
type KioskTurn struct {
	ID         string         `db:"id"`
	SessionID  string         `db:"session_id"`
	Mode       string         `db:"mode"`
	Screen     string         `db:"screen"`
	Service    string         `db:"service"`
	Step       string         `db:"step"`
	Utterance  string         `db:"utterance"`
	Reply      string         `db:"reply"`
	Escalated  bool           `db:"escalated"`
	AudioKey   sql.NullString `db:"audio_key"`
	ErrorCount int            `db:"error_count"`
	RetryCount int            `db:"retry_count"`
	CreatedAt  time.Time      `db:"created_at"`
}

type KioskReception struct {
	ID          string    `db:"id"`
	SessionID   string    `db:"session_id"`
	PatientName string    `db:"patient_name"`
	Phone       string    `db:"phone"`
	Address     string    `db:"address"`
	Symptom     string    `db:"symptom"`
	Department  string    `db:"department"`
	Date        string    `db:"visit_date"`
	Time        string    `db:"visit_time"`
	CreatedAt   time.Time `db:"created_at"`
}

type EscalationStatus string

const (
	EscalationOpen     EscalationStatus = "open"
	EscalationResolved EscalationStatus = "resolved"
)

type KioskEscalation struct {
	ID         string           `db:"id"`
	SessionID  string           `db:"session_id"`
	Reason     string           `db:"reason"`
	Screen     string           `db:"screen"`
	Service    string           `db:"service"`
	Step       string           `db:"step"`
	Status     EscalationStatus `db:"status"`
	ResolvedBy sql.NullString   `db:"resolved_by"`
	CreatedAt  time.Time        `db:"created_at"`
	ResolvedAt sql.NullTime     `db:"resolved_at"`
}
