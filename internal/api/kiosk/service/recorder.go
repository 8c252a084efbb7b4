package kioskService

import (
	kioskRepository "HospitalKiosk/internal/api/kiosk/repository"
	"HospitalKiosk/internal/entity"
	contextPkg "HospitalKiosk/pkg/context"
	"HospitalKiosk/pkg/dialogue"
	redisPkg "HospitalKiosk/pkg/redis"
	"HospitalKiosk/pkg/s3"
	"HospitalKiosk/pkg/utils"
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const recordTimeout = 10 * time.Second

type recording struct {
	filename string
	data     []byte
}

// recorder writes turns, receptions and staff calls off the session goroutine.
// Every dependency is optional; a kiosk without a database still works.
type recorder struct {
	log      *logrus.Logger
	repo     kioskRepository.Repository
	redis    redisPkg.IRedis
	s3Client s3.ItfS3
	utils    utils.IUtils

	wg sync.WaitGroup
}

func (r *recorder) background(requestID string, fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), recordTimeout)
		defer cancel()

		fn(ctx)
	}()
}

func (r *recorder) wait() {
	r.wg.Wait()
}

func (r *recorder) newID() string {
	if r.utils != nil {
		if id, err := r.utils.NewULIDFromTimestamp(time.Now()); err == nil {
			return id
		}
	}
	return uuid.NewString()
}

func (r *recorder) recordTurn(requestID string, turn entity.KioskTurn, audio *recording) {
	if r.repo == nil {
		return
	}
	turn.ID = r.newID()
	turn.CreatedAt = time.Now()

	r.background(requestID, func(ctx context.Context) {
		if audio != nil && r.s3Client != nil {
			key, err := r.s3Client.ArchiveAudio(ctx, turn.SessionID, audio.filename, audio.data)
			if err != nil {
				r.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"session_id": turn.SessionID,
					"error":      err.Error(),
				}).Warn("Failed to archive utterance audio")
			} else {
				turn.AudioKey = sql.NullString{String: key, Valid: true}
			}
		}

		client, err := r.repo.NewClient(false)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to create repository client")
			return
		}
		_ = client.Turns.CreateTurn(ctx, turn)
	})
}

func (r *recorder) recordReception(requestID string, sessionID string, flow dialogue.Flow) {
	if r.repo == nil || flow.Reception == nil {
		return
	}

	reception := entity.KioskReception{
		ID:          r.newID(),
		SessionID:   sessionID,
		PatientName: flow.Patient.Name,
		Phone:       flow.Patient.Phone,
		Address:     flow.Patient.Address,
		Symptom:     flow.Patient.Symptom,
		Department:  flow.Reception.Department,
		Date:        flow.Reception.Date,
		Time:        flow.Reception.Time,
		CreatedAt:   time.Now(),
	}

	r.background(requestID, func(ctx context.Context) {
		client, err := r.repo.NewClient(false)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to create repository client")
			return
		}
		_ = client.Receptions.CreateReception(ctx, reception)
	})
}

func (r *recorder) recordEscalation(requestID string, sessionID string, reason string, s dialogue.Session) {
	escalation := entity.KioskEscalation{
		ID:        r.newID(),
		SessionID: sessionID,
		Reason:    reason,
		Screen:    string(s.Screen),
		Service:   string(s.Service()),
		Step:      string(s.Step()),
		Status:    entity.EscalationOpen,
		CreatedAt: time.Now(),
	}

	r.log.WithFields(logrus.Fields{
		"request_id":    requestID,
		"session_id":    sessionID,
		"escalation_id": escalation.ID,
		"reason":        reason,
	}).Warn("Kiosk called staff")

	if r.repo == nil && r.redis == nil {
		return
	}

	r.background(requestID, func(ctx context.Context) {
		if r.repo != nil {
			client, err := r.repo.NewClient(false)
			if err == nil {
				err = client.Escalations.CreateEscalation(ctx, escalation)
			}
			if err != nil {
				r.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      err.Error(),
				}).Error("Failed to store escalation")
			}
		}

		if r.redis != nil {
			_ = r.redis.PublishStaffCall(ctx, redisPkg.StaffCall{
				EscalationID: escalation.ID,
				SessionID:    sessionID,
				Reason:       reason,
				Screen:       escalation.Screen,
				Service:      escalation.Service,
				Step:         escalation.Step,
				CalledAt:     escalation.CreatedAt,
			})
		}
	})
}

func (a *sessionActor) turnEntity(input turnInput, reply dialogue.Reply) entity.KioskTurn {
	s := a.session
	return entity.KioskTurn{
		SessionID:  a.id,
		Mode:       string(s.Mode),
		Screen:     string(s.Screen),
		Service:    string(s.Service()),
		Step:       string(s.Step()),
		Utterance:  input.utterance,
		Reply:      reply.Text,
		Escalated:  reply.Escalate,
		ErrorCount: s.Policy.ErrorCount,
		RetryCount: s.Policy.RetryCount,
	}
}
