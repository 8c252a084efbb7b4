package staffService

import (
	"HospitalKiosk/internal/api/staff"
	"HospitalKiosk/internal/entity"
	contextPkg "HospitalKiosk/pkg/context"
	"context"

	"github.com/sirupsen/logrus"
)

func (s *staffService) GetOpenEscalations(ctx context.Context) ([]staff.EscalationResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	if s.repo == nil {
		return nil, staff.ErrRecordsUnavailable
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	escalations, err := repo.Escalations.GetOpenEscalations(ctx, s.config.ListLimit)
	if err != nil {
		return nil, err
	}

	result := make([]staff.EscalationResponse, 0, len(escalations))
	for _, e := range escalations {
		result = append(result, toEscalationResponse(e))
	}
	return result, nil
}

func (s *staffService) ResolveEscalation(ctx context.Context, id string, resolvedBy entity.StaffLoginData) (staff.EscalationResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	if s.repo == nil {
		return staff.EscalationResponse{}, staff.ErrRecordsUnavailable
	}

	repo, err := s.repo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return staff.EscalationResponse{}, err
	}
	defer func() {
		if err != nil {
			_ = repo.Rollback()
		}
	}()

	if _, err = repo.Escalations.GetEscalationByID(ctx, id); err != nil {
		return staff.EscalationResponse{}, err
	}
	if err = repo.Escalations.ResolveEscalation(ctx, id, resolvedBy.Username); err != nil {
		return staff.EscalationResponse{}, err
	}

	var escalation entity.KioskEscalation
	if escalation, err = repo.Escalations.GetEscalationByID(ctx, id); err != nil {
		return staff.EscalationResponse{}, err
	}
	if err = repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit escalation resolve")
		return staff.EscalationResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":    requestID,
		"escalation_id": id,
		"session_id":    escalation.SessionID,
		"resolved_by":   resolvedBy.Username,
	}).Info("Staff call resolved")

	return toEscalationResponse(escalation), nil
}

func (s *staffService) GetSessionTurns(ctx context.Context, sessionID string) ([]staff.TurnResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	if s.repo == nil {
		return nil, staff.ErrRecordsUnavailable
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	turns, err := repo.Turns.GetTurnsBySessionID(ctx, sessionID, s.config.ListLimit)
	if err != nil {
		return nil, err
	}

	result := make([]staff.TurnResponse, 0, len(turns))
	for _, t := range turns {
		resp := staff.TurnResponse{
			ID:        t.ID,
			Screen:    t.Screen,
			Service:   t.Service,
			Step:      t.Step,
			Utterance: t.Utterance,
			Reply:     t.Reply,
			Escalated: t.Escalated,
			CreatedAt: t.CreatedAt,
		}
		if t.AudioKey.Valid && s.s3Client != nil {
			url, err := s.s3Client.PresignURL(t.AudioKey.String)
			if err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"audio_key":  t.AudioKey.String,
					"error":      err.Error(),
				}).Warn("Failed to presign utterance audio")
			} else {
				resp.AudioURL = url
			}
		}
		result = append(result, resp)
	}
	return result, nil
}

func toEscalationResponse(e entity.KioskEscalation) staff.EscalationResponse {
	resp := staff.EscalationResponse{
		ID:        e.ID,
		SessionID: e.SessionID,
		Reason:    e.Reason,
		Screen:    e.Screen,
		Service:   e.Service,
		Step:      e.Step,
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
	}
	if e.ResolvedBy.Valid {
		resp.ResolvedBy = e.ResolvedBy.String
	}
	if e.ResolvedAt.Valid {
		at := e.ResolvedAt.Time
		resp.ResolvedAt = &at
	}
	return resp
}
