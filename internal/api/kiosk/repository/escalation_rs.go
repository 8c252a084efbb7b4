package kioskRepository

import (
	"HospitalKiosk/internal/api/kiosk"
	"HospitalKiosk/internal/entity"
	contextPkg "HospitalKiosk/pkg/context"
	"context"
	"database/sql"
	"errors"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"time"
)

func (r *escalationRepository) CreateEscalation(ctx context.Context, escalation entity.KioskEscalation) error {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryCreateEscalation, escalation)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateEscalation")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": escalation.SessionID,
			"error":      err.Error(),
		}).Error("Database error when creating escalation")
		return err
	}

	return nil
}

func (r *escalationRepository) GetEscalationByID(ctx context.Context, id string) (entity.KioskEscalation, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryGetEscalationByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetEscalationByID named query preparation err")
		return entity.KioskEscalation{}, err
	}
	query = r.q.Rebind(query)

	var escalation entity.KioskEscalation
	if err := r.q.GetContext(ctx, &escalation, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.KioskEscalation{}, kiosk.ErrEscalationNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id":    requestID,
			"escalation_id": id,
			"error":         err.Error(),
		}).Error("Database error when getting escalation")
		return entity.KioskEscalation{}, err
	}

	return escalation, nil
}

func (r *escalationRepository) GetOpenEscalations(ctx context.Context, limit int) ([]entity.KioskEscalation, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryGetOpenEscalations, map[string]interface{}{"limit": limit})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetOpenEscalations named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	escalations := []entity.KioskEscalation{}
	if err := r.q.SelectContext(ctx, &escalations, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when listing open escalations")
		return nil, err
	}

	return escalations, nil
}

func (r *escalationRepository) ResolveEscalation(ctx context.Context, id string, staffID string) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":          id,
		"resolved_by": staffID,
		"resolved_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryResolveEscalation, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ResolveEscalation named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id":    requestID,
			"escalation_id": id,
			"error":         err.Error(),
		}).Error("Database error when resolving escalation")
		return err
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return kiosk.ErrEscalationResolved
	}

	return nil
}
