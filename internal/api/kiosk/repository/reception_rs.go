package kioskRepository

import (
	"HospitalKiosk/internal/entity"
	contextPkg "HospitalKiosk/pkg/context"
	"context"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *receptionRepository) CreateReception(ctx context.Context, reception entity.KioskReception) error {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryCreateReception, reception)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateReception")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": reception.SessionID,
			"error":      err.Error(),
		}).Error("Database error when creating reception")
		return err
	}

	return nil
}
