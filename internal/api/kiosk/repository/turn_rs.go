package kioskRepository

import (
	"HospitalKiosk/internal/entity"
	contextPkg "HospitalKiosk/pkg/context"
	"context"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *turnRepository) CreateTurn(ctx context.Context, turn entity.KioskTurn) error {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryCreateTurn, turn)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateTurn")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": turn.SessionID,
			"error":      err.Error(),
		}).Error("Database error when creating turn")
		return err
	}

	return nil
}

func (r *turnRepository) GetTurnsBySessionID(ctx context.Context, sessionID string, limit int) ([]entity.KioskTurn, error) {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"session_id": sessionID,
		"limit":      limit,
	}

	query, args, err := sqlx.Named(queryGetTurnsBySessionID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetTurnsBySessionID named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	var turns []entity.KioskTurn
	if err := r.q.SelectContext(ctx, &turns, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("Database error when listing turns")
		return nil, err
	}

	return turns, nil
}
