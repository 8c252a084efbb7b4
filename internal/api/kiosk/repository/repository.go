package kioskRepository

import (
	"HospitalKiosk/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Turns:       &turnRepository{q: sqlExecutor, log: r.log},
		Receptions:  &receptionRepository{q: sqlExecutor, log: r.log},
		Escalations: &escalationRepository{q: sqlExecutor, log: r.log},
		Commit:      commitFunc,
		Rollback:    rollbackFunc,
	}, nil
}

type Client struct {
	Turns interface {
		CreateTurn(ctx context.Context, turn entity.KioskTurn) error
		GetTurnsBySessionID(ctx context.Context, sessionID string, limit int) ([]entity.KioskTurn, error)
	}

	Receptions interface {
		CreateReception(ctx context.Context, reception entity.KioskReception) error
	}

	Escalations interface {
		CreateEscalation(ctx context.Context, escalation entity.KioskEscalation) error
		GetEscalationByID(ctx context.Context, id string) (entity.KioskEscalation, error)
		GetOpenEscalations(ctx context.Context, limit int) ([]entity.KioskEscalation, error)
		ResolveEscalation(ctx context.Context, id string, staffID string) error
	}

	Commit   func() error
	Rollback func() error
}

type turnRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type receptionRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type escalationRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
