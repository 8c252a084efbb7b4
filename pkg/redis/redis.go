package redis

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"os"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	StaffCallChannel   = "kiosk:staff-calls"
	loginFailurePrefix = "kiosk:staff-login-failures:"
)

// StaffCall is broadcast to staff consoles when a kiosk gives up on a patient.
type StaffCall struct {
	EscalationID string    `json:"escalation_id"`
	SessionID    string    `json:"session_id"`
	Reason       string    `json:"reason"`
	Screen       string    `json:"screen"`
	Service      string    `json:"service,omitempty"`
	Step         string    `json:"step,omitempty"`
	CalledAt     time.Time `json:"called_at"`
}

type IRedis interface {
	PublishStaffCall(ctx context.Context, call StaffCall) error
	LoginFailures(ctx context.Context, key string) (int64, error)
	IncrementLoginFailures(ctx context.Context, key string, window time.Duration) (int64, error)
	ResetLoginFailures(ctx context.Context, key string) error
	Close() error
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return NewFromClient(client)
}

func NewFromClient(client *redis.Client) IRedis {
	return &redisClient{client: client}
}

func (r *redisClient) PublishStaffCall(ctx context.Context, call StaffCall) error {
	payload, err := json.Marshal(call)
	if err != nil {
		return err
	}

	receivers, err := r.client.Publish(ctx, StaffCallChannel, payload).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error publishing staff call for session %s: %v", call.SessionID, err))
		return err
	}
	logrus.Debug(fmt.Sprintf("Staff call for session %s delivered to %d consoles", call.SessionID, receivers))
	return nil
}

func (r *redisClient) LoginFailures(ctx context.Context, key string) (int64, error) {
	count, err := r.client.Get(ctx, loginFailurePrefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		logrus.Error(fmt.Sprintf("Error reading login failures for %s: %v", key, err))
		return 0, err
	}
	return count, nil
}

// IncrementLoginFailures counts failed logins for key inside a sliding window
// that restarts with the first failure.
func (r *redisClient) IncrementLoginFailures(ctx context.Context, key string, window time.Duration) (int64, error) {
	redisKey := loginFailurePrefix + key

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		logrus.Error(fmt.Sprintf("Error counting login failure for %s: %v", key, err))
		return 0, err
	}
	return incr.Val(), nil
}

func (r *redisClient) ResetLoginFailures(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, loginFailurePrefix+key).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error clearing login failures for %s: %v", key, err))
		return err
	}
	return nil
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
