package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vedicotp/vedicotp/internal/models"
	"github.com/vedicotp/vedicotp/internal/otp"
)

const (
	statsKeyIssued   = "otp:stats:issued"
	statsKeyAccepted = "otp:stats:accepted"
	statsKeyExpired  = "otp:stats:expired"
	statsKeyMismatch = "otp:stats:mismatch"
)

// StatsService keeps aggregate counters in Redis. A nil client disables it.
type StatsService struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewStatsService(client *redis.Client, logger *logrus.Logger) *StatsService {
	return &StatsService{
		client: client,
		logger: logger,
	}
}

func (s *StatsService) Enabled() bool {
	return s.client != nil
}

func (s *StatsService) RecordIssued(ctx context.Context) error {
	return s.incr(ctx, statsKeyIssued)
}

func (s *StatsService) RecordOutcome(ctx context.Context, reason otp.Reason) error {
	key, err := outcomeKey(reason)
	if err != nil {
		return err
	}
	return s.incr(ctx, key)
}

func (s *StatsService) Snapshot(ctx context.Context) (*models.OutcomeStats, error) {
	stats := &models.OutcomeStats{}
	if !s.Enabled() {
		return stats, nil
	}

	values, err := s.client.MGet(ctx, statsKeyIssued, statsKeyAccepted, statsKeyExpired, statsKeyMismatch).Result()
	if err != nil {
		s.logger.WithError(err).Error("Failed to read OTP stats from Redis")
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}

	counters := []*int64{&stats.Issued, &stats.Accepted, &stats.Expired, &stats.Mismatch}
	for i, v := range values {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stats counter: %w", err)
		}
		*counters[i] = n
	}

	return stats, nil
}

func (s *StatsService) incr(ctx context.Context, key string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to increment %s: %w", key, err)
	}
	return nil
}

func outcomeKey(reason otp.Reason) (string, error) {
	switch reason {
	case otp.ReasonNone:
		return statsKeyAccepted, nil
	case otp.ReasonExpired:
		return statsKeyExpired, nil
	case otp.ReasonMismatch:
		return statsKeyMismatch, nil
	default:
		return "", fmt.Errorf("unknown outcome %q", reason)
	}
}
