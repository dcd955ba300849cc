package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vedicotp/vedicotp/internal/clock"
	"github.com/vedicotp/vedicotp/internal/models"
	"github.com/vedicotp/vedicotp/internal/otp"
)

var ErrMissingParameters = errors.New("missing parameters")

// OutcomeRecorder counts issuance and verification outcomes.
type OutcomeRecorder interface {
	RecordIssued(ctx context.Context) error
	RecordOutcome(ctx context.Context, reason otp.Reason) error
}

// AuditWriter persists verification outcomes for operators. Verification never
// reads from it.
type AuditWriter interface {
	Store(ctx context.Context, event models.AuditEvent) error
}

type OTPService struct {
	codec    *otp.Codec
	clock    clock.Clocker
	recorder OutcomeRecorder
	audit    AuditWriter
	logger   *logrus.Logger
}

// NewOTPService wires the codec to its optional sinks. recorder and audit may be nil.
func NewOTPService(codec *otp.Codec, clk clock.Clocker, recorder OutcomeRecorder, audit AuditWriter, logger *logrus.Logger) *OTPService {
	return &OTPService{
		codec:    codec,
		clock:    clk,
		recorder: recorder,
		audit:    audit,
		logger:   logger,
	}
}

func (s *OTPService) Issue(ctx context.Context) (*models.IssuedChallenge, error) {
	timestamp := clock.NowMillis(s.clock)
	challenge := &models.IssuedChallenge{
		Code:      s.codec.Derive(timestamp),
		Timestamp: timestamp,
	}

	if s.recorder != nil {
		if err := s.recorder.RecordIssued(ctx); err != nil {
			s.logger.WithError(err).Warn("Failed to record OTP issuance")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": RequestIDFromContext(ctx),
		"timestamp":  timestamp,
	}).Info("OTP issued")

	return challenge, nil
}

func (s *OTPService) Verify(ctx context.Context, req models.VerificationRequest) (*models.VerificationResult, error) {
	if req.PresentedCode == "" || req.Timestamp <= 0 {
		return nil, ErrMissingParameters
	}

	now := s.clock.Now()
	result := s.codec.Verify(req.Timestamp, req.PresentedCode, now.UnixMilli())

	fields := logrus.Fields{
		"request_id": RequestIDFromContext(ctx),
		"timestamp":  req.Timestamp,
		"elapsed_ms": now.UnixMilli() - req.Timestamp,
		"reason":     result.Reason,
	}
	if result.Accepted {
		s.logger.WithFields(fields).Info("OTP verified")
	} else {
		s.logger.WithFields(fields).Info("OTP rejected")
	}

	if s.recorder != nil {
		if err := s.recorder.RecordOutcome(ctx, result.Reason); err != nil {
			s.logger.WithError(err).Warn("Failed to record OTP outcome")
		}
	}

	if s.audit != nil {
		event := models.AuditEvent{
			ID:                 uuid.New().String(),
			RequestID:          RequestIDFromContext(ctx),
			ChallengeTimestamp: req.Timestamp,
			Reason:             string(result.Reason),
			Accepted:           result.Accepted,
			VerifiedAt:         now.UTC().Truncate(time.Millisecond),
		}
		if err := s.audit.Store(ctx, event); err != nil {
			s.logger.WithError(err).Warn("Failed to write OTP audit event")
		}
	}

	return &models.VerificationResult{
		Accepted: result.Accepted,
		Reason:   string(result.Reason),
	}, nil
}

func (s *OTPService) ValidityWindow() time.Duration {
	return time.Duration(s.codec.ValidityMs()) * time.Millisecond
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
