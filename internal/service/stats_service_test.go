package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vedicotp/vedicotp/internal/otp"
)

func TestStatsService_Disabled(t *testing.T) {
	svc := NewStatsService(nil, discardLogger())
	ctx := context.Background()

	if svc.Enabled() {
		t.Fatal("Enabled() = true for nil client")
	}
	if err := svc.RecordIssued(ctx); err != nil {
		t.Errorf("RecordIssued: %v", err)
	}
	if err := svc.RecordOutcome(ctx, otp.ReasonExpired); err != nil {
		t.Errorf("RecordOutcome: %v", err)
	}
	stats, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if stats.Issued != 0 || stats.Accepted != 0 || stats.Expired != 0 || stats.Mismatch != 0 {
		t.Errorf("Snapshot = %+v, want zeroes", stats)
	}
}

func TestStatsService_UnknownOutcome(t *testing.T) {
	svc := NewStatsService(nil, discardLogger())
	if err := svc.RecordOutcome(context.Background(), otp.Reason("BOGUS")); err == nil {
		t.Error("RecordOutcome should reject an unknown reason")
	}
}

func TestStatsService_UnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	svc := NewStatsService(client, discardLogger())
	ctx := context.Background()

	if err := svc.RecordIssued(ctx); err == nil {
		t.Error("RecordIssued should fail when Redis is unreachable")
	}
	if _, err := svc.Snapshot(ctx); err == nil {
		t.Error("Snapshot should fail when Redis is unreachable")
	}
}

func TestOutcomeKey(t *testing.T) {
	tests := []struct {
		reason otp.Reason
		want   string
	}{
		{otp.ReasonNone, statsKeyAccepted},
		{otp.ReasonExpired, statsKeyExpired},
		{otp.ReasonMismatch, statsKeyMismatch},
	}
	for _, tt := range tests {
		got, err := outcomeKey(tt.reason)
		if err != nil || got != tt.want {
			t.Errorf("outcomeKey(%s) = (%q, %v), want %q", tt.reason, got, err, tt.want)
		}
	}
}
