package models

import (
	"time"
)

// AuditEvent records a verification outcome. It is written for operators only;
// verification never reads it back.
type AuditEvent struct {
	ID                 string    `json:"id" dynamodbav:"id"`
	RequestID          string    `json:"request_id,omitempty" dynamodbav:"request_id,omitempty"`
	ChallengeTimestamp int64     `json:"challenge_timestamp" dynamodbav:"challenge_timestamp"`
	Reason             string    `json:"reason" dynamodbav:"reason"`
	Accepted           bool      `json:"accepted" dynamodbav:"accepted"`
	VerifiedAt         time.Time `json:"verified_at" dynamodbav:"verified_at"`
	TTL                int64     `json:"-" dynamodbav:"TTL"`
}

func (e *AuditEvent) GetPK() string {
	return "AUDIT#" + e.VerifiedAt.UTC().Format("2006-01-02")
}

func (e *AuditEvent) GetSK() string {
	return e.VerifiedAt.UTC().Format(time.RFC3339Nano) + "#" + e.ID
}

type OutcomeStats struct {
	Issued   int64 `json:"issued"`
	Accepted int64 `json:"accepted"`
	Expired  int64 `json:"expired"`
	Mismatch int64 `json:"mismatch"`
}
