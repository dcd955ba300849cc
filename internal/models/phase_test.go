package models

import "testing"

func TestPhase_Next(t *testing.T) {
	tests := []struct {
		name   string
		from   Phase
		ev     PhaseEvent
		want   Phase
		wantOK bool
	}{
		{"issue from start", PhaseUninitialized, EventIssued, PhaseChallengeIssued, true},
		{"accept issued", PhaseChallengeIssued, EventAccepted, PhaseVerified, true},
		{"wrong code keeps challenge", PhaseChallengeIssued, EventRejected, PhaseChallengeIssued, true},
		{"expiry ends challenge", PhaseChallengeIssued, EventExpired, PhaseRejected, true},
		{"accept after expiry", PhaseRejected, EventAccepted, PhaseRejected, false},
		{"reissue", PhaseChallengeIssued, EventIssued, PhaseChallengeIssued, true},
		{"reissue after expiry", PhaseRejected, EventIssued, PhaseChallengeIssued, true},
		{"reset verified", PhaseVerified, EventReset, PhaseUninitialized, true},
		{"accept without challenge", PhaseUninitialized, EventAccepted, PhaseUninitialized, false},
		{"verified is terminal", PhaseVerified, EventIssued, PhaseVerified, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.from.Next(tt.ev)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Next() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPhase_String(t *testing.T) {
	if got := PhaseChallengeIssued.String(); got != "challenge_issued" {
		t.Errorf("String() = %q", got)
	}
	if got := Phase(99).String(); got != "unknown" {
		t.Errorf("String() = %q", got)
	}
}

func TestPhase_RetrySameChallengeAfterWrongCode(t *testing.T) {
	p, ok := PhaseUninitialized.Next(EventIssued)
	if !ok {
		t.Fatal("issue should be allowed")
	}
	p, ok = p.Next(EventRejected)
	if !ok || p != PhaseChallengeIssued {
		t.Fatalf("after wrong code = (%v, %v), want (%v, true)", p, ok, PhaseChallengeIssued)
	}
	p, ok = p.Next(EventAccepted)
	if !ok || p != PhaseVerified {
		t.Errorf("retry = (%v, %v), want (%v, true)", p, ok, PhaseVerified)
	}
}

func TestEventFor(t *testing.T) {
	tests := []struct {
		result VerificationResult
		want   PhaseEvent
	}{
		{VerificationResult{Accepted: true, Reason: "NONE"}, EventAccepted},
		{VerificationResult{Accepted: false, Reason: "EXPIRED"}, EventExpired},
		{VerificationResult{Accepted: false, Reason: "MISMATCH"}, EventRejected},
	}
	for _, tt := range tests {
		if got := EventFor(tt.result); got != tt.want {
			t.Errorf("EventFor(%+v) = %v, want %v", tt.result, got, tt.want)
		}
	}
}
