package models

// Phase is the caller-side progress through one challenge. The server never
// tracks it; collaborators such as a UI hold it.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseChallengeIssued
	PhaseVerified
	PhaseRejected
)

type PhaseEvent int

const (
	EventIssued PhaseEvent = iota
	EventAccepted
	// EventRejected is a wrong code; the same challenge may be retried.
	EventRejected
	// EventExpired ends the challenge; a new one must be issued.
	EventExpired
	EventReset
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseChallengeIssued:
		return "challenge_issued"
	case PhaseVerified:
		return "verified"
	case PhaseRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Next returns the phase after ev. Events that make no sense in the current
// phase leave it unchanged and report false.
func (p Phase) Next(ev PhaseEvent) (Phase, bool) {
	if ev == EventReset {
		return PhaseUninitialized, true
	}
	switch p {
	case PhaseUninitialized, PhaseRejected:
		if ev == EventIssued {
			return PhaseChallengeIssued, true
		}
	case PhaseChallengeIssued:
		switch ev {
		case EventIssued:
			// requesting a fresh code replaces the previous one
			return PhaseChallengeIssued, true
		case EventAccepted:
			return PhaseVerified, true
		case EventRejected:
			return PhaseChallengeIssued, true
		case EventExpired:
			return PhaseRejected, true
		}
	}
	return p, false
}

// EventFor maps a verification reason ("NONE", "EXPIRED", "MISMATCH") to the
// caller-side event.
func EventFor(result VerificationResult) PhaseEvent {
	switch {
	case result.Accepted:
		return EventAccepted
	case result.Reason == "EXPIRED":
		return EventExpired
	default:
		return EventRejected
	}
}
