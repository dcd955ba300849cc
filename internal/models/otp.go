package models

// IssuedChallenge is handed to the caller and never stored server side.
type IssuedChallenge struct {
	Code      string `json:"otp"`
	Timestamp int64  `json:"timestamp"`
}

// VerificationRequest carries the echoed timestamp and the code the user typed.
// JSON names match the web client.
type VerificationRequest struct {
	PresentedCode string `json:"userOtp" validate:"required"`
	Timestamp     int64  `json:"timestamp" validate:"required,gt=0"`
}

type VerificationResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason"`
}
