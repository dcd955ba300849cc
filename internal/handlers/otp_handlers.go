package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/vedicotp/vedicotp/internal/clock"
	"github.com/vedicotp/vedicotp/internal/middleware"
	"github.com/vedicotp/vedicotp/internal/models"
	"github.com/vedicotp/vedicotp/internal/otp"
	"github.com/vedicotp/vedicotp/internal/repository"
	"github.com/vedicotp/vedicotp/internal/service"
)

const (
	messageMissingParameters = "Missing parameters"
	messageExpired           = "OTP expired"
	messageInvalid           = "Invalid OTP"

	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type OTPHandlers struct {
	otpService     *service.OTPService
	sessionService *service.SessionService
	statsService   *service.StatsService
	auditRepo      *repository.AuditRepository
	clock          clock.Clocker
	validate       *validator.Validate
	logger         *logrus.Logger
}

// NewOTPHandlers builds the HTTP layer. statsService and auditRepo may be nil.
func NewOTPHandlers(
	otpService *service.OTPService,
	sessionService *service.SessionService,
	statsService *service.StatsService,
	auditRepo *repository.AuditRepository,
	clk clock.Clocker,
	logger *logrus.Logger,
) *OTPHandlers {
	return &OTPHandlers{
		otpService:     otpService,
		sessionService: sessionService,
		statsService:   statsService,
		auditRepo:      auditRepo,
		clock:          clk,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		logger:         logger,
	}
}

type VerifyOTPResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	Reason      string `json:"reason,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

type SessionResponse struct {
	JTI                string    `json:"jti"`
	ChallengeTimestamp int64     `json:"challenge_timestamp"`
	ExpiresAt          time.Time `json:"expires_at"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *OTPHandlers) GenerateOTP(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.otpService.Issue(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate OTP")
		h.respondWithError(w, http.StatusInternalServerError, "OTP_GENERATION_FAILED", "Failed to generate OTP")
		return
	}

	h.respondWithJSON(w, http.StatusOK, challenge)
}

func (h *OTPHandlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Debug("Failed to decode verify request")
		h.respondMissingParameters(w)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.logger.WithError(err).Debug("Verify request failed validation")
		h.respondMissingParameters(w)
		return
	}

	result, err := h.otpService.Verify(r.Context(), req)
	if errors.Is(err, service.ErrMissingParameters) {
		h.respondMissingParameters(w)
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to verify OTP")
		h.respondWithError(w, http.StatusInternalServerError, "OTP_VERIFICATION_FAILED", "Failed to verify OTP")
		return
	}

	switch otp.Reason(result.Reason) {
	case otp.ReasonExpired:
		h.respondWithJSON(w, http.StatusOK, VerifyOTPResponse{Success: false, Message: messageExpired, Reason: result.Reason})
		return
	case otp.ReasonMismatch:
		h.respondWithJSON(w, http.StatusOK, VerifyOTPResponse{Success: false, Message: messageInvalid, Reason: result.Reason})
		return
	}

	token, err := h.sessionService.Issue(req.Timestamp)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue session token")
		h.respondWithError(w, http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", "Failed to generate token")
		return
	}

	h.respondWithJSON(w, http.StatusOK, VerifyOTPResponse{
		Success:     true,
		Reason:      result.Reason,
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
	})
}

func (h *OTPHandlers) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
		return
	}

	resp := SessionResponse{
		JTI:                claims.JTI,
		ChallengeTimestamp: claims.ChallengeTimestamp,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	h.respondWithJSON(w, http.StatusOK, resp)
}

func (h *OTPHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	if h.statsService == nil {
		h.respondWithJSON(w, http.StatusOK, models.OutcomeStats{})
		return
	}

	stats, err := h.statsService.Snapshot(r.Context())
	if err != nil {
		h.respondWithError(w, http.StatusServiceUnavailable, "STATS_UNAVAILABLE", "Failed to read stats")
		return
	}
	h.respondWithJSON(w, http.StatusOK, stats)
}

func (h *OTPHandlers) Audit(w http.ResponseWriter, r *http.Request) {
	if h.auditRepo == nil {
		h.respondWithError(w, http.StatusNotFound, "AUDIT_DISABLED", "Audit log is not configured")
		return
	}

	limit := defaultAuditLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxAuditLimit {
			h.respondWithError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	day := h.clock.Now().UTC()
	if v := r.URL.Query().Get("day"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.respondWithError(w, http.StatusBadRequest, "INVALID_DAY", "day must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	events, err := h.auditRepo.ListRecent(r.Context(), day, int32(limit))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list audit events")
		h.respondWithError(w, http.StatusServiceUnavailable, "AUDIT_UNAVAILABLE", "Failed to read audit log")
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (h *OTPHandlers) respondMissingParameters(w http.ResponseWriter) {
	h.respondWithJSON(w, http.StatusBadRequest, VerifyOTPResponse{Success: false, Message: messageMissingParameters})
}

func (h *OTPHandlers) respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *OTPHandlers) respondWithError(w http.ResponseWriter, status int, code, message string) {
	h.respondWithJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
