package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vedicotp/vedicotp/internal/clock"
	"github.com/vedicotp/vedicotp/internal/config"
	"github.com/vedicotp/vedicotp/internal/models"
)

const tokenTypeAccess = "access"

var ErrInvalidToken = errors.New("invalid token")

// SessionService issues signed bearer tokens after a successful verification.
// Tokens are self-contained; nothing is stored server side.
type SessionService struct {
	secretKey []byte
	expiry    time.Duration
	clock     clock.Clocker
	logger    *logrus.Logger
}

func NewSessionService(cfg *config.SessionConfig, clk clock.Clocker, logger *logrus.Logger) (*SessionService, error) {
	secretKey := []byte(cfg.SecretKey)
	if len(secretKey) < 32 {
		return nil, fmt.Errorf("secret key must be at least 32 bytes")
	}

	return &SessionService{
		secretKey: secretKey,
		expiry:    cfg.Expiry,
		clock:     clk,
		logger:    logger,
	}, nil
}

type Claims struct {
	Type               string `json:"type"`
	JTI                string `json:"jti"`
	ChallengeTimestamp int64  `json:"challenge_ts"`
	jwt.RegisteredClaims
}

func (s *SessionService) Issue(challengeTimestamp int64) (*models.SessionToken, error) {
	now := s.clock.Now()
	jti := uuid.New().String()

	claims := &Claims{
		Type:               tokenTypeAccess,
		JTI:                jti,
		ChallengeTimestamp: challengeTimestamp,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.WithError(err).Error("Failed to sign session token")
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &models.SessionToken{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.expiry.Seconds()),
	}, nil
}

func (s *SessionService) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.clock.Now))

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != tokenTypeAccess {
		return nil, fmt.Errorf("%w: unexpected token type %q", ErrInvalidToken, claims.Type)
	}

	return claims, nil
}

func GenerateSecretKey() (string, error) {
	key := make([]byte, 32) // 256 bits
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(key), nil
}
