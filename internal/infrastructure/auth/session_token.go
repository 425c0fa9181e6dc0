package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingSessionID = errors.New("missing sid in claims")
)

// SessionClaims are the claims of a session cookie token
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// SessionTokenService issues and verifies signed session tokens
type SessionTokenService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	now        func() time.Time
}

// NewSessionTokenService creates a new session token service. Without a
// configured secret a random one is used, so tokens do not survive a restart.
func NewSessionTokenService(cfg config.SessionConfig) *SessionTokenService {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = []byte(uuid.NewString() + uuid.NewString())
	}
	return &SessionTokenService{
		secret:     secret,
		issuer:     cfg.Issuer,
		expiration: cfg.TTL,
		now:        time.Now,
	}
}

// NewSessionID returns a fresh random session id
func NewSessionID() string {
	return uuid.NewString()
}

// Issue signs a token for sessionID that expires with the session
func (s *SessionTokenService) Issue(sessionID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiration)
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		SessionID: sessionID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify checks the token signature and lifetime and returns its session id
func (s *SessionTokenService) Verify(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return "", ErrTokenNotYetValid
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidClaims
	}
	if claims.SessionID == "" {
		return "", ErrMissingSessionID
	}
	return claims.SessionID, nil
}
