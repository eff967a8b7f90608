package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookie is the cookie carrying the signed session token.
	SessionCookie = "token"
	// SessionTTL matches the 365-day expiry the site has always issued.
	SessionTTL = 365 * 24 * time.Hour
)

// SessionService signs and verifies session tokens with a shared secret.
type SessionService struct {
	secret []byte
	now    func() time.Time
}

func NewSessionService(secret string) *SessionService {
	return &SessionService{secret: []byte(secret), now: time.Now}
}

// Issue signs an arbitrary claim set. Any exp/iat supplied by the caller is overwritten.
func (s *SessionService) Issue(claims map[string]interface{}) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("session secret not configured")
	}
	now := s.now()
	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	mc["iat"] = now.Unix()
	mc["exp"] = now.Add(SessionTTL).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the decoded claims.
func (s *SessionService) Verify(tokenString string) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token: %w", ErrUnauthenticated)
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", ErrUnauthenticated)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims: %w", ErrUnauthenticated)
	}
	return claims, nil
}

// ClaimEmail returns the email claim, if any.
func ClaimEmail(claims jwt.MapClaims) string {
	email, _ := claims["email"].(string)
	return email
}
