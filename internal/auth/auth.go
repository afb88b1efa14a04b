package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookie is where the signed session token lives in the browser.
const SessionCookie = "gm_session"

// ContextEmailKey is set on the gin context after a successful check.
const ContextEmailKey = "session_email"

var ErrInvalidToken = errors.New("invalid session token")

// Service implements the login gate: members exchange the community access
// code for a signed session token, and the chat endpoints require that token.
type Service struct {
	secret     []byte
	ttl        time.Duration
	accessCode string
}

func NewService(secret, accessCode string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is empty, did you load the .env file?")
	}
	if accessCode == "" {
		return nil, errors.New("COMMUNITY_ACCESS_CODE is empty, did you load the .env file?")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{secret: []byte(secret), ttl: ttl, accessCode: accessCode}, nil
}

// CheckAccessCode compares in constant time so the code can't be guessed
// byte by byte.
func (s *Service) CheckAccessCode(code string) bool {
	return subtle.ConstantTimeCompare([]byte(code), []byte(s.accessCode)) == 1
}

// TTL reports how long issued sessions last.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// IssueToken mints a session token for the given member email (may be empty).
func (s *Service) IssueToken(email string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   email,
		Issuer:    "garjemarathi-community-agent",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// ParseToken validates signature, method and expiry.
func (s *Service) ParseToken(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequireSession guards API routes. Accepts the session cookie or an
// Authorization: Bearer header; aborts 401 otherwise.
func (s *Service) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := s.sessionFromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}
		c.Set(ContextEmailKey, claims.Subject)
		c.Next()
	}
}

// RequireSessionPage guards rendered pages: no session means a redirect to
// the login page instead of a JSON error.
func (s *Service) RequireSessionPage(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := s.sessionFromRequest(c)
		if err != nil {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Set(ContextEmailKey, claims.Subject)
		c.Next()
	}
}

func (s *Service) sessionFromRequest(c *gin.Context) (*jwt.RegisteredClaims, error) {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return s.ParseToken(cookie)
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return s.ParseToken(strings.TrimPrefix(header, "Bearer "))
	}
	return nil, ErrInvalidToken
}
