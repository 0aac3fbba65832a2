package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/request-routing/internal"
	userDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/user"
)

// UserSource lists stored users in insertion order.
type UserSource interface {
	ListUsers(ctx context.Context) ([]*userDatamodel.User, error)
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(p internal.Principal) (token string, expiresAt time.Time, err error)
	Verify(token string) (*Claims, error)
}

// ServiceAPI is what the HTTP layer needs from the authenticator.
type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*Session, error)
	VerifyToken(token string) (internal.Principal, error)
}

// SessionUser is the identity returned on login.
type SessionUser struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	RoleLabel  string `json:"role_label"`
	Department string `json:"department"`
}

type Session struct {
	User      SessionUser `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Claims represents JWT token claims
type Claims struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() internal.Principal {
	return internal.Principal{
		Email:      c.Email,
		Name:       c.Name,
		Role:       c.Role,
		Department: c.Department,
	}
}

type JWTTokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTTokenIssuer(secret string, ttl time.Duration) *JWTTokenIssuer {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &JWTTokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (j *JWTTokenIssuer) Issue(p internal.Principal) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(j.ttl)

	claims := &Claims{
		Email:      p.Email,
		Name:       p.Name,
		Role:       p.Role,
		Department: p.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   p.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

func (j *JWTTokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken.Wrap(err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}
