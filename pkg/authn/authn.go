// Package authn issues and verifies the bearer tokens that carry AuthState.
package authn

import (
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	RoleAdmin  = "admin"
	RoleHR     = "hr"
	RoleViewer = "viewer"
)

var (
	ErrInvalidToken = errors.New("authn: invalid token")
	ErrNoTenant     = errors.New("authn: token has no tenant")
)

// AuthState is the authenticated principal of a request.
type AuthState struct {
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Email    string    `json:"email,omitempty"`
	Roles    []string  `json:"roles"`
}

func (a AuthState) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

type claims struct {
	jwt.RegisteredClaims
	TenantID string   `json:"tid"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles"`
}

// Issuer signs and parses HS256 tokens.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

func (i *Issuer) Issue(state AuthState) (string, error) {
	now := i.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   state.UserID.String(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		TenantID: state.TenantID.String(),
		Email:    state.Email,
		Roles:    state.Roles,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}

func (i *Issuer) Parse(raw string) (AuthState, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return AuthState{}, errors.Wrap(ErrInvalidToken, errString(err))
	}
	if i.issuer != "" && c.Issuer != i.issuer {
		return AuthState{}, errors.Wrap(ErrInvalidToken, "issuer mismatch")
	}
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return AuthState{}, errors.Wrap(ErrInvalidToken, "subject is not a uuid")
	}
	tenantID, err := uuid.Parse(c.TenantID)
	if err != nil || tenantID == uuid.Nil {
		return AuthState{}, ErrNoTenant
	}
	return AuthState{UserID: userID, TenantID: tenantID, Email: c.Email, Roles: c.Roles}, nil
}

func errString(err error) string {
	if err == nil {
		return "token not valid"
	}
	return err.Error()
}
