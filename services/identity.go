// services/identity.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"trivia-match-runtime/apperrors"
	"trivia-match-runtime/models"
	"trivia-match-runtime/storage"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   models.Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Claims are the JWT claims issued at login. Subject carries the user id.
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Identity issues and resolves HS256 bearer tokens.
type Identity struct {
	catalog storage.Catalog
	secret  []byte
	ttl     time.Duration
	clock   clockwork.Clock
}

func NewIdentity(catalog storage.Catalog, secret string, ttl time.Duration, clock clockwork.Clock) *Identity {
	return &Identity{
		catalog: catalog,
		secret:  []byte(secret),
		ttl:     ttl,
		clock:   clock,
	}
}

// Issue signs a token for u.
func (i *Identity) Issue(u *models.User) (string, time.Time, error) {
	now := i.clock.Now()
	expires := now.Add(i.ttl)
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(apperrors.CodeInternal, "sign token", err)
	}
	return token, expires, nil
}

// Resolve validates a token and returns its caller.
func (i *Identity) Resolve(token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, apperrors.New(apperrors.CodeUnauthenticated, "missing bearer token")
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, apperrors.Wrap(apperrors.CodeUnauthenticated, "token expired", err)
		}
		return Principal{}, apperrors.Wrap(apperrors.CodeUnauthenticated, "invalid token", err)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return Principal{}, apperrors.New(apperrors.CodeUnauthenticated, "invalid token claims")
	}
	return Principal{UserID: claims.Subject, Role: claims.Role}, nil
}

// Login checks the password of the user with email and issues a token.
func (i *Identity) Login(ctx context.Context, email, password string) (string, time.Time, *models.User, error) {
	invalid := apperrors.New(apperrors.CodeUnauthenticated, "invalid email or password")

	u, err := i.catalog.GetUserByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", time.Time{}, nil, invalid
	}
	if err != nil {
		return "", time.Time{}, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, nil, invalid
	}

	token, expires, err := i.Issue(u)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expires, u, nil
}
