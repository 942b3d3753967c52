package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

type UserInfo struct {
	UserID uint `json:"userid"`
}

type Claims struct {
	UserInfo UserInfo `json:"userinfo"`
	jwt.StandardClaims
}

// RevocationStore remembers token ids invalidated by logout until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// IdentityResolver issues and verifies HS256-signed credential tokens.
type IdentityResolver struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

// NewIdentityResolver builds a resolver. revoked may be nil, in which case
// logout only clears the client cookie.
func NewIdentityResolver(secret string, ttl time.Duration, revoked RevocationStore) *IdentityResolver {
	return &IdentityResolver{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

func (r *IdentityResolver) Issue(userID uint) (string, error) {
	now := r.now()
	claims := Claims{
		UserInfo: UserInfo{UserID: userID},
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(r.ttl).Unix(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Resolve returns the user id carried by a valid token. Any defect in the
// token yields ErrUnauthenticated; a failing revocation lookup yields
// ErrUnavailable.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (uint, error) {
	claims, err := r.parse(token)
	if err != nil {
		return 0, err
	}

	if r.revoked != nil && claims.Id != "" {
		revoked, err := r.revoked.IsRevoked(ctx, claims.Id)
		if err != nil {
			return 0, fmt.Errorf("check token revocation: %w: %w", ErrUnavailable, err)
		}
		if revoked {
			return 0, fmt.Errorf("token revoked: %w", ErrUnauthenticated)
		}
	}

	return claims.UserInfo.UserID, nil
}

// Revoke invalidates a still-valid token for the rest of its lifetime.
func (r *IdentityResolver) Revoke(ctx context.Context, token string) error {
	claims, err := r.parse(token)
	if err != nil {
		return err
	}
	if r.revoked == nil || claims.Id == "" {
		return nil
	}
	if err := r.revoked.Revoke(ctx, claims.Id, time.Unix(claims.ExpiresAt, 0)); err != nil {
		return fmt.Errorf("revoke token: %w: %w", ErrUnavailable, err)
	}
	return nil
}

func (r *IdentityResolver) parse(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("missing token: %w", ErrUnauthenticated)
	}

	parser := jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}

	claims := &Claims{}
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return r.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w: %v", ErrUnauthenticated, err)
	}

	if !claims.VerifyExpiresAt(r.now().Unix(), true) {
		return nil, fmt.Errorf("token expired: %w", ErrUnauthenticated)
	}
	if claims.UserInfo.UserID == 0 {
		return nil, fmt.Errorf("token has no user: %w", ErrUnauthenticated)
	}

	return claims, nil
}
