package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload carried by both access and refresh tokens. The
// token itself is the only server-side state: nothing is persisted, so a
// token remains valid until its expiry.
type Claims struct {
	UserID uint64
	Email  string
	Role   string
}

// ErrInvalidToken is returned for tokens with a bad signature, a wrong
// signing method, missing claims or a past expiry.
var ErrInvalidToken = errors.New("invalid or expired token")

// NewAccessToken signs a short-lived HS256 JWT with the access secret.
// TTL is expressed in minutes.
func NewAccessToken(secret string, cl Claims, ttlMin int) (string, error) {
	return signToken(secret, cl, time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken signs a long-lived HS256 JWT with the refresh secret.
// TTL is expressed in days. Access and refresh tokens use distinct
// secrets so one kind can never be replayed as the other.
func NewRefreshToken(secret string, cl Claims, ttlDays int) (string, error) {
	return signToken(secret, cl, time.Duration(ttlDays)*24*time.Hour)
}

func signToken(secret string, cl Claims, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   cl.UserID,
		"email": cl.Email,
		"role":  cl.Role,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifyToken parses and validates a token against the given secret and
// returns its claims. Only HMAC-signed tokens are accepted; expiry is
// checked by the parser.
func VerifyToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	var cl Claims
	switch sub := mc["sub"].(type) {
	case float64:
		cl.UserID = uint64(sub)
	case string:
		if n, err := strconv.ParseUint(sub, 10, 64); err == nil {
			cl.UserID = n
		}
	}
	if cl.UserID == 0 {
		return Claims{}, ErrInvalidToken
	}
	cl.Email, _ = mc["email"].(string)
	cl.Role, _ = mc["role"].(string)
	return cl, nil
}
