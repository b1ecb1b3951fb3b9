package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid download token")
	ErrTokenExpired = errors.New("download token expired")
)

// SignedURLSigner creates and validates signed download tokens bound to a resource
// id and a scope such as "archive".
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate returns a token of the form id.exp.scope.signature.
func (s *SignedURLSigner) Generate(resourceID, scope string) (string, time.Time, error) {
	if resourceID == "" || scope == "" {
		return "", time.Time{}, fmt.Errorf("resource id and scope required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedScope := base64.RawURLEncoding.EncodeToString([]byte(scope))
	token := strings.Join([]string{resourceID, ts, encodedScope, s.sign(resourceID, ts, encodedScope)}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded resource id and scope.
func (s *SignedURLSigner) Parse(token string) (resourceID, scope string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, ErrInvalidToken
	}
	resourceID, ts, encodedScope, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(resourceID, ts, encodedScope)), []byte(signature)) {
		return "", "", time.Time{}, ErrInvalidToken
	}
	rawScope, err := base64.RawURLEncoding.DecodeString(encodedScope)
	if err != nil {
		return "", "", time.Time{}, ErrInvalidToken
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", "", time.Time{}, ErrInvalidToken
	}
	expiresAt = time.Unix(expUnix, 0)
	if s.now().After(expiresAt) {
		return "", "", time.Time{}, ErrTokenExpired
	}
	return resourceID, string(rawScope), expiresAt, nil
}

func (s *SignedURLSigner) sign(resourceID, ts, encodedScope string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(resourceID + "|" + ts + "|" + encodedScope))
	return hex.EncodeToString(mac.Sum(nil))
}
