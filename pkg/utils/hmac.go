package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Errors returned by VerifyOAuthState
var (
	ErrStateMalformed = errors.New("malformed oauth state")
	ErrStateSignature = errors.New("invalid oauth state signature")
	ErrStateExpired   = errors.New("oauth state expired")
)

// ComputeHMAC computes an HMAC-SHA256 signature for a single string
func ComputeHMAC(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// SignOAuthState builds a self-verifying OAuth state value: "<nonce>.<unix ts>.<signature>".
// The callback checks it with VerifyOAuthState, so no server-side state store is needed.
func SignOAuthState(secret string, now time.Time) (string, error) {
	nonce, err := GenerateToken(16)
	if err != nil {
		return "", err
	}
	payload := nonce + "." + strconv.FormatInt(now.Unix(), 10)
	return payload + "." + ComputeHMAC(payload, secret), nil
}

// VerifyOAuthState verifies a state produced by SignOAuthState and rejects it once older than maxAge
func VerifyOAuthState(state, secret string, maxAge time.Duration, now time.Time) error {
	parts := strings.Split(state, ".")
	if len(parts) != 3 {
		return ErrStateMalformed
	}

	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(ComputeHMAC(payload, secret)), []byte(parts[2])) {
		return ErrStateSignature
	}

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ErrStateMalformed
	}
	if now.Sub(time.Unix(ts, 0)) > maxAge {
		return ErrStateExpired
	}
	return nil
}
