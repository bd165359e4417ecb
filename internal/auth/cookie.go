package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// CookieName is the session cookie holding the signed user id.
const CookieName = "user_id"

var (
	ErrInvalidCookie    = errors.New("invalid cookie format")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Signer signs and verifies cookie values with HMAC-SHA256.
type Signer struct {
	key []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{key: []byte(secret)}
}

func (s *Signer) mac(value string) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(value))
	return mac.Sum(nil)
}

// Sign creates a signed cookie value in the format "value|signature"
func (s *Signer) Sign(value string) string {
	return fmt.Sprintf("%s|%s",
		base64.URLEncoding.EncodeToString([]byte(value)),
		base64.URLEncoding.EncodeToString(s.mac(value)))
}

// Verify checks a value produced by Sign and returns the original value.
func (s *Signer) Verify(signedValue string) (string, error) {
	valueBase64, signatureBase64, ok := strings.Cut(signedValue, "|")
	if !ok || strings.Contains(signatureBase64, "|") {
		return "", ErrInvalidCookie
	}

	valueBytes, err := base64.URLEncoding.DecodeString(valueBase64)
	if err != nil {
		return "", fmt.Errorf("%w: value encoding", ErrInvalidCookie)
	}
	value := string(valueBytes)

	signature, err := base64.URLEncoding.DecodeString(signatureBase64)
	if err != nil {
		return "", fmt.Errorf("%w: signature encoding", ErrInvalidCookie)
	}

	if !hmac.Equal(signature, s.mac(value)) {
		return "", ErrInvalidSignature
	}
	return value, nil
}

// SessionCookie returns the cookie that logs userID in.
func (s *Signer) SessionCookie(userID int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    s.Sign(strconv.Itoa(userID)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedCookie expires the session cookie.
func ClearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}
}

// UserID extracts the logged in user id from r's session cookie.
func (s *Signer) UserID(r *http.Request) (int, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return 0, err
	}
	value, err := s.Verify(cookie.Value)
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: user id", ErrInvalidCookie)
	}
	return id, nil
}
