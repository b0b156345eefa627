package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// GenerateAdminKey derives the key that unlocks a poll's vote codes. It is
// deterministic, so nothing but the salt has to be stored.
func GenerateAdminKey(pollID uuid.UUID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(pollID.String()))
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}

func ValidAdminKey(pollID uuid.UUID, adminKey, salt string) bool {
	expected := GenerateAdminKey(pollID, salt)
	return hmac.Equal([]byte(adminKey), []byte(expected))
}

// HashIdentity turns a network address into a stable opaque token so raw
// addresses never reach the store. An empty salt leaves the address as is.
func HashIdentity(ip, salt string) string {
	if salt == "" {
		return ip
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	return hex.EncodeToString(h.Sum(nil)[:16])
}
