package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// CSRFHeader is the request header unsafe host requests must carry
const CSRFHeader = "X-CSRF-Token"

// CSRFGenerator derives CSRF tokens from a host token id with HMAC-SHA256,
// so any server instance sharing the secret can validate them.
type CSRFGenerator struct {
	secret []byte
}

func NewCSRFGenerator(secret string) *CSRFGenerator {
	return &CSRFGenerator{secret: []byte(secret)}
}

// GenerateToken returns the CSRF token bound to tokenID
func (g *CSRFGenerator) GenerateToken(tokenID string) (string, error) {
	if tokenID == "" {
		return "", fmt.Errorf("token ID is required")
	}
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte("csrf:" + tokenID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// ValidateToken reports whether csrf is the token bound to tokenID
func (g *CSRFGenerator) ValidateToken(tokenID, csrf string) bool {
	if tokenID == "" || csrf == "" {
		return false
	}
	expected, err := g.GenerateToken(tokenID)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(csrf))
}
