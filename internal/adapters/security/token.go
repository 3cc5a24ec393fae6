package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const refreshTokenBytes = 48

// RefreshTokenCrypto generates opaque refresh tokens and hashes presented
// ones with a pepper-keyed HMAC. The hash is what gets persisted; a leaked
// database row is useless without the pepper held in configuration.
type RefreshTokenCrypto struct {
	pepper []byte
}

func NewRefreshTokenCrypto(pepper string) *RefreshTokenCrypto {
	return &RefreshTokenCrypto{pepper: []byte(pepper)}
}

func (c *RefreshTokenCrypto) Generate() (string, error) {
	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Hash is deterministic: the same token always maps to the same digest so the
// rotation repository can look sessions up by hash.
func (c *RefreshTokenCrypto) Hash(token string) string {
	mac := hmac.New(sha256.New, c.pepper)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
