package ports

import (
	"time"

	"github.com/storehub/identity/internal/domain"
)

// PasswordHasher produces and verifies Argon2-encoded password hashes.
// Hash output must be accepted by domain.NewPasswordHash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, hash domain.PasswordHash) (bool, error)
}

// RefreshTokenCodec generates opaque high-entropy refresh tokens and hashes
// presented ones. Hash is deterministic and pepper-keyed so the database never
// holds anything usable on its own.
type RefreshTokenCodec interface {
	Generate() (string, error)
	Hash(token string) string
}

// StoreClaim is one tenant entry inside an access token.
type StoreClaim struct {
	StoreID string   `json:"storeId"`
	Roles   []string `json:"roles"`
	Scopes  []string `json:"scopes"`
}

// AccessClaims is the multi-store claim set carried by an access token.
type AccessClaims struct {
	Subject   domain.UserID
	Stores    []StoreClaim
	IssuedAt  time.Time
	ExpiresAt time.Time
	TokenID   string
}

// TokenSigner signs and verifies access tokens. Keys stay at adapter level so
// the application remains crypto-library agnostic.
type TokenSigner interface {
	Sign(claims AccessClaims) (string, error)
	ParseAndValidate(token string) (AccessClaims, error)
}

// IDGenerator mints unique identifiers for sessions, families, and jti values.
type IDGenerator interface {
	NewID() string
}
