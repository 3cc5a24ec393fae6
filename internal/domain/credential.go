package domain

import "time"

// CredentialProvider tags the verification payload a credential carries.
// Only password exists in v1; federated providers get their own variant later
// without touching the password shape.
type CredentialProvider string

const ProviderPassword CredentialProvider = "password"

// Credential holds per-provider secret material for one user. For the password
// provider that material is exclusively an Argon2 hash; the PasswordHash
// constructor guarantees nothing plaintext can be stored here.
type Credential struct {
	UserID       UserID
	Provider     CredentialProvider
	PasswordHash PasswordHash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewPasswordCredential creates the single password credential for a user.
// Uniqueness per (user, provider) is enforced at the persistence boundary.
func NewPasswordCredential(userID UserID, hash PasswordHash, now time.Time) Credential {
	return Credential{
		UserID:       userID,
		Provider:     ProviderPassword,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ChangePasswordHash swaps the stored hash. No fact is emitted in v1; password
// rotation is audited by the use case that drives it.
func (c *Credential) ChangePasswordHash(hash PasswordHash, now time.Time) {
	c.PasswordHash = hash
	c.UpdatedAt = now
}
