package security

import "github.com/google/uuid"

// UUIDGenerator mints v4 UUIDs for session ids, family ids, and jti values.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

func (UUIDGenerator) NewID() string { return uuid.NewString() }
