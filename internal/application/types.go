package application

import (
	"time"
)

// Config carries the tunables every use case shares.
type Config struct {
	AccessTokenTTL  time.Duration
	LoginRateLimit  int
	LoginRateWindow time.Duration
	IdempotencyTTL  time.Duration
}

// DefaultConfig returns the v1 policy values.
func DefaultConfig() Config {
	return Config{
		AccessTokenTTL:  15 * time.Minute,
		LoginRateLimit:  10,
		LoginRateWindow: 60 * time.Second,
		IdempotencyTTL:  10 * time.Minute,
	}
}

// RequestContext is the transient per-call envelope built by the transport
// middleware. It is read-only inside use cases and never persisted; network
// metadata arrives pre-hashed so no plaintext PII crosses this boundary.
type RequestContext struct {
	RequestID     string
	CorrelationID string
	UserID        string
	Stores        []StoreAccess
	IsGuest       bool
	IPHash        string
	UserAgentHash string
}

// StoreAccess mirrors one store claim from the caller's access token.
type StoreAccess struct {
	StoreID string
	Roles   []string
	Scopes  []string
}

type LoginCommand struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type RefreshCommand struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutCommand struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutResult struct {
	Success bool `json:"success"`
}

type RegisterCommand struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	IdempotencyKey string `json:"-"`
}

type RegisterResult struct {
	UserID string `json:"user_id"`
}

// MembershipView is the outward projection of one store binding.
type MembershipView struct {
	MembershipID string   `json:"membership_id,omitempty"`
	UserID       string   `json:"user_id,omitempty"`
	StoreID      string   `json:"store_id"`
	Roles        []string `json:"roles"`
	Scopes       []string `json:"scopes"`
}

type GetMeResult struct {
	UserID      string           `json:"user_id"`
	Email       string           `json:"email"`
	Memberships []MembershipView `json:"memberships"`
}

type GrantMembershipCommand struct {
	UserID         string   `json:"user_id"`
	StoreID        string   `json:"store_id"`
	Roles          []string `json:"roles"`
	Scopes         []string `json:"scopes"`
	IdempotencyKey string   `json:"-"`
}

type GrantMembershipResult struct {
	MembershipID string `json:"membership_id"`
}

// ListMembershipsQuery pages one store's memberships. Limit < 0 means the
// caller supplied none and the default page size applies; explicit values are
// clamped server-side.
type ListMembershipsQuery struct {
	StoreID string
	Limit   int
	Cursor  string
}

type ListMembershipsResult struct {
	Items      []MembershipView `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
