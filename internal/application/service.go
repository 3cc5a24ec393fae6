package application

import (
	"time"

	"github.com/storehub/identity/internal/domain"
	"github.com/storehub/identity/internal/ports"
)

// Service hosts every identity use case. Each call is stateless and safe to
// invoke concurrently; the only shared mutable state lives behind the injected
// ports (rate limiter, repositories).
type Service struct {
	cfg         Config
	users       ports.UserRepository
	credentials ports.CredentialRepository
	memberships ports.MembershipRepository
	sessions    ports.RefreshSessionRepository
	audit       ports.AuditLogRepository
	idempotency ports.IdempotencyStore
	limiter     ports.RateLimiter
	hasher      ports.PasswordHasher
	refresh     ports.RefreshTokenCodec
	signer      ports.TokenSigner
	ids         ports.IDGenerator
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Users       ports.UserRepository
	Credentials ports.CredentialRepository
	Memberships ports.MembershipRepository
	Sessions    ports.RefreshSessionRepository
	Audit       ports.AuditLogRepository
	Idempotency ports.IdempotencyStore
	Limiter     ports.RateLimiter
	Hasher      ports.PasswordHasher
	Refresh     ports.RefreshTokenCodec
	Signer      ports.TokenSigner
	IDs         ports.IDGenerator
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.AccessTokenTTL <= 0 {
		cfg = DefaultConfig()
	}
	return &Service{
		cfg:         cfg,
		users:       deps.Users,
		credentials: deps.Credentials,
		memberships: deps.Memberships,
		sessions:    deps.Sessions,
		audit:       deps.Audit,
		idempotency: deps.Idempotency,
		limiter:     deps.Limiter,
		hasher:      deps.Hasher,
		refresh:     deps.Refresh,
		signer:      deps.Signer,
		ids:         deps.IDs,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}

// buildClaims projects a user and its memberships into the multi-store claim
// set. No signing happens here; that stays behind the TokenSigner port.
func (s *Service) buildClaims(userID domain.UserID, memberships []domain.Membership, now time.Time) ports.AccessClaims {
	stores := make([]ports.StoreClaim, 0, len(memberships))
	for _, m := range memberships {
		stores = append(stores, ports.StoreClaim{
			StoreID: m.StoreID.String(),
			Roles:   rolesToStrings(m.Roles),
			Scopes:  scopesToStrings(m.Scopes),
		})
	}
	return ports.AccessClaims{
		Subject:   userID,
		Stores:    stores,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.AccessTokenTTL),
		TokenID:   s.ids.NewID(),
	}
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func scopesToStrings(scopes []domain.Scope) []string {
	out := make([]string, 0, len(scopes))
	for _, sc := range scopes {
		out = append(out, string(sc))
	}
	return out
}
