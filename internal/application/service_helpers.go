package application

import (
	"context"
	"fmt"
	"time"

	"github.com/storehub/identity/internal/domain"
)

// enforceRateLimit applies a fixed-window counter check. The check is a hard
// gate: a limiter backend failure propagates and blocks the call, it never
// degrades into an unlimited path.
func (s *Service) enforceRateLimit(ctx context.Context, key string, limit int, window time.Duration) error {
	if s.limiter == nil || limit <= 0 || window <= 0 {
		return nil
	}
	count, err := s.limiter.Hit(ctx, key, window)
	if err != nil {
		return fmt.Errorf("rate limit check: %w", err)
	}
	if count > int64(limit) {
		return domain.ErrRateLimited
	}
	return nil
}

type auditEntry struct {
	actorID    domain.UserID
	action     domain.AuditAction
	storeID    *domain.StoreID
	targetType *domain.AuditTargetType
	targetID   string
}

// writeAudit appends an audit record built from the request context. Only
// hashed network metadata crosses into storage.
func (s *Service) writeAudit(ctx context.Context, rc RequestContext, entry auditEntry) error {
	correlationID, err := domain.NewCorrelationID(rc.CorrelationID)
	if err != nil {
		return err
	}
	return s.audit.Append(ctx, domain.AuditLog{
		ActorID:       entry.actorID,
		Action:        entry.action,
		StoreID:       entry.storeID,
		TargetType:    entry.targetType,
		TargetID:      entry.targetID,
		CorrelationID: correlationID,
		IPHash:        rc.IPHash,
		UserAgentHash: rc.UserAgentHash,
		CreatedAt:     s.nowFn(),
	})
}

// actorAccess lifts the token's store claims into the shape CanManageStore
// expects: the distinct roles held anywhere, and the ids of stores where the
// actor holds STORE_ADMIN. Unknown roles pass through untouched; the policy
// treats them as no grant, so lenient conversion here keeps the decision total.
func actorAccess(rc RequestContext) ([]domain.Role, []domain.StoreID) {
	var roles []domain.Role
	var storeIDs []domain.StoreID
	seen := make(map[domain.Role]struct{})
	for _, st := range rc.Stores {
		for _, r := range st.Roles {
			role := domain.Role(r)
			if _, ok := seen[role]; !ok {
				seen[role] = struct{}{}
				roles = append(roles, role)
			}
			if role == domain.RoleStoreAdmin {
				storeIDs = append(storeIDs, domain.StoreID(st.StoreID))
			}
		}
	}
	return roles, storeIDs
}
