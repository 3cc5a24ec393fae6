package application

import (
	"context"
	"fmt"

	"github.com/storehub/identity/internal/domain"
)

// Register creates a user plus its password credential inside an idempotency
// envelope: replaying the same key returns the first result without touching
// storage again. Duplicate emails answer with a conflict; enumeration risk on
// registration is an accepted trade-off.
func (s *Service) Register(ctx context.Context, rc RequestContext, cmd RegisterCommand) (RegisterResult, error) {
	if cmd.IdempotencyKey == "" {
		return RegisterResult{}, fmt.Errorf("%w: idempotency key is required", domain.ErrInvalidInput)
	}

	return runIdempotent(ctx, s.idempotency, s.nowFn, "register:"+cmd.IdempotencyKey, s.cfg.IdempotencyTTL, func() (RegisterResult, error) {
		email, err := domain.NewEmail(cmd.Email)
		if err != nil {
			return RegisterResult{}, err
		}

		existing, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return RegisterResult{}, err
		}
		if existing != nil {
			return RegisterResult{}, fmt.Errorf("%w: user already exists", domain.ErrConflict)
		}

		if err := domain.ValidatePassword(cmd.Password); err != nil {
			return RegisterResult{}, err
		}

		encoded, err := s.hasher.Hash(cmd.Password)
		if err != nil {
			return RegisterResult{}, fmt.Errorf("hash password: %w", err)
		}
		passwordHash, err := domain.NewPasswordHash(encoded)
		if err != nil {
			return RegisterResult{}, err
		}

		userID, err := domain.NewUserID(s.ids.NewID())
		if err != nil {
			return RegisterResult{}, err
		}
		now := s.nowFn()
		user, _ := domain.RegisterUser(userID, email, now)
		credential := domain.NewPasswordCredential(userID, passwordHash, now)

		if err := s.users.Save(ctx, user); err != nil {
			return RegisterResult{}, err
		}
		if err := s.credentials.Save(ctx, credential); err != nil {
			return RegisterResult{}, err
		}

		// The audit payload carries no email; the actor id is enough.
		if err := s.writeAudit(ctx, rc, auditEntry{actorID: userID, action: domain.AuditUserRegistered}); err != nil {
			return RegisterResult{}, err
		}

		return RegisterResult{UserID: userID.String()}, nil
	})
}

// GetMe returns the caller's identity and full membership list. A valid token
// whose user record has vanished answers unauthorized, forcing re-auth rather
// than explaining the desync.
func (s *Service) GetMe(ctx context.Context, rc RequestContext) (GetMeResult, error) {
	if rc.IsGuest || rc.UserID == "" {
		return GetMeResult{}, domain.ErrUnauthorized
	}

	userID, err := domain.NewUserID(rc.UserID)
	if err != nil {
		return GetMeResult{}, domain.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return GetMeResult{}, err
	}
	if user == nil || !user.IsActive {
		return GetMeResult{}, domain.ErrUnauthorized
	}

	memberships, err := s.memberships.ListByUserID(ctx, userID)
	if err != nil {
		return GetMeResult{}, err
	}

	views := make([]MembershipView, 0, len(memberships))
	for _, m := range memberships {
		views = append(views, MembershipView{
			StoreID: m.StoreID.String(),
			Roles:   rolesToStrings(m.Roles),
			Scopes:  scopesToStrings(m.Scopes),
		})
	}

	return GetMeResult{
		UserID:      user.ID.String(),
		Email:       user.Email.String(),
		Memberships: views,
	}, nil
}
