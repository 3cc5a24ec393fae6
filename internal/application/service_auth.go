package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/storehub/identity/internal/domain"
	"github.com/storehub/identity/internal/ports"
)

// Login verifies credentials and issues an access token plus a fresh
// refresh-token family. Every failure between the rate-limit gate and the
// password check collapses into the same generic ErrInvalidCredentials:
// user-not-found, disabled account, and wrong password must be
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, rc RequestContext, cmd LoginCommand) (LoginResult, error) {
	ipKey := rc.IPHash
	if ipKey == "" {
		ipKey = "unknown"
	}
	if err := s.enforceRateLimit(ctx, "login:ip:"+ipKey, s.cfg.LoginRateLimit, s.cfg.LoginRateWindow); err != nil {
		return LoginResult{}, err
	}

	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return LoginResult{}, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if user == nil {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	if err := user.EnsureActive(); err != nil {
		return LoginResult{}, err
	}

	credential, err := s.credentials.FindPasswordCredentialByUserID(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}
	if credential == nil {
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(cmd.Password, credential.PasswordHash)
	if err != nil {
		return LoginResult{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	memberships, err := s.memberships.ListByUserID(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	now := s.nowFn()
	accessToken, err := s.signer.Sign(s.buildClaims(user.ID, memberships, now))
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.refresh.Generate()
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate refresh token: %w", err)
	}
	tokenHash := s.refresh.Hash(refreshToken)

	familyID, err := domain.NewFamilyID(s.ids.NewID())
	if err != nil {
		return LoginResult{}, err
	}
	session := domain.StartRefreshSession(domain.SessionID(s.ids.NewID()), user.ID, familyID, rc.IPHash, rc.UserAgentHash, now)
	if err := s.sessions.Create(ctx, session, tokenHash); err != nil {
		return LoginResult{}, fmt.Errorf("create refresh session: %w", err)
	}

	if err := s.writeAudit(ctx, rc, auditEntry{actorID: user.ID, action: domain.AuditUserLogin}); err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// Refresh rotates a refresh token. Presenting an already-consumed token is
// treated as theft: the whole family is revoked before the caller gets the
// generic unauthorized answer. Losing the atomic consume race is handled the
// same way, so two concurrent rotations of one token yield exactly one winner.
func (s *Service) Refresh(ctx context.Context, rc RequestContext, cmd RefreshCommand) (LoginResult, error) {
	oldHash := s.refresh.Hash(cmd.RefreshToken)

	record, err := s.sessions.FindByTokenHash(ctx, oldHash)
	if err != nil {
		return LoginResult{}, err
	}
	if record == nil {
		return LoginResult{}, domain.ErrUnauthorized
	}
	if record.RevokedAt != nil {
		return LoginResult{}, domain.ErrUnauthorized
	}
	if record.ConsumedAt != nil {
		return LoginResult{}, s.handleReuse(ctx, rc, record)
	}

	newRefreshToken, err := s.refresh.Generate()
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate refresh token: %w", err)
	}
	newHash := s.refresh.Hash(newRefreshToken)

	now := s.nowFn()
	current := domain.RefreshSession{
		ID:       record.SessionID,
		UserID:   record.UserID,
		FamilyID: record.FamilyID,
	}
	next, _, err := current.Rotate(domain.SessionID(s.ids.NewID()), rc.IPHash, rc.UserAgentHash, now)
	if err != nil {
		return LoginResult{}, domain.ErrUnauthorized
	}

	err = s.sessions.Rotate(ctx, ports.RotateParams{
		OldTokenHash: oldHash,
		NewSession:   next,
		NewTokenHash: newHash,
		Now:          now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTokenConsumed) {
			// A concurrent rotation won the consume; same response as replay.
			return LoginResult{}, s.handleReuse(ctx, rc, record)
		}
		return LoginResult{}, fmt.Errorf("rotate refresh session: %w", err)
	}

	// Claims come from current memberships, not from whatever the original
	// login saw; access changes take effect at the next rotation.
	memberships, err := s.memberships.ListByUserID(ctx, record.UserID)
	if err != nil {
		return LoginResult{}, err
	}
	accessToken, err := s.signer.Sign(s.buildClaims(record.UserID, memberships, now))
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}

	if err := s.writeAudit(ctx, rc, auditEntry{actorID: record.UserID, action: domain.AuditRefreshRotated}); err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// handleReuse revokes the family, audits, and returns the generic failure.
func (s *Service) handleReuse(ctx context.Context, rc RequestContext, record *ports.RefreshSessionRecord) error {
	slog.Default().WarnContext(ctx, "refresh token reuse detected",
		"service", "identity-service",
		"module", "application",
		"layer", "application",
		"operation", "refresh",
		"outcome", "blocked",
		"family_id", record.FamilyID.String(),
	)
	if err := s.sessions.RevokeFamily(ctx, record.UserID, record.FamilyID, s.nowFn()); err != nil {
		return err
	}
	if err := s.writeAudit(ctx, rc, auditEntry{actorID: record.UserID, action: domain.AuditRefreshRevoked}); err != nil {
		return err
	}
	return domain.ErrUnauthorized
}

// Logout revokes the presented token's entire family. Unknown or already-dead
// tokens still succeed: logging out twice is not an error, and the response
// must not reveal whether the token ever existed.
func (s *Service) Logout(ctx context.Context, rc RequestContext, cmd LogoutCommand) (LogoutResult, error) {
	tokenHash := s.refresh.Hash(cmd.RefreshToken)

	record, err := s.sessions.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return LogoutResult{}, err
	}
	if record == nil {
		return LogoutResult{Success: true}, nil
	}

	if err := s.sessions.RevokeFamily(ctx, record.UserID, record.FamilyID, s.nowFn()); err != nil {
		return LogoutResult{}, err
	}
	if err := s.writeAudit(ctx, rc, auditEntry{actorID: record.UserID, action: domain.AuditRefreshRevoked}); err != nil {
		return LogoutResult{}, err
	}
	return LogoutResult{Success: true}, nil
}
