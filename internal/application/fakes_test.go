package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/storehub/identity/internal/domain"
	"github.com/storehub/identity/internal/ports"
)

// In-memory port implementations for use-case tests. They mimic the
// persistence contracts (conditional consume, conditional reserve, unique
// keys) without a database.

type memUsers struct {
	items map[domain.UserID]domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{items: map[domain.UserID]domain.User{}}
}

func (r *memUsers) FindByEmail(_ context.Context, email domain.Email) (*domain.User, error) {
	for _, u := range r.items {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUsers) FindByID(_ context.Context, userID domain.UserID) (*domain.User, error) {
	u, ok := r.items[userID]
	if !ok {
		return nil, nil
	}
	copied := u
	return &copied, nil
}

func (r *memUsers) Save(_ context.Context, user domain.User) error {
	for id, u := range r.items {
		if id != user.ID && u.Email == user.Email {
			return domain.ErrConflict
		}
	}
	r.items[user.ID] = user
	return nil
}

type memCredentials struct {
	items map[domain.UserID]domain.Credential
}

func newMemCredentials() *memCredentials {
	return &memCredentials{items: map[domain.UserID]domain.Credential{}}
}

func (r *memCredentials) FindPasswordCredentialByUserID(_ context.Context, userID domain.UserID) (*domain.Credential, error) {
	c, ok := r.items[userID]
	if !ok || c.Provider != domain.ProviderPassword {
		return nil, nil
	}
	copied := c
	return &copied, nil
}

func (r *memCredentials) Save(_ context.Context, credential domain.Credential) error {
	r.items[credential.UserID] = credential
	return nil
}

type memMemberships struct {
	items     map[domain.MembershipID]domain.Membership
	saveCalls int
}

func newMemMemberships() *memMemberships {
	return &memMemberships{items: map[domain.MembershipID]domain.Membership{}}
}

func (r *memMemberships) ListByUserID(_ context.Context, userID domain.UserID) ([]domain.Membership, error) {
	var out []domain.Membership
	for _, m := range r.items {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memMemberships) FindByUserAndStore(_ context.Context, userID domain.UserID, storeID domain.StoreID) (*domain.Membership, error) {
	for _, m := range r.items {
		if m.UserID == userID && m.StoreID == storeID {
			copied := m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memMemberships) Save(_ context.Context, membership domain.Membership) error {
	r.saveCalls++
	for id, m := range r.items {
		if id != membership.ID && m.UserID == membership.UserID && m.StoreID == membership.StoreID {
			return domain.ErrConflict
		}
	}
	r.items[membership.ID] = membership
	return nil
}

func (r *memMemberships) ListByStore(_ context.Context, storeID domain.StoreID, limit int, cursor string) (ports.MembershipPage, error) {
	var matching []domain.Membership
	for _, m := range r.items {
		if m.StoreID == storeID && string(m.ID) > cursor {
			matching = append(matching, m)
		}
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i].ID < matching[j].ID })

	page := ports.MembershipPage{}
	if limit > 0 && len(matching) > limit {
		matching = matching[:limit]
	}
	page.Items = matching
	if limit > 0 && len(matching) == limit {
		page.NextCursor = string(matching[len(matching)-1].ID)
	}
	return page, nil
}

type sessionRow struct {
	tokenHash  string
	session    domain.RefreshSession
	consumedAt *time.Time
}

type memSessions struct {
	rows           []*sessionRow
	forceRotateErr error
}

func newMemSessions() *memSessions {
	return &memSessions{}
}

func (r *memSessions) find(tokenHash string) *sessionRow {
	for _, row := range r.rows {
		if row.tokenHash == tokenHash {
			return row
		}
	}
	return nil
}

func (r *memSessions) FindByTokenHash(_ context.Context, tokenHash string) (*ports.RefreshSessionRecord, error) {
	row := r.find(tokenHash)
	if row == nil {
		return nil, nil
	}
	return &ports.RefreshSessionRecord{
		SessionID:  row.session.ID,
		UserID:     row.session.UserID,
		FamilyID:   row.session.FamilyID,
		ConsumedAt: row.consumedAt,
		RevokedAt:  row.session.RevokedAt,
	}, nil
}

func (r *memSessions) Create(_ context.Context, session domain.RefreshSession, tokenHash string) error {
	if r.find(tokenHash) != nil {
		return domain.ErrConflict
	}
	r.rows = append(r.rows, &sessionRow{tokenHash: tokenHash, session: session})
	return nil
}

func (r *memSessions) Rotate(_ context.Context, params ports.RotateParams) error {
	if r.forceRotateErr != nil {
		return r.forceRotateErr
	}
	row := r.find(params.OldTokenHash)
	if row == nil || row.consumedAt != nil || row.session.RevokedAt != nil {
		return domain.ErrTokenConsumed
	}
	at := params.Now
	row.consumedAt = &at
	r.rows = append(r.rows, &sessionRow{tokenHash: params.NewTokenHash, session: params.NewSession})
	return nil
}

func (r *memSessions) RevokeFamily(_ context.Context, userID domain.UserID, familyID domain.FamilyID, at time.Time) error {
	for _, row := range r.rows {
		if row.session.UserID == userID && row.session.FamilyID == familyID && row.session.RevokedAt == nil {
			stamped := at
			row.session.RevokedAt = &stamped
		}
	}
	return nil
}

type memAudit struct {
	entries []domain.AuditLog
}

func (r *memAudit) Append(_ context.Context, entry domain.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memAudit) actions() []domain.AuditAction {
	out := make([]domain.AuditAction, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

func (r *memAudit) countAction(action domain.AuditAction) int {
	n := 0
	for _, e := range r.entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

type memIdempotency struct {
	items      map[string]*ports.IdempotencyRecord
	nowFn      func() time.Time
	reserveErr error
}

func newMemIdempotency(nowFn func() time.Time) *memIdempotency {
	return &memIdempotency{items: map[string]*ports.IdempotencyRecord{}, nowFn: nowFn}
}

func (r *memIdempotency) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	rec, ok := r.items[key]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (r *memIdempotency) Reserve(_ context.Context, key string, expiresAt time.Time) error {
	if r.reserveErr != nil {
		return r.reserveErr
	}
	if rec, ok := r.items[key]; ok && rec.ExpiresAt.After(r.nowFn()) {
		return domain.ErrConflict
	}
	now := r.nowFn()
	r.items[key] = &ports.IdempotencyRecord{
		Key:       key,
		Status:    ports.IdempotencyPending,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (r *memIdempotency) Complete(_ context.Context, key string, responseBody []byte, at time.Time) error {
	rec, ok := r.items[key]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Status = ports.IdempotencyCompleted
	rec.ResponseBody = append([]byte(nil), responseBody...)
	rec.UpdatedAt = at
	return nil
}

type memLimiter struct {
	counts map[string]int64
	err    error
}

func newMemLimiter() *memLimiter {
	return &memLimiter{counts: map[string]int64{}}
}

func (l *memLimiter) Hit(_ context.Context, key string, _ time.Duration) (int64, error) {
	if l.err != nil {
		return 0, l.err
	}
	l.counts[key]++
	return l.counts[key], nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "$argon2id$fake$" + password, nil
}

func (fakeHasher) Verify(password string, hash domain.PasswordHash) (bool, error) {
	return hash.String() == "$argon2id$fake$"+password, nil
}

type fakeRefreshCodec struct {
	n int
}

func (c *fakeRefreshCodec) Generate() (string, error) {
	c.n++
	return fmt.Sprintf("refresh-token-%d", c.n), nil
}

func (c *fakeRefreshCodec) Hash(token string) string {
	return "hash:" + token
}

type fakeSigner struct{}

// Sign encodes just enough structure for assertions: the subject plus the
// store ids the claims carry.
func (fakeSigner) Sign(claims ports.AccessClaims) (string, error) {
	storeIDs := make([]string, 0, len(claims.Stores))
	for _, st := range claims.Stores {
		storeIDs = append(storeIDs, st.StoreID)
	}
	return fmt.Sprintf("jwt|%s|%s", claims.Subject, strings.Join(storeIDs, ",")), nil
}

func (fakeSigner) ParseAndValidate(token string) (ports.AccessClaims, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 3 {
		return ports.AccessClaims{}, domain.ErrUnauthorized
	}
	return ports.AccessClaims{Subject: domain.UserID(parts[1])}, nil
}

type seqIDs struct {
	n int
}

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}
