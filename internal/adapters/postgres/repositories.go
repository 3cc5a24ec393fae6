package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storehub/identity/internal/domain"
	"github.com/storehub/identity/internal/ports"
)

type Repositories struct {
	Users       ports.UserRepository
	Credentials ports.CredentialRepository
	Memberships ports.MembershipRepository
	Sessions    ports.RefreshSessionRepository
	Audit       ports.AuditLogRepository
	Idempotency ports.IdempotencyStore
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:       &userRepository{db: db},
		Credentials: &credentialRepository{db: db},
		Memberships: &membershipRepository{db: db},
		Sessions:    &refreshSessionRepository{db: db},
		Audit:       &auditLogRepository{db: db},
		Idempotency: &idempotencyRepository{db: db},
	}
}

type userModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	Email     string    `gorm:"column:email"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (userModel) TableName() string { return "users" }

type credentialModel struct {
	UserID       string    `gorm:"column:user_id;primaryKey"`
	Provider     string    `gorm:"column:provider;primaryKey"`
	PasswordHash string    `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (credentialModel) TableName() string { return "credentials" }

type membershipModel struct {
	MembershipID string    `gorm:"column:membership_id;primaryKey"`
	UserID       string    `gorm:"column:user_id"`
	StoreID      string    `gorm:"column:store_id"`
	Roles        string    `gorm:"column:roles;type:jsonb"`
	Scopes       string    `gorm:"column:scopes;type:jsonb"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (membershipModel) TableName() string { return "memberships" }

type refreshSessionModel struct {
	SessionID     string     `gorm:"column:session_id;primaryKey"`
	UserID        string     `gorm:"column:user_id"`
	FamilyID      string     `gorm:"column:family_id"`
	TokenHash     string     `gorm:"column:token_hash"`
	IPHash        string     `gorm:"column:ip_hash"`
	UserAgentHash string     `gorm:"column:user_agent_hash"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	ConsumedAt    *time.Time `gorm:"column:consumed_at"`
	RevokedAt     *time.Time `gorm:"column:revoked_at"`
}

func (refreshSessionModel) TableName() string { return "refresh_sessions" }

type auditLogModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	ActorID       string    `gorm:"column:actor_id"`
	Action        string    `gorm:"column:action"`
	StoreID       *string   `gorm:"column:store_id"`
	TargetType    *string   `gorm:"column:target_type"`
	TargetID      string    `gorm:"column:target_id"`
	CorrelationID string    `gorm:"column:correlation_id"`
	IPHash        string    `gorm:"column:ip_hash"`
	UserAgentHash string    `gorm:"column:user_agent_hash"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (auditLogModel) TableName() string { return "audit_logs" }

type idempotencyModel struct {
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	Status         string    `gorm:"column:status"`
	ResponseBody   *string   `gorm:"column:response_body;type:jsonb"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (idempotencyModel) TableName() string { return "idempotency_keys" }

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("email = ?", email.String()).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainUser(rec)
}

func (r *userRepository) FindByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID.String()).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainUser(rec)
}

// Save upserts on the primary key; a distinct user reusing an existing email
// still trips the unique index and surfaces as a conflict.
func (r *userRepository) Save(ctx context.Context, user domain.User) error {
	rec := userModel{
		UserID:    user.ID.String(),
		Email:     user.Email.String(),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "is_active"}),
	}).Create(&rec).Error
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

type credentialRepository struct {
	db *gorm.DB
}

func (r *credentialRepository) FindPasswordCredentialByUserID(ctx context.Context, userID domain.UserID) (*domain.Credential, error) {
	var rec credentialModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID.String(), string(domain.ProviderPassword)).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainCredential(rec)
}

func (r *credentialRepository) Save(ctx context.Context, credential domain.Credential) error {
	rec := credentialModel{
		UserID:       credential.UserID.String(),
		Provider:     string(credential.Provider),
		PasswordHash: credential.PasswordHash.String(),
		CreatedAt:    credential.CreatedAt,
		UpdatedAt:    credential.UpdatedAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

type membershipRepository struct {
	db *gorm.DB
}

func (r *membershipRepository) ListByUserID(ctx context.Context, userID domain.UserID) ([]domain.Membership, error) {
	var recs []membershipModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID.String()).
		Order("membership_id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Membership, 0, len(recs))
	for _, rec := range recs {
		m, err := toDomainMembership(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *membershipRepository) FindByUserAndStore(ctx context.Context, userID domain.UserID, storeID domain.StoreID) (*domain.Membership, error) {
	var rec membershipModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID.String(), storeID.String()).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	m, err := toDomainMembership(rec)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Save upserts on (user_id, store_id) so a re-grant updates access in place
// and keeps the original membership id and created_at.
func (r *membershipRepository) Save(ctx context.Context, membership domain.Membership) error {
	roles, err := encodeStrings(roleStrings(membership.Roles))
	if err != nil {
		return err
	}
	scopes, err := encodeStrings(scopeStrings(membership.Scopes))
	if err != nil {
		return err
	}
	rec := membershipModel{
		MembershipID: string(membership.ID),
		UserID:       membership.UserID.String(),
		StoreID:      membership.StoreID.String(),
		Roles:        roles,
		Scopes:       scopes,
		CreatedAt:    membership.CreatedAt,
		UpdatedAt:    membership.UpdatedAt,
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "store_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"roles", "scopes", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

// ListByStore filters by store id in the query itself; the cursor is the
// membership id of the last item on the previous page.
func (r *membershipRepository) ListByStore(ctx context.Context, storeID domain.StoreID, limit int, cursor string) (ports.MembershipPage, error) {
	q := r.db.WithContext(ctx).Where("store_id = ?", storeID.String())
	if cursor != "" {
		q = q.Where("membership_id > ?", cursor)
	}
	var recs []membershipModel
	if err := q.Order("membership_id ASC").Limit(limit).Find(&recs).Error; err != nil {
		return ports.MembershipPage{}, err
	}

	page := ports.MembershipPage{Items: make([]domain.Membership, 0, len(recs))}
	for _, rec := range recs {
		m, err := toDomainMembership(rec)
		if err != nil {
			return ports.MembershipPage{}, err
		}
		page.Items = append(page.Items, m)
	}
	if len(recs) == limit && limit > 0 {
		page.NextCursor = recs[len(recs)-1].MembershipID
	}
	return page, nil
}

type refreshSessionRepository struct {
	db *gorm.DB
}

func (r *refreshSessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*ports.RefreshSessionRecord, error) {
	var rec refreshSessionModel
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ports.RefreshSessionRecord{
		SessionID:  domain.SessionID(rec.SessionID),
		UserID:     domain.UserID(rec.UserID),
		FamilyID:   domain.FamilyID(rec.FamilyID),
		ConsumedAt: rec.ConsumedAt,
		RevokedAt:  rec.RevokedAt,
	}, nil
}

func (r *refreshSessionRepository) Create(ctx context.Context, session domain.RefreshSession, tokenHash string) error {
	rec := toSessionModel(session, tokenHash)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

// Rotate consumes the presented hash and inserts the successor in one
// transaction. The conditional update is the linearization point: of two
// concurrent rotations of the same hash exactly one sees RowsAffected == 1,
// the other gets ErrTokenConsumed and writes nothing.
func (r *refreshSessionRepository) Rotate(ctx context.Context, params ports.RotateParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&refreshSessionModel{}).
			Where("token_hash = ? AND consumed_at IS NULL AND revoked_at IS NULL", params.OldTokenHash).
			Update("consumed_at", params.Now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return domain.ErrTokenConsumed
		}

		rec := toSessionModel(params.NewSession, params.NewTokenHash)
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}
		return nil
	})
}

// RevokeFamily stamps every live session in the family. Idempotent: already
// revoked rows are excluded by the condition and stay untouched.
func (r *refreshSessionRepository) RevokeFamily(ctx context.Context, userID domain.UserID, familyID domain.FamilyID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&refreshSessionModel{}).
		Where("user_id = ? AND family_id = ? AND revoked_at IS NULL", userID.String(), familyID.String()).
		Update("revoked_at", at).Error
}

type auditLogRepository struct {
	db *gorm.DB
}

func (r *auditLogRepository) Append(ctx context.Context, entry domain.AuditLog) error {
	rec := auditLogModel{
		ActorID:       entry.ActorID.String(),
		Action:        string(entry.Action),
		TargetID:      entry.TargetID,
		CorrelationID: entry.CorrelationID.String(),
		IPHash:        entry.IPHash,
		UserAgentHash: entry.UserAgentHash,
		CreatedAt:     entry.CreatedAt,
	}
	if entry.StoreID != nil {
		s := entry.StoreID.String()
		rec.StoreID = &s
	}
	if entry.TargetType != nil {
		t := string(*entry.TargetType)
		rec.TargetType = &t
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

type idempotencyRepository struct {
	db *gorm.DB
}

func (r *idempotencyRepository) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	var rec idempotencyModel
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	out := &ports.IdempotencyRecord{
		Key:       rec.IdempotencyKey,
		Status:    rec.Status,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.ResponseBody != nil {
		out.ResponseBody = []byte(*rec.ResponseBody)
	}
	return out, nil
}

// Reserve is a conditional insert. On a key collision it may take over the row
// only when that row has expired; a live row means another request holds the
// key and the caller gets a conflict.
func (r *idempotencyRepository) Reserve(ctx context.Context, key string, expiresAt time.Time) error {
	now := time.Now().UTC()
	rec := idempotencyModel{
		IdempotencyKey: key,
		Status:         ports.IdempotencyPending,
		ExpiresAt:      expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := r.db.WithContext(ctx).Create(&rec).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return err
	}

	res := r.db.WithContext(ctx).Model(&idempotencyModel{}).
		Where("idempotency_key = ? AND expires_at <= ?", key, now).
		Updates(map[string]any{
			"status":        ports.IdempotencyPending,
			"response_body": nil,
			"expires_at":    expiresAt,
			"created_at":    now,
			"updated_at":    now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return domain.ErrConflict
	}
	return nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, key string, responseBody []byte, at time.Time) error {
	var body *string
	if len(responseBody) > 0 {
		raw := string(responseBody)
		body = &raw
	}
	return r.db.WithContext(ctx).Model(&idempotencyModel{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]any{
			"status":        ports.IdempotencyCompleted,
			"response_body": body,
			"updated_at":    at,
		}).Error
}

func toDomainUser(rec userModel) (*domain.User, error) {
	email, err := domain.NewEmail(rec.Email)
	if err != nil {
		return nil, fmt.Errorf("stored email for user %s: %w", rec.UserID, err)
	}
	return &domain.User{
		ID:        domain.UserID(rec.UserID),
		Email:     email,
		IsActive:  rec.IsActive,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func toDomainCredential(rec credentialModel) (*domain.Credential, error) {
	hash, err := domain.NewPasswordHash(rec.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("stored hash for user %s: %w", rec.UserID, err)
	}
	return &domain.Credential{
		UserID:       domain.UserID(rec.UserID),
		Provider:     domain.CredentialProvider(rec.Provider),
		PasswordHash: hash,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}, nil
}

func toDomainMembership(rec membershipModel) (domain.Membership, error) {
	var roles []string
	if err := json.Unmarshal([]byte(rec.Roles), &roles); err != nil {
		return domain.Membership{}, fmt.Errorf("decode roles for membership %s: %w", rec.MembershipID, err)
	}
	var scopes []string
	if err := json.Unmarshal([]byte(rec.Scopes), &scopes); err != nil {
		return domain.Membership{}, fmt.Errorf("decode scopes for membership %s: %w", rec.MembershipID, err)
	}
	m := domain.Membership{
		ID:        domain.MembershipID(rec.MembershipID),
		UserID:    domain.UserID(rec.UserID),
		StoreID:   domain.StoreID(rec.StoreID),
		Roles:     make([]domain.Role, 0, len(roles)),
		Scopes:    make([]domain.Scope, 0, len(scopes)),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	for _, role := range roles {
		m.Roles = append(m.Roles, domain.Role(role))
	}
	for _, scope := range scopes {
		m.Scopes = append(m.Scopes, domain.Scope(scope))
	}
	return m, nil
}

func toSessionModel(session domain.RefreshSession, tokenHash string) refreshSessionModel {
	return refreshSessionModel{
		SessionID:     string(session.ID),
		UserID:        session.UserID.String(),
		FamilyID:      session.FamilyID.String(),
		TokenHash:     tokenHash,
		IPHash:        session.IPHash,
		UserAgentHash: session.UserAgentHash,
		CreatedAt:     session.CreatedAt,
		RevokedAt:     session.RevokedAt,
	}
}

func roleStrings(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func scopeStrings(scopes []domain.Scope) []string {
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		out = append(out, string(s))
	}
	return out
}

func encodeStrings(values []string) (string, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
