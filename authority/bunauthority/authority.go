// Package bunauthority is a Bun-backed reference implementation of the
// session authority interface, suitable for single-service deployments and
// tests. Production systems typically adapt their own identity store
// instead.
package bunauthority

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	gradauth "github.com/gradauth/go-gradauth"
	"github.com/uptrace/bun"
)

// Authority implements gradauth.Authority on a Bun database.
type Authority struct {
	db *bun.DB
}

var _ gradauth.Authority = (*Authority)(nil)

// New creates a Bun-backed authority.
func New(db *bun.DB) *Authority {
	return &Authority{db: db}
}

// CreateTables creates the backing tables. Meant for tests and fresh
// installs; schema migration is the host application's concern.
func (a *Authority) CreateTables(ctx context.Context) error {
	models := []any{
		(*UserModel)(nil),
		(*AccountModel)(nil),
		(*SessionModel)(nil),
		(*TenantMemberModel)(nil),
	}
	for _, model := range models {
		if _, err := a.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "failed to create table")
		}
	}
	return nil
}

// FindUserByEmail implements gradauth.Authority.
func (a *Authority) FindUserByEmail(ctx context.Context, email string) (*gradauth.User, error) {
	var model UserModel
	err := a.db.NewSelect().
		Model(&model).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CategoryOperation, "user lookup failed")
	}
	return toUser(&model), nil
}

// CreateUser implements gradauth.Authority. An email collision surfaces as
// the account conflict error, which is how concurrent graduations for the
// same email are arbitrated.
func (a *Authority) CreateUser(ctx context.Context, input gradauth.CreateUserInput) (*gradauth.User, error) {
	model := &UserModel{
		ID:            uuid.New(),
		Email:         input.Email,
		Name:          input.Name,
		Image:         input.Image,
		EmailVerified: input.EmailVerified,
	}

	if _, err := a.db.NewInsert().Model(model).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, gradauth.ErrAccountConflict.Clone()
		}
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to create user")
	}

	return toUser(model), nil
}

// LinkAccount implements gradauth.Authority. Linking an already linked
// identity is a no-op.
func (a *Authority) LinkAccount(ctx context.Context, input gradauth.LinkAccountInput) error {
	userID, err := uuid.Parse(input.UserID)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid user id")
	}

	model := &AccountModel{
		ID:                uuid.New(),
		UserID:            userID,
		Provider:          input.Provider,
		ProviderAccountID: input.ProviderAccountID,
	}

	_, err = a.db.NewInsert().
		Model(model).
		On("CONFLICT (provider, provider_account_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to link account")
	}

	return nil
}

// CreateSession implements gradauth.Authority.
func (a *Authority) CreateSession(ctx context.Context, input gradauth.CreateSessionInput) (*gradauth.SessionRecord, error) {
	userID, err := uuid.Parse(input.UserID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid user id")
	}

	model := &SessionModel{
		ID:        uuid.New(),
		Token:     newSessionToken(),
		UserID:    userID,
		TenantID:  input.TenantID,
		ExpiresAt: input.ExpiresAt,
	}

	if _, err := a.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to create session")
	}

	return a.toSessionRecord(ctx, model)
}

// GetSession implements gradauth.Authority.
func (a *Authority) GetSession(ctx context.Context, token string) (*gradauth.SessionRecord, error) {
	var model SessionModel
	err := a.db.NewSelect().
		Model(&model).
		Where("token = ?", token).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CategoryOperation, "session lookup failed")
	}

	if time.Now().After(model.ExpiresAt) {
		return nil, nil
	}

	return a.toSessionRecord(ctx, &model)
}

// GetUserRoles implements gradauth.Authority. The tenant role, when present,
// is included in the role set.
func (a *Authority) GetUserRoles(ctx context.Context, userID, tenantID string) ([]string, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid user id")
	}

	var members []TenantMemberModel
	q := a.db.NewSelect().
		Model(&members).
		Where("user_id = ?", uid)
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []string{}, nil
		}
		return nil, errors.Wrap(err, errors.CategoryOperation, "role lookup failed")
	}

	roles := make([]string, 0, len(members))
	seen := map[string]struct{}{}
	for _, m := range members {
		if _, ok := seen[m.Role]; ok {
			continue
		}
		seen[m.Role] = struct{}{}
		roles = append(roles, m.Role)
	}
	return roles, nil
}

// AddTenantMember implements gradauth.Authority. Re-adding an existing
// membership is a no-op.
func (a *Authority) AddTenantMember(ctx context.Context, input gradauth.AddTenantMemberInput) error {
	userID, err := uuid.Parse(input.UserID)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid user id")
	}

	model := &TenantMemberModel{
		ID:       uuid.New(),
		UserID:   userID,
		TenantID: input.TenantID,
		Role:     input.Role,
	}

	_, err = a.db.NewInsert().
		Model(model).
		On("CONFLICT (user_id, tenant_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to add tenant member")
	}

	return nil
}

func (a *Authority) toSessionRecord(ctx context.Context, model *SessionModel) (*gradauth.SessionRecord, error) {
	var user UserModel
	err := a.db.NewSelect().
		Model(&user).
		Where("id = ?", model.UserID).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(err, errors.CategoryOperation, "session user lookup failed")
	}

	record := &gradauth.SessionRecord{
		ID:        model.ID.String(),
		Token:     model.Token,
		UserID:    model.UserID.String(),
		Email:     user.Email,
		TenantID:  model.TenantID,
		ExpiresAt: model.ExpiresAt,
	}

	if model.TenantID != "" {
		var member TenantMemberModel
		err := a.db.NewSelect().
			Model(&member).
			Where("user_id = ? AND tenant_id = ?", model.UserID, model.TenantID).
			Scan(ctx)
		if err == nil {
			record.TenantRole = member.Role
		}
	}

	return record, nil
}

func toUser(m *UserModel) *gradauth.User {
	return &gradauth.User{
		ID:            m.ID.String(),
		Email:         m.Email,
		Name:          m.Name,
		Image:         m.Image,
		EmailVerified: m.EmailVerified,
	}
}

func newSessionToken() string {
	return uuid.NewString() + uuid.NewString()
}

// isUniqueViolation matches unique constraint errors across the dialects the
// reference authority runs on (sqlite in tests, postgres in deployments).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
