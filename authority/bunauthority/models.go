package bunauthority

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserModel is the Bun model for accounts. Email carries the uniqueness
// constraint that arbitrates concurrent graduations.
type UserModel struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid"`
	Email         string     `bun:"email,notnull,unique"`
	Name          string     `bun:"name"`
	Image         string     `bun:"image"`
	EmailVerified bool       `bun:"is_email_verified"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// AccountModel is the Bun model for provider account links. The provider
// pair is unique so the same external identity can only link once.
type AccountModel struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid"`
	UserID            uuid.UUID  `bun:"user_id,notnull,type:uuid"`
	Provider          string     `bun:"provider,notnull,unique:accounts_provider_identity"`
	ProviderAccountID string     `bun:"provider_account_id,notnull,unique:accounts_provider_identity"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// SessionModel is the Bun model for durable sessions. Token is the opaque
// credential handed to clients.
type SessionModel struct {
	bun.BaseModel `bun:"table:sessions,alias:ses"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid"`
	Token     string     `bun:"token,notnull,unique"`
	UserID    uuid.UUID  `bun:"user_id,notnull,type:uuid"`
	TenantID  string     `bun:"tenant_id"`
	ExpiresAt time.Time  `bun:"expires_at,notnull"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// TenantMemberModel is the Bun model for tenant memberships.
type TenantMemberModel struct {
	bun.BaseModel `bun:"table:tenant_members,alias:tm"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid"`
	UserID    uuid.UUID  `bun:"user_id,notnull,type:uuid,unique:tenant_members_user_tenant"`
	TenantID  string     `bun:"tenant_id,notnull,unique:tenant_members_user_tenant"`
	Role      string     `bun:"role,notnull"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}
