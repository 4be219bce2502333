package gradauth

import (
	"context"
	"time"
)

// User is the session authority's account record as seen by the engine.
type User struct {
	ID            string
	Email         string
	Name          string
	Image         string
	EmailVerified bool
}

// CreateUserInput carries the fields the engine supplies when creating an
// account during graduation.
type CreateUserInput struct {
	Email         string
	Name          string
	Image         string
	EmailVerified bool
}

// LinkAccountInput ties a provider identity to an account.
type LinkAccountInput struct {
	UserID            string
	Provider          string
	ProviderAccountID string
}

// CreateSessionInput requests a durable session for an account.
type CreateSessionInput struct {
	UserID    string
	TenantID  string
	ExpiresAt time.Time
}

// SessionRecord is a durable session as issued by the session authority. The
// token is the opaque credential handed to clients; the id identifies the
// session internally.
type SessionRecord struct {
	ID         string
	Token      string
	UserID     string
	Email      string
	TenantID   string
	TenantRole string
	ExpiresAt  time.Time
}

// AddTenantMemberInput grants an account membership in a tenant.
type AddTenantMemberInput struct {
	UserID   string
	TenantID string
	Role     string
}

// Authority is the narrow capability interface the engine uses to talk to
// the external system of record for accounts, durable sessions and role
// memberships. Implementations own durable identity lifetime; the engine
// never caches anything it reads through this interface.
//
// Lookup methods return (nil, nil) for absence; errors mean the lookup
// itself failed. CreateUser must enforce a uniqueness constraint on email
// and surface violations as ErrAccountConflict, which is how two concurrent
// graduations for the same email are arbitrated. LinkAccount is idempotent:
// linking an already linked identity is not an error.
type Authority interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*User, error)
	LinkAccount(ctx context.Context, input LinkAccountInput) error
	CreateSession(ctx context.Context, input CreateSessionInput) (*SessionRecord, error)
	GetSession(ctx context.Context, token string) (*SessionRecord, error)
	GetUserRoles(ctx context.Context, userID, tenantID string) ([]string, error)
	AddTenantMember(ctx context.Context, input AddTenantMemberInput) error
}
