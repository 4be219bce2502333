package gradauth

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// fakeAuthority is an in-memory Authority for tests. It enforces the same
// contracts the interface documents: unique emails, idempotent linking,
// (nil, nil) lookups for absence.
type fakeAuthority struct {
	mu       sync.Mutex
	users    map[string]*User          // keyed by email
	links    map[string]string         // provider/providerID -> userID
	sessions map[string]*SessionRecord // keyed by token
	members  map[string]string         // userID/tenantID -> role
	roles    map[string][]string       // userID -> roles

	nextID      int
	findErr     error
	rolesErr    error
	sessionErr  error
	linkCalls   int
	createCalls int
}

func newFakeAuthority() *fakeAuthority {
	return &fakeAuthority{
		users:    map[string]*User{},
		links:    map[string]string{},
		sessions: map[string]*SessionRecord{},
		members:  map[string]string{},
		roles:    map[string][]string{},
	}
}

func (f *fakeAuthority) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if u, ok := f.users[email]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeAuthority) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if _, ok := f.users[input.Email]; ok {
		return nil, ErrAccountConflict.Clone()
	}
	f.nextID++
	u := &User{
		ID:            fmt.Sprintf("user-%d", f.nextID),
		Email:         input.Email,
		Name:          input.Name,
		Image:         input.Image,
		EmailVerified: input.EmailVerified,
	}
	f.users[input.Email] = u
	copied := *u
	return &copied, nil
}

func (f *fakeAuthority) LinkAccount(ctx context.Context, input LinkAccountInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linkCalls++
	key := input.Provider + "/" + input.ProviderAccountID
	if _, ok := f.links[key]; ok {
		return nil
	}
	f.links[key] = input.UserID
	return nil
}

func (f *fakeAuthority) CreateSession(ctx context.Context, input CreateSessionInput) (*SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	f.nextID++
	var email string
	for _, u := range f.users {
		if u.ID == input.UserID {
			email = u.Email
		}
	}
	rec := &SessionRecord{
		ID:         fmt.Sprintf("sess-%d", f.nextID),
		Token:      fmt.Sprintf("token-%d", f.nextID),
		UserID:     input.UserID,
		Email:      email,
		TenantID:   input.TenantID,
		TenantRole: f.members[input.UserID+"/"+input.TenantID],
		ExpiresAt:  input.ExpiresAt,
	}
	f.sessions[rec.Token] = rec
	return rec, nil
}

func (f *fakeAuthority) GetSession(ctx context.Context, token string) (*SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	if rec, ok := f.sessions[token]; ok {
		copied := *rec
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeAuthority) GetUserRoles(ctx context.Context, userID, tenantID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return append([]string(nil), f.roles[userID]...), nil
}

func (f *fakeAuthority) AddTenantMember(ctx context.Context, input AddTenantMemberInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := input.UserID + "/" + input.TenantID
	if _, ok := f.members[key]; ok {
		return nil
	}
	f.members[key] = input.Role
	return nil
}

// seedUser installs an existing account and returns it.
func (f *fakeAuthority) seedUser(email string, roles ...string) *User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := &User{
		ID:            fmt.Sprintf("user-%d", f.nextID),
		Email:         email,
		EmailVerified: true,
	}
	f.users[email] = u
	if len(roles) > 0 {
		f.roles[u.ID] = roles
	}
	return u
}

// seedSession installs a durable session and returns its token.
func (f *fakeAuthority) seedSession(user *User, tenantID string, expiresAt time.Time) *SessionRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec := &SessionRecord{
		ID:         fmt.Sprintf("sess-%d", f.nextID),
		Token:      fmt.Sprintf("token-%d", f.nextID),
		UserID:     user.ID,
		Email:      user.Email,
		TenantID:   tenantID,
		TenantRole: f.members[user.ID+"/"+tenantID],
		ExpiresAt:  expiresAt,
	}
	f.sessions[rec.Token] = rec
	return rec
}

// stubRequest is a header/cookie bag implementing Request.
type stubRequest struct {
	headers map[string]string
	cookies map[string]string
}

func (s stubRequest) Header(name string) string { return s.headers[name] }
func (s stubRequest) Cookie(name string) string { return s.cookies[name] }
