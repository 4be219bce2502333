package gradauth

// AuthState is the resolved authentication state of a request. The set of
// variants is closed: Anonymous, Preview, OAuth and Full, one per AuthLevel.
// Each variant carries only the data meaningful at its level.
type AuthState interface {
	Level() AuthLevel

	// sealed; resolution and graduation are the only producers of states.
	authState()
}

// Anonymous is the zero-trust state every request can fall back to.
type Anonymous struct{}

func (Anonymous) Level() AuthLevel { return LevelAnonymous }
func (Anonymous) authState()       {}

// Preview identifies a visitor by a claimed email only. Created when a
// visitor submits a lead form; the email is unverified.
type Preview struct {
	Email     string
	SessionID string
}

func (Preview) Level() AuthLevel { return LevelPreview }
func (Preview) authState()       {}

// OAuth is a provider-verified identity that has not been graduated into a
// durable account. It carries no roles and no tenant membership.
type OAuth struct {
	Provider      string
	ProviderID    string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

func (OAuth) Level() AuthLevel { return LevelOAuth }
func (OAuth) authState()       {}

// Full is the only state backed by a durable session in the session
// authority.
type Full struct {
	UserID     string
	SessionID  string
	Email      string
	Roles      []string
	TenantID   string
	TenantRole string
}

func (Full) Level() AuthLevel { return LevelFull }
func (Full) authState()       {}

// Verify interface compliance
var (
	_ AuthState = Anonymous{}
	_ AuthState = Preview{}
	_ AuthState = OAuth{}
	_ AuthState = Full{}
)

// Context is the per-request read-only view over a resolved AuthState.
type Context struct {
	state AuthState
}

// NewContext wraps a resolved state. A nil state degrades to Anonymous.
func NewContext(state AuthState) Context {
	if state == nil {
		state = Anonymous{}
	}
	return Context{state: state}
}

// AnonymousContext returns a context at the anonymous level.
func AnonymousContext() Context {
	return Context{state: Anonymous{}}
}

// State returns the wrapped state.
func (c Context) State() AuthState {
	if c.state == nil {
		return Anonymous{}
	}
	return c.state
}

// Level returns the resolved level.
func (c Context) Level() AuthLevel {
	return c.State().Level()
}

// HasLevel compares ordinal positions against the required level.
func (c Context) HasLevel(required AuthLevel) bool {
	return c.Level().AtLeast(required)
}

// HasRole returns false for every level except Full, where it checks set
// membership in the session's roles.
func (c Context) HasRole(role string) bool {
	full, ok := c.State().(Full)
	if !ok {
		return false
	}
	for _, r := range full.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TenantID is exposed only for Full states. It is derived exclusively from
// the durable session record, never from anything the client sets directly.
func (c Context) TenantID() string {
	if full, ok := c.State().(Full); ok {
		return full.TenantID
	}
	return ""
}

// UserID returns the durable account id for Full states.
func (c Context) UserID() string {
	if full, ok := c.State().(Full); ok {
		return full.UserID
	}
	return ""
}

// Email returns the email associated with the state, when one exists at the
// resolved level.
func (c Context) Email() string {
	switch s := c.State().(type) {
	case Preview:
		return s.Email
	case OAuth:
		return s.Email
	case Full:
		return s.Email
	default:
		return ""
	}
}
