package gradauth

// AuthLevel ranks how strongly a caller's identity has been established.
// The set is closed and totally ordered; only >= comparisons are meaningful.
type AuthLevel int

const (
	// LevelAnonymous is an unidentified visitor.
	LevelAnonymous AuthLevel = iota
	// LevelPreview identifies a person by a claimed, unverified email.
	LevelPreview
	// LevelOAuth is a provider-verified identity without a durable account.
	LevelOAuth
	// LevelFull is a durable, role-checked account session.
	LevelFull
)

// AtLeast reports whether the level meets the minimum required level.
func (l AuthLevel) AtLeast(min AuthLevel) bool {
	return l >= min
}

// IsValid checks if the level is one of the predefined values.
func (l AuthLevel) IsValid() bool {
	return l >= LevelAnonymous && l <= LevelFull
}

func (l AuthLevel) String() string {
	switch l {
	case LevelAnonymous:
		return "anonymous"
	case LevelPreview:
		return "preview"
	case LevelOAuth:
		return "oauth"
	case LevelFull:
		return "full"
	default:
		return "unknown"
	}
}

// AllLevels returns the levels in ascending order.
func AllLevels() []AuthLevel {
	return []AuthLevel{
		LevelAnonymous,
		LevelPreview,
		LevelOAuth,
		LevelFull,
	}
}

// ParseLevel safely parses a string into an AuthLevel.
func ParseLevel(s string) (AuthLevel, bool) {
	switch s {
	case "anonymous":
		return LevelAnonymous, true
	case "preview":
		return LevelPreview, true
	case "oauth":
		return LevelOAuth, true
	case "full":
		return LevelFull, true
	default:
		return LevelAnonymous, false
	}
}
