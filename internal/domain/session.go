package domain

// AuthStatus is the position of the auth state machine.
type AuthStatus string

const (
	StatusAnonymous      AuthStatus = "anonymous"
	StatusAuthenticating AuthStatus = "authenticating"
	StatusAuthenticated  AuthStatus = "authenticated"
)

// Address is the postal address attached to a user profile.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// User is the signed-in customer as normalized from the API.
type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     string  `json:"phone"`
	Address   Address `json:"address"`
}

// Session is the authenticated identity and its bearer token. It is the only
// entity persisted across restarts.
type Session struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// Valid reports whether the session carries both a token and a user.
func (s Session) Valid() bool {
	return s.Token != "" && s.User != nil
}

// UserID returns the session user's ID or "".
func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// SessionEventType names a change of session.
type SessionEventType string

const (
	SessionLoggedIn  SessionEventType = "logged_in"
	SessionRestored  SessionEventType = "restored"
	SessionLoggedOut SessionEventType = "logged_out"
	SessionExpired   SessionEventType = "expired"
)

// Active reports whether the event leaves a usable session behind.
func (t SessionEventType) Active() bool {
	return t == SessionLoggedIn || t == SessionRestored
}

// SessionEvent announces that the session changed.
type SessionEvent struct {
	Type   SessionEventType
	UserID string
	Email  string
}
