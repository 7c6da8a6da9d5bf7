package auth

import "github.com/mamadbah2/farmdiary/internal/domain/models"

// Session is the signed-in user handed explicitly to collection operations.
type Session struct {
	User models.User
}

func newSession(user models.User) *Session {
	return &Session{User: user}
}

// Email is the owner key of every collection of the session.
func (s *Session) Email() string {
	return s.User.Email
}

// Key returns the storage key of the named collection for this user,
// "<collection>_<email>".
func (s *Session) Key(collection string) string {
	return collection + "_" + s.User.Email
}

// SessionFor builds a session for a known user without signing them in.
// Background jobs use it to walk every farmer's collections.
func SessionFor(p models.Profile) *Session {
	return newSession(models.User{Name: p.Name, Email: p.Email, Location: p.Location, CreatedAt: p.CreatedAt})
}
