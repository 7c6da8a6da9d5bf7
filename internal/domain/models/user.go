package models

import "time"

// DefaultLocation is assigned when a farmer registers without a location.
const DefaultLocation = "Ghana"

// User is an account in the local user table. The password is kept and
// compared in plaintext; the table is a simulation, not an identity system.
type User struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is the password-free view of a user returned to callers.
type Profile struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile strips the password.
func (u User) Profile() Profile {
	return Profile{Name: u.Name, Email: u.Email, Location: u.Location, CreatedAt: u.CreatedAt}
}
