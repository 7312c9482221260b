package users

import "time"

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Providers an account can originate from.
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
)

// User is one account. PasswordHash is empty for OAuth accounts and never
// serialized.
type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	PasswordHash      string    `json:"-"`
	Provider          string    `json:"provider"`
	Role              string    `json:"role"`
	PreferredRole     string    `json:"preferredRole,omitempty"`
	PreferredLocation string    `json:"preferredLocation,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
