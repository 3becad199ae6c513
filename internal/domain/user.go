package domain

import "time"

// User represents a registered account. Email is unique across all users and
// PasswordHash is never serialised.
type User struct {
	ID            string     `json:"_id" db:"id"`
	FullName      string     `json:"fullName" db:"full_name"`
	Email         string     `json:"email" db:"email"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	Role          string     `json:"role" db:"role"`
	CreationDate  time.Time  `json:"creationDate" db:"creation_date"`
	LastUpdated   *time.Time `json:"lastUpdated,omitempty" db:"last_updated"`
	LastUpdatedBy string     `json:"lastUpdatedBy,omitempty" db:"last_updated_by"`
}

// UserChanges is a field set for a partial update. Nil fields are left untouched.
type UserChanges struct {
	FullName      *string
	Email         *string
	PasswordHash  *string
	LastUpdated   *time.Time
	LastUpdatedBy *string
}

// Identity is the minimal claim set carried by an auth token and attached to
// authenticated requests.
type Identity struct {
	UserID    string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}
