package models

import "time"

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

func ValidRole(role string) bool {
	return role == string(UserRoleAdmin) || role == string(UserRoleMember)
}

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	Role         UserRole
	Name         string
	Phone        *string
	City         *string
	Institution  *string
	PhotoURL     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthToken is an opaque bearer token. A user has at most one live token:
// issuing a new one deletes every prior token for that user.
type AuthToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t AuthToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
