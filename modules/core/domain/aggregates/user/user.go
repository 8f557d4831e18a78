package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User mirrors one row of user_profiles. Only active users are valid
// assignment targets.
type User struct {
	tenantID  uuid.UUID
	id        string
	fullName  string
	email     string
	role      Role
	isActive  bool
	avatarURL string
	createdAt time.Time
	updatedAt time.Time
}

func New(tenantID uuid.UUID, id, fullName, email string, role Role) User {
	return User{
		tenantID: tenantID,
		id:       strings.TrimSpace(id),
		fullName: strings.TrimSpace(fullName),
		email:    strings.ToLower(strings.TrimSpace(email)),
		role:     role,
		isActive: true,
	}
}

func Hydrate(
	tenantID uuid.UUID,
	id string,
	fullName string,
	email string,
	role Role,
	isActive bool,
	avatarURL string,
	createdAt time.Time,
	updatedAt time.Time,
) User {
	return User{
		tenantID:  tenantID,
		id:        strings.TrimSpace(id),
		fullName:  strings.TrimSpace(fullName),
		email:     strings.ToLower(strings.TrimSpace(email)),
		role:      role,
		isActive:  isActive,
		avatarURL: avatarURL,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (u User) TenantID() uuid.UUID  { return u.tenantID }
func (u User) ID() string           { return u.id }
func (u User) FullName() string     { return u.fullName }
func (u User) Email() string        { return u.email }
func (u User) Role() Role           { return u.role }
func (u User) IsActive() bool       { return u.isActive }
func (u User) AvatarURL() string    { return u.avatarURL }
func (u User) CreatedAt() time.Time { return u.createdAt }
func (u User) UpdatedAt() time.Time { return u.updatedAt }
func (u User) IsAdmin() bool        { return u.role == RoleAdmin }
func (u User) IsZero() bool         { return u.id == "" }

func (u User) WithAvatarURL(url string) User {
	u.avatarURL = strings.TrimSpace(url)
	return u
}

func (u User) Deactivated() User {
	u.isActive = false
	return u
}
