package domain

import "time"

// Role is an account's privilege tier on the platform.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	RoleSuperuser Role = "superuser"
)

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin, RoleSuperuser:
		return true
	}
	return false
}

// Capability names an action a role is entitled to perform.
type Capability string

const (
	// CapabilityModerateContent allows editing or removing any review or comment.
	CapabilityModerateContent Capability = "content:moderate"
	// CapabilityManageCatalog allows mutating titles, categories, and genres.
	CapabilityManageCatalog Capability = "catalog:manage"
	// CapabilityManageUsers allows administering user accounts.
	CapabilityManageUsers Capability = "users:manage"
)

// roleCapabilities is the canonical capability set per role. Privilege is
// monotonic: each tier carries everything the previous one does.
var roleCapabilities = map[Role][]Capability{
	RoleUser:      {},
	RoleModerator: {CapabilityModerateContent},
	RoleAdmin:     {CapabilityModerateContent, CapabilityManageCatalog, CapabilityManageUsers},
	RoleSuperuser: {CapabilityModerateContent, CapabilityManageCatalog, CapabilityManageUsers},
}

// Can reports whether the role alone grants the capability. Platform-level
// staff/superuser flags are evaluated on the user, not the role.
func (r Role) Can(capability Capability) bool {
	for _, c := range roleCapabilities[r] {
		if c == capability {
			return true
		}
	}
	return false
}

// User mirrors the persisted representation in the users table.
type User struct {
	ID               string
	Username         string
	Email            string
	FirstName        string
	LastName         string
	Bio              string
	Role             Role
	ConfirmationCode string
	// IsStaff and IsSuperuser are the platform-level privilege flags. They
	// grant admin capability independently of Role; both channels must be
	// honored when evaluating permissions.
	IsStaff     bool
	IsSuperuser bool
	CreatedAt   time.Time
}

// HasCapability collapses both privilege channels: the application role and
// the platform staff/superuser flags.
func (u *User) HasCapability(capability Capability) bool {
	if u == nil {
		return false
	}
	if u.IsStaff || u.IsSuperuser {
		return true
	}
	return u.Role.Can(capability)
}

// IsAdminPrivileged reports whether the user may perform administrative
// actions through either privilege channel.
func (u *User) IsAdminPrivileged() bool {
	return u.HasCapability(CapabilityManageUsers)
}

// IsModeratorPrivileged reports whether the user may moderate content
// authored by others.
func (u *User) IsModeratorPrivileged() bool {
	return u.HasCapability(CapabilityModerateContent)
}
