package authz

import (
	"github.com/google/uuid"

	"library-backend/internal/shared/fault"
)

// Role is the permission ceiling of a system user. Roles are ordered:
// admin subsumes staff, staff subsumes reader.
type Role string

const (
	RoleReader Role = "reader"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

var roleLevels = map[Role]int{
	RoleReader: 1,
	RoleStaff:  2,
	RoleAdmin:  3,
}

// Level returns the rank of the role in the hierarchy, 0 for unknown roles.
func (r Role) Level() int {
	return roleLevels[r]
}

func (r Role) IsValid() bool {
	return r.Level() > 0
}

// Subsumes reports whether r covers every capability of other.
func (r Role) Subsumes(other Role) bool {
	return r.Level() >= other.Level()
}

func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsValid()
}

// Permission names one gated operation.
type Permission string

const (
	PermBrowseCatalog     Permission = "catalog:browse"
	PermSubmitRequest     Permission = "request:submit"
	PermCancelOwnRequest  Permission = "request:cancel_own"
	PermResolveRequest    Permission = "request:resolve"
	PermManageCatalog     Permission = "catalog:manage"
	PermProcessReturn     Permission = "loan:process_return"
	PermRenewOnBehalf     Permission = "loan:renew_on_behalf"
	PermManageSystemUsers Permission = "user:manage"
	PermConfigurePolicy   Permission = "policy:configure"
)

// minimumRole is the permission matrix: the lowest role that may perform
// each operation. Higher roles inherit through capability containment.
var minimumRole = map[Permission]Role{
	PermBrowseCatalog:     RoleReader,
	PermSubmitRequest:     RoleReader,
	PermCancelOwnRequest:  RoleReader,
	PermResolveRequest:    RoleStaff,
	PermManageCatalog:     RoleStaff,
	PermProcessReturn:     RoleStaff,
	PermRenewOnBehalf:     RoleStaff,
	PermManageSystemUsers: RoleAdmin,
	PermConfigurePolicy:   RoleAdmin,
}

// Actor is the externally authenticated (userId, role) pair. It is populated
// exclusively by the auth middleware from the identity provider's token and
// must never be built from caller-supplied request data.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// Authorize checks the role matrix for perm. On denial the caller must not
// touch any state.
func Authorize(actor Actor, perm Permission) error {
	min, ok := minimumRole[perm]
	if !ok {
		return fault.PermissionDenied("unknown operation %q", perm)
	}
	if !actor.Role.Subsumes(min) {
		return fault.PermissionDenied("operation %q requires role %s or above", perm, min)
	}
	return nil
}

// AuthorizeOwn enforces an ownership rule on top of the role matrix: the
// acting user must own the target entity. A sufficient role does not bypass
// ownership.
func AuthorizeOwn(actor Actor, perm Permission, ownerID uuid.UUID) error {
	if err := Authorize(actor, perm); err != nil {
		return err
	}
	if actor.UserID != ownerID {
		return fault.PermissionDenied("operation %q is limited to the owning user", perm)
	}
	return nil
}
