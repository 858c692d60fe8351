// Package identity resolves who a principal is (profile, role, assignments)
// and what they may do (the static permission table).
package identity

// Role represents a portal role.
type Role string

const (
	// RoleAdmin has every permission, including user management and the
	// admin console.
	RoleAdmin Role = "admin"
	// RoleEnrollmentManager runs day-to-day case management: enrollees,
	// referrals, care plans.
	RoleEnrollmentManager Role = "enrollment_manager"
	// RolePartner is a resource provider: read-only views plus responding
	// to referrals aimed at them.
	RolePartner Role = "partner"
)

// DefaultRole is assigned when a profile is missing or carries no role.
const DefaultRole = RoleEnrollmentManager

// KnownRole reports whether r is one of the defined portal roles.
func KnownRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleEnrollmentManager, RolePartner:
		return true
	}
	return false
}

// Action represents a named portal action guarded by the permission table.
type Action string

const (
	ActionCreateEnrollee Action = "enrollee.create"
	ActionEditEnrollee   Action = "enrollee.edit"
	ActionDeleteEnrollee Action = "enrollee.delete"
	ActionViewEnrollee   Action = "enrollee.view"

	ActionCreateResource Action = "resource.create"
	ActionEditResource   Action = "resource.edit"
	ActionDeleteResource Action = "resource.delete"
	ActionViewResource   Action = "resource.view"

	ActionCreateReferral  Action = "referral.create"
	ActionEditReferral    Action = "referral.edit"
	ActionDeleteReferral  Action = "referral.delete"
	ActionViewReferral    Action = "referral.view"
	ActionRespondReferral Action = "referral.respond"
	ActionCancelReferral  Action = "referral.cancel"

	ActionCreateCarePlanNote Action = "careplan.create"
	ActionEditCarePlanNote   Action = "careplan.edit"
	ActionDeleteCarePlanNote Action = "careplan.delete"
	ActionViewCarePlanNote   Action = "careplan.view"

	ActionLoadSampleData Action = "sandbox.load"
	ActionManageUsers    Action = "users.manage"
	ActionAdminConsole   Action = "admin.console"
)

// rolePermissions is the static permission table. Pure data: handlers consult
// it through IsAllowed and never mutate it.
var rolePermissions = map[Action][]Role{
	ActionCreateEnrollee: {RoleAdmin, RoleEnrollmentManager},
	ActionEditEnrollee:   {RoleAdmin, RoleEnrollmentManager},
	ActionDeleteEnrollee: {RoleAdmin},
	ActionViewEnrollee:   {RoleAdmin, RoleEnrollmentManager, RolePartner},

	ActionCreateResource: {RoleAdmin},
	ActionEditResource:   {RoleAdmin},
	ActionDeleteResource: {RoleAdmin},
	ActionViewResource:   {RoleAdmin, RoleEnrollmentManager, RolePartner},

	ActionCreateReferral:  {RoleAdmin, RoleEnrollmentManager},
	ActionEditReferral:    {RoleAdmin, RoleEnrollmentManager},
	ActionDeleteReferral:  {RoleAdmin},
	ActionViewReferral:    {RoleAdmin, RoleEnrollmentManager, RolePartner},
	ActionRespondReferral: {RoleAdmin, RolePartner},
	ActionCancelReferral:  {RoleAdmin, RoleEnrollmentManager},

	ActionCreateCarePlanNote: {RoleAdmin, RoleEnrollmentManager},
	ActionEditCarePlanNote:   {RoleAdmin, RoleEnrollmentManager},
	ActionDeleteCarePlanNote: {RoleAdmin},
	ActionViewCarePlanNote:   {RoleAdmin, RoleEnrollmentManager},

	ActionLoadSampleData: {RoleAdmin},
	ActionManageUsers:    {RoleAdmin},
	ActionAdminConsole:   {RoleAdmin},
}

// IsAllowed reports whether the role may perform the action. Fail-closed:
// an unknown action or an empty role always denies.
func IsAllowed(action Action, role Role) bool {
	roles, ok := rolePermissions[action]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Actions lists every defined action, for the admin console and tests.
func Actions() []Action {
	actions := make([]Action, 0, len(rolePermissions))
	for a := range rolePermissions {
		actions = append(actions, a)
	}
	return actions
}
