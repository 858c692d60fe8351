package identity

import "testing"

// TestAdminAllowedEverywhere verifies the admin role holds every defined action
func TestAdminAllowedEverywhere(t *testing.T) {
	for _, action := range Actions() {
		if !IsAllowed(action, RoleAdmin) {
			t.Errorf("admin should be allowed %q", action)
		}
	}
}

// TestIsAllowedFailsClosed verifies unknown actions and roles are denied
func TestIsAllowedFailsClosed(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		role   Role
	}{
		{"unknown action", Action("reports.export"), RoleAdmin},
		{"unknown role", ActionViewEnrollee, Role("superuser")},
		{"empty action", Action(""), RoleAdmin},
		{"empty role", ActionViewEnrollee, Role("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsAllowed(tt.action, tt.role) {
				t.Errorf("IsAllowed(%q, %q) = true, want false", tt.action, tt.role)
			}
		})
	}
}

// TestRoleDenials verifies actions outside each role's set are denied
func TestRoleDenials(t *testing.T) {
	tests := []struct {
		action Action
		role   Role
	}{
		{ActionDeleteEnrollee, RoleEnrollmentManager},
		{ActionCreateResource, RoleEnrollmentManager},
		{ActionRespondReferral, RoleEnrollmentManager},
		{ActionManageUsers, RoleEnrollmentManager},
		{ActionCreateEnrollee, RolePartner},
		{ActionCreateResource, RolePartner},
		{ActionEditResource, RolePartner},
		{ActionCreateReferral, RolePartner},
		{ActionCancelReferral, RolePartner},
		{ActionViewCarePlanNote, RolePartner},
		{ActionAdminConsole, RolePartner},
	}

	for _, tt := range tests {
		if IsAllowed(tt.action, tt.role) {
			t.Errorf("IsAllowed(%q, %q) = true, want false", tt.action, tt.role)
		}
	}
}

// TestRoleGrants verifies representative allowed pairs
func TestRoleGrants(t *testing.T) {
	tests := []struct {
		action Action
		role   Role
	}{
		{ActionCreateEnrollee, RoleEnrollmentManager},
		{ActionCreateReferral, RoleEnrollmentManager},
		{ActionCancelReferral, RoleEnrollmentManager},
		{ActionViewEnrollee, RolePartner},
		{ActionRespondReferral, RolePartner},
	}

	for _, tt := range tests {
		if !IsAllowed(tt.action, tt.role) {
			t.Errorf("IsAllowed(%q, %q) = false, want true", tt.action, tt.role)
		}
	}
}

// TestPartnerGrantsAreViewAndRespondOnly walks the whole table: a partner
// holds exactly the view actions plus responding to referrals, nothing else.
func TestPartnerGrantsAreViewAndRespondOnly(t *testing.T) {
	allowed := map[Action]bool{
		ActionViewEnrollee:    true,
		ActionViewResource:    true,
		ActionViewReferral:    true,
		ActionRespondReferral: true,
	}

	for _, action := range Actions() {
		got := IsAllowed(action, RolePartner)
		if got != allowed[action] {
			t.Errorf("IsAllowed(%q, partner) = %v, want %v", action, got, allowed[action])
		}
	}
}

// TestResolveRole verifies the default-role fallback
func TestResolveRole(t *testing.T) {
	if got := ResolveRole(nil); got != DefaultRole {
		t.Errorf("ResolveRole(nil) = %q, want %q", got, DefaultRole)
	}

	if got := ResolveRole(&Profile{}); got != DefaultRole {
		t.Errorf("ResolveRole(empty profile) = %q, want %q", got, DefaultRole)
	}

	p := &Profile{Role: RolePartner}
	if got := ResolveRole(p); got != RolePartner {
		t.Errorf("ResolveRole = %q, want %q", got, RolePartner)
	}
}
