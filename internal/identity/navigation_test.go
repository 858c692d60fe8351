package identity

import "testing"

// TestNavigationForRole verifies the shell navigation is filtered by permission
func TestNavigationForRole(t *testing.T) {
	keys := func(items []NavItem) map[string]bool {
		set := map[string]bool{}
		for _, item := range items {
			set[item.Key] = true
		}
		return set
	}

	admin := keys(NavigationFor(RoleAdmin))
	if len(admin) != len(navItems) {
		t.Errorf("admin navigation has %d items, want all %d", len(admin), len(navItems))
	}

	manager := keys(NavigationFor(RoleEnrollmentManager))
	for _, want := range []string{"dashboard", "enrollees", "referrals", "care-plans", "analytics"} {
		if !manager[want] {
			t.Errorf("enrollment manager navigation missing %q", want)
		}
	}
	for _, deny := range []string{"users", "admin", "sandbox"} {
		if manager[deny] {
			t.Errorf("enrollment manager navigation should not include %q", deny)
		}
	}

	partner := keys(NavigationFor(RolePartner))
	if !partner["resources"] || !partner["referrals"] {
		t.Error("partner navigation should include resources and referrals")
	}
	if partner["care-plans"] || partner["users"] {
		t.Error("partner navigation should not include care-plans or users")
	}

	if items := NavigationFor(Role("unknown")); len(items) != 0 {
		t.Errorf("unknown role navigation has %d items, want 0", len(items))
	}
}
