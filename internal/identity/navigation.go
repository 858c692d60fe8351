package identity

// NavItem is one entry in the portal's navigation tree. The frontend renders
// whatever list it receives; which items appear is decided here, per role,
// so there is a single shell instead of one component tree per role.
type NavItem struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Path   string `json:"path"`
	Action Action `json:"-"`
}

// navItems is the full navigation catalog. An item is visible to a role when
// the role holds the item's guarding action.
var navItems = []NavItem{
	{Key: "dashboard", Label: "Dashboard", Path: "/dashboard", Action: ActionViewEnrollee},
	{Key: "enrollees", Label: "Enrollees", Path: "/enrollees", Action: ActionViewEnrollee},
	{Key: "resources", Label: "Resource Directory", Path: "/resources", Action: ActionViewResource},
	{Key: "referrals", Label: "Referrals", Path: "/referrals", Action: ActionViewReferral},
	{Key: "care-plans", Label: "Care Plans", Path: "/care-plans", Action: ActionViewCarePlanNote},
	{Key: "analytics", Label: "Analytics", Path: "/analytics", Action: ActionViewEnrollee},
	{Key: "users", Label: "User Management", Path: "/admin/users", Action: ActionManageUsers},
	{Key: "admin", Label: "Admin Console", Path: "/admin", Action: ActionAdminConsole},
	{Key: "sandbox", Label: "Sample Data", Path: "/admin/sandbox", Action: ActionLoadSampleData},
}

// NavigationFor returns the navigation items visible to the role.
func NavigationFor(role Role) []NavItem {
	items := make([]NavItem, 0, len(navItems))
	for _, item := range navItems {
		if IsAllowed(item.Action, role) {
			items = append(items, item)
		}
	}
	return items
}
