package types

// NavigationItem describes an entry the frontend renders in the sidebar.
// Role gating here only hides affordances; services enforce authorization.
type NavigationItem struct {
	Name        string
	Href        string
	Children    []NavigationItem
	AuthzObject string
	AuthzAction string
}
