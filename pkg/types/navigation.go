package types

// NavigationItem is an entry of the sidebar. Name is a message id,
// translated when the items are rendered.
type NavigationItem struct {
	Name        string
	Href        string
	Children    []NavigationItem
	AuthzObject string
	AuthzAction string
}

// Visible reports whether the item is shown to a caller for whom can
// answers object/action checks. Items without an AuthzObject are public.
func (n NavigationItem) Visible(can func(object, action string) bool) bool {
	if n.AuthzObject == "" || can == nil {
		return true
	}
	return can(n.AuthzObject, n.AuthzAction)
}
