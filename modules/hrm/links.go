package hrm

import (
	"github.com/iota-uz/hrdesk/modules/hrm/presentation/resources"
	"github.com/iota-uz/hrdesk/pkg/authz"
	"github.com/iota-uz/hrdesk/pkg/types"
)

func resourceLink(h resources.Handle) types.NavigationItem {
	return types.NavigationItem{
		Name:        h.Label(),
		Href:        "/hrm/" + h.Name(),
		AuthzObject: h.Object(),
		AuthzAction: authz.ActionList,
	}
}

// NavItems builds the HR menu from the registered resources.
func NavItems(reg *resources.Registry) []types.NavigationItem {
	children := make([]types.NavigationItem, 0)
	for _, h := range reg.All() {
		children = append(children, resourceLink(h))
	}
	return []types.NavigationItem{{
		Name:     "NavigationLinks.HRM",
		Href:     "/hrm",
		Children: children,
	}}
}
