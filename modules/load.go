package modules

import (
	"github.com/iota-uz/hrdesk/pkg/application"
)

// Load registers the modules in order.
func Load(app application.Application, modules ...application.Module) error {
	return application.RegisterModules(app, modules...)
}
