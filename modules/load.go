package modules

import (
	"github.com/evaldesk/evaldesk/modules/evaluation"
	"github.com/evaldesk/evaldesk/modules/org"
	"github.com/evaldesk/evaldesk/pkg/application"
)

// BuiltInModules is every module compiled into the binary, in registration
// order. Org registers first so evaluation can rely on its tables existing.
var BuiltInModules = []application.Module{
	org.NewModule(),
	evaluation.NewModule(),
}

func Load(app application.Application) error {
	return application.Load(app, BuiltInModules...)
}
