package modules

import (
	"slices"

	"github.com/iota-uz/orgchart/modules/orgchart"
	"github.com/iota-uz/orgchart/pkg/application"
)

var (
	BuiltInModules = []application.Module{
		orgchart.NewModule(),
	}
)

// Load registers the given modules plus the built-in set.
func Load(app application.Application, externalModules ...application.Module) error {
	return application.Load(app, slices.Concat(BuiltInModules, externalModules)...)
}
