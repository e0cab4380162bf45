package app

import (
	"github.com/vk/tracegraph/internal/registry"
	"github.com/vk/tracegraph/modules/csp"
	"github.com/vk/tracegraph/modules/search"
)

// coreModules is the definitive list of all handler modules that are
// compiled into the tracegraph binary.
var coreModules = []registry.Module{
	&csp.Module{},
	&search.Module{},
}
