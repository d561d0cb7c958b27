// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package modules loads the configured backends. Backends are compiled
// in and selected by name through the Modules/Modules configuration
// list, so "loading" a module means running its register function and
// remembering the teardown it hands back.
package modules

import (
	"fmt"

	"github.com/pdiddy/scipaper/internal/backends/arxiv"
	"github.com/pdiddy/scipaper/internal/backends/core"
	"github.com/pdiddy/scipaper/internal/backends/crossref"
	"github.com/pdiddy/scipaper/internal/backends/scihub"
	"github.com/pdiddy/scipaper/internal/conf"
	"github.com/pdiddy/scipaper/internal/logging"
)

// RegisterFunc installs a backend and returns its teardown.
type RegisterFunc func(*conf.Conf) (func(), error)

// factories maps module names accepted in the configuration to their
// register functions.
var factories = map[string]RegisterFunc{
	crossref.BackendName: crossref.Register,
	core.BackendName:     core.Register,
	scihub.BackendName:   scihub.Register,
	arxiv.BackendName:    arxiv.Register,
}

type loadedModule struct {
	name string
	exit func()
}

var loaded []loadedModule

// Available lists the module names the build knows about.
func Available() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}

// Init loads every module named in the Modules/Modules list, in list
// order. A single failing module unwinds the ones already loaded and
// fails the whole init.
func Init(c *conf.Conf) error {
	for _, name := range c.GetStringList("Modules", "Modules") {
		factory, ok := factories[name]
		if !ok {
			Exit()
			return fmt.Errorf("unknown module %q", name)
		}
		exit, err := factory(c)
		if err != nil {
			Exit()
			return fmt.Errorf("module %q failed to initialize: %w", name, err)
		}
		loaded = append(loaded, loadedModule{name: name, exit: exit})
		logging.L().Debug("module loaded", "name", name)
	}
	return nil
}

// Exit unloads the modules in reverse load order.
func Exit() {
	for i := len(loaded) - 1; i >= 0; i-- {
		loaded[i].exit()
	}
	loaded = nil
}
