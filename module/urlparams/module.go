package urlparams

import (
	"github.com/gojsembed/qjsgo/module"
)

// ModuleName is the specifier scripts use to require this class:
// require('url-search-params').URLSearchParams.
const ModuleName = "url-search-params"

// definition adapts Register to module.ModuleDefinition, so
// URLSearchParams can be loaded via require() in addition to being
// installed as a realm global.
type definition struct{}

// Definition returns a module.ModuleDefinition exposing URLSearchParams
// as this module's single export, for Registry.Define(ModuleName, ...).
func Definition() module.ModuleDefinition { return definition{} }

func (definition) Declare(d *module.Declarations) error {
	return d.Declare("URLSearchParams")
}

func (definition) Evaluate(cap module.Capability, exports *module.Exports) error {
	ctor, err := Register(cap.Runtime())
	if err != nil {
		return err
	}
	return exports.Set("URLSearchParams", ctor)
}
