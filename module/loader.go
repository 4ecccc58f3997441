// Package module implements the native and source module surface: native
// modules declare their exports through ModuleDefinition (grounded on
// goja-protobuf's Module/Require split - a Go-side type that owns state
// plus a thin registration shim), while Source modules are resolved and
// loaded through a ModuleLoader the host supplies, the same two-phase
// resolve/load split goja_nodejs/require.SourceLoader leaves to the host.
package module

// Source is the text of a resolved module, as returned by a
// ModuleLoader's Load step.
type Source struct {
	// Path is the loader-resolved, canonical specifier for this source -
	// what Resolve returned, not the raw string a script imported.
	Path string
	Code string
}

// ModuleLoader resolves import specifiers to canonical paths and loads
// their source text. Resolve is given the importing module's own path
// (empty for a top-level Eval) so relative specifiers work; Load then
// fetches the resolved path's contents.
type ModuleLoader interface {
	Resolve(base, name string) (string, error)
	Load(name string) (Source, error)
}

// ModuleLoaderFunc adapts two plain functions to a ModuleLoader.
type ModuleLoaderFunc struct {
	ResolveFunc func(base, name string) (string, error)
	LoadFunc    func(name string) (Source, error)
}

func (f ModuleLoaderFunc) Resolve(base, name string) (string, error) { return f.ResolveFunc(base, name) }
func (f ModuleLoaderFunc) Load(name string) (Source, error)          { return f.LoadFunc(name) }
