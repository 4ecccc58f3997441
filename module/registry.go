package module

import (
	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"

	"github.com/gojsembed/qjsgo/jserr"
)

// Registry wraps a goja_nodejs/require.Registry, the teacher's own
// mechanism for CommonJS-style require() resolution, adding Define for
// native ModuleDefinitions and an optional ModuleLoader-backed source
// resolver for specifiers the native registry can't satisfy.
type Registry struct {
	inner  *require.Registry
	loader ModuleLoader
}

// NewRegistry builds a Registry. If loader is non-nil, its Load backs
// require.WithLoader, so require('./foo') reads source through loader.Load
// instead of goja_nodejs's default filesystem loader; the path handed to
// Load is the one goja_nodejs resolved, and loader.Resolve is not called.
func NewRegistry(loader ModuleLoader) *Registry {
	var opts []require.Option
	if loader != nil {
		opts = append(opts, require.WithLoader(func(path string) ([]byte, error) {
			src, err := loader.Load(path)
			if err != nil {
				return nil, err
			}
			return []byte(src.Code), nil
		}))
	}
	return &Registry{inner: require.NewRegistry(opts...), loader: loader}
}

// Define registers def as a native module under name, loaded by
// JavaScript via require(name).
func (r *Registry) Define(name string, def ModuleDefinition) {
	r.inner.RegisterNativeModule(name, Loader(def))
}

// Enable wires this registry's require() implementation into rt.
func (r *Registry) Enable(rt *goja.Runtime) {
	r.inner.Enable(rt)
}

// Compile resolves and loads name relative to base via the configured
// ModuleLoader, returning its source text without evaluating it. Useful
// for pre-warming a source cache or validating an import graph ahead of
// Eval.
func (r *Registry) Compile(base, name string) (Source, error) {
	if r.loader == nil {
		return Source{}, jserr.Resolving(base, name, "no ModuleLoader configured")
	}
	resolved, err := r.loader.Resolve(base, name)
	if err != nil {
		return Source{}, jserr.Resolving(base, name, err.Error())
	}
	src, err := r.loader.Load(resolved)
	if err != nil {
		return Source{}, jserr.Loading(base, resolved, err.Error())
	}
	return src, nil
}

// Eval compiles name relative to base and runs it as a top-level script
// against rt, returning its completion value.
func (r *Registry) Eval(rt *goja.Runtime, base, name string) (goja.Value, error) {
	src, err := r.Compile(base, name)
	if err != nil {
		return nil, err
	}
	val, err := rt.RunString(src.Code)
	if err != nil {
		if exc, ok := err.(*goja.Exception); ok {
			return nil, jserr.Catch(exc)
		}
		return nil, jserr.Unknown(err)
	}
	return val, nil
}
