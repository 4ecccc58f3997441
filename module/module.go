package module

import (
	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"

	"github.com/gojsembed/qjsgo/jserr"
)

// Capability is the minimal surface module needs to evaluate a native
// module definition: the runtime to build exports against. A concrete
// *qjs.Capability satisfies this structurally without module importing
// qjs, which sits above module in the dependency order.
type Capability interface {
	Runtime() *goja.Runtime
}

// Declarations collects the export names a ModuleDefinition intends to
// populate, evaluated before Evaluate runs. goja has no separate
// static-analysis pass the way an ES module loader does, so Declare's
// only effect here is to pre-seed each declared name as undefined on the
// exports object - giving circular imports a binding to see before
// Evaluate fills it in, the same live-binding shape ESM gives JS modules.
type Declarations struct {
	exports *goja.Object
}

// Declare pre-seeds name as undefined on the module's exports object.
func (d *Declarations) Declare(name string) error {
	return d.exports.Set(name, goja.Undefined())
}

// Exports wraps the module's exports object for Evaluate to populate.
type Exports struct {
	obj *goja.Object
}

// Set assigns val to name on the exports object, the same convention
// goja-protobuf's setupExports uses for every native export.
func (x *Exports) Set(name string, val any) error {
	if err := x.obj.Set(name, val); err != nil {
		return jserr.IntoJS("go value", name)
	}
	return nil
}

// Object returns the underlying exports object, for definitions that need
// to call goja.Object methods setupExports doesn't expose (DefineAccessorProperty, etc).
func (x *Exports) Object() *goja.Object { return x.obj }

// ModuleDefinition is a native module: Declare runs first against every
// runtime that requires it (seeding bindings), then Evaluate populates
// those bindings. Grounded on goja-protobuf/register.go's Require()
// closure and goja-grpc's equivalent, generalized into a two-phase
// interface instead of one setupExports function per module.
type ModuleDefinition interface {
	Declare(*Declarations) error
	Evaluate(cap Capability, exports *Exports) error
}

// Loader builds a require.ModuleLoader for def, suitable for
// require.Registry.RegisterNativeModule.
func Loader(def ModuleDefinition) require.ModuleLoader {
	return func(runtime *goja.Runtime, mod *goja.Object) {
		exportsVal := mod.Get("exports")
		exportsObj, ok := exportsVal.(*goja.Object)
		if !ok {
			exportsObj = runtime.NewObject()
			_ = mod.Set("exports", exportsObj)
		}

		decls := &Declarations{exports: exportsObj}
		if err := def.Declare(decls); err != nil {
			panic(runtime.NewGoError(err))
		}

		exports := &Exports{obj: exportsObj}
		capImpl := runtimeCapability{rt: runtime}
		if err := def.Evaluate(capImpl, exports); err != nil {
			panic(runtime.NewGoError(err))
		}
	}
}

// runtimeCapability is the Capability module.Loader hands a
// ModuleDefinition when no richer *qjs.Capability is in scope (native
// module require() calls happen outside any With/WithValue callback).
type runtimeCapability struct{ rt *goja.Runtime }

func (c runtimeCapability) Runtime() *goja.Runtime { return c.rt }
