package function

import (
	"reflect"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/value"
)

var (
	capabilityMarkerType = reflect.TypeOf(capabilityMarker{})
	exhaustiveMarkerType = reflect.TypeOf(exhaustiveMarker{})
)

type paramPlan struct {
	typ        reflect.Type
	ex         extractor // nil for capability/exhaustive params
	isThis     bool
	isCap      bool
	isRest     bool
	isOptional bool
}

// plan computes the arity contract and per-parameter extraction plan for
// a Go function fnType, per spec.md's "bridge computes a min/max arity
// and an exhaustiveness flag".
type plan struct {
	params     []paramPlan
	min, max   int
	exhaustive bool
}

func planFor(fnType reflect.Type) (*plan, error) {
	p := &plan{}
	for i := 0; i < fnType.NumIn(); i++ {
		paramType := fnType.In(i)

		if paramType == exhaustiveMarkerType || embeds(paramType, exhaustiveMarkerType) {
			p.exhaustive = true
			p.params = append(p.params, paramPlan{typ: paramType})
			continue
		}
		if paramType == capabilityMarkerType || embeds(paramType, capabilityMarkerType) {
			p.params = append(p.params, paramPlan{typ: paramType, isCap: true})
			continue
		}

		zero := reflect.New(paramType).Elem()
		ex, ok := zero.Interface().(extractor)
		if !ok {
			return nil, jserr.FromJSMessage("go func parameter", paramType.String(), "parameter type does not implement the function package's extractor contract (use Arg[T]/Opt[T]/Rest[T]/This[T])")
		}

		pp := paramPlan{typ: paramType, ex: ex}
		switch ex.kind() {
		case kindThis:
			pp.isThis = true
			p.params = append(p.params, pp)
		case kindOptional:
			pp.isOptional = true
			p.max++
			p.params = append(p.params, pp)
		case kindRest:
			pp.isRest = true
			p.params = append(p.params, pp)
		default: // kindPositional
			p.min++
			p.max++
			p.params = append(p.params, pp)
		}
	}
	return p, nil
}

func embeds(t, marker reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Type == marker {
			return true
		}
	}
	return false
}

// New wraps fn - a Go function whose parameters are composed from
// Arg[T]/Opt[T]/Rest[T]/This[T]/WithCapability/Exhaustive and which
// returns either (R, error) or just R - as a goja-callable value bound to
// cap's runtime. This is the Fn variant from spec.md §4.G; FuncMut/
// FuncOnce/AsyncFunc build on top of it.
func New(cap Capability, fn any) (goja.Value, error) {
	return newGuarded(cap, fn, func(call func() []reflect.Value) []reflect.Value {
		return call()
	})
}

// newGuarded is New with an interposed guard around the actual call into
// fn, letting FuncMut/FuncOnce enforce their re-entrancy/once contracts
// without duplicating argument extraction.
func newGuarded(cap Capability, fn any, guard func(call func() []reflect.Value) []reflect.Value) (goja.Value, error) {
	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return nil, jserr.FromJS("non-function", "function.New argument")
	}
	p, err := planFor(fnType)
	if err != nil {
		return nil, err
	}

	rt := cap.Runtime()
	trampoline := func(call goja.FunctionCall) (result goja.Value) {
		defer capturePanic(rt, &result)

		args, err := p.extractArgs(rt, cap, call)
		if err != nil {
			jserr.ThrowError(rt, err)
		}

		out := guard(func() []reflect.Value { return fnVal.Call(args) })
		return marshalResult(rt, out)
	}

	return rt.ToValue(trampoline), nil
}

// extractArgs builds the reflect.Value argument list for one call,
// checking arity first. It is shared by the synchronous trampoline above
// and AsyncFunc, which must extract arguments on the calling goroutine
// (call.Arguments is only valid for the duration of the call) before
// spawning the async body.
func (p *plan) extractArgs(rt *goja.Runtime, cap Capability, call goja.FunctionCall) ([]reflect.Value, error) {
	given := len(call.Arguments)
	if given < p.min {
		return nil, jserr.MissingArgs(p.min, given)
	}
	if p.exhaustive && given > p.max {
		return nil, jserr.TooManyArgs(p.max, given)
	}

	args := make([]reflect.Value, len(p.params))
	argIdx := 0
	for i, pp := range p.params {
		switch {
		case pp.isCap:
			args[i] = reflect.ValueOf(WithCapability{Cap: cap})
		case pp.typ == exhaustiveMarkerType || embeds(pp.typ, exhaustiveMarkerType):
			args[i] = reflect.Zero(pp.typ)
		case pp.isThis:
			rv, err := pp.ex.extractFrom(value.Of(rt, call.This))
			if err != nil {
				return nil, err
			}
			args[i] = rv
		case pp.isRest:
			rest := make([]value.Value, 0, max(0, given-argIdx))
			for ; argIdx < given; argIdx++ {
				rest = append(rest, value.Of(rt, call.Arguments[argIdx]))
			}
			rv, err := pp.ex.extractRest(rest)
			if err != nil {
				return nil, err
			}
			args[i] = rv
		case pp.isOptional:
			var v value.Value
			if argIdx < given {
				v = value.Of(rt, call.Arguments[argIdx])
			} else {
				v = value.Undefined(rt)
			}
			argIdx++
			rv, err := pp.ex.extractFrom(v)
			if err != nil {
				return nil, err
			}
			args[i] = rv
		default:
			var v value.Value
			if argIdx < given {
				v = value.Of(rt, call.Arguments[argIdx])
			} else {
				v = value.Undefined(rt)
			}
			argIdx++
			rv, err := pp.ex.extractFrom(v)
			if err != nil {
				return nil, err
			}
			args[i] = rv
		}
	}
	return args, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// marshalResult converts a Go function's (R, error) or (R) return values
// back to a goja.Value, throwing if an error was returned.
func marshalResult(rt *goja.Runtime, out []reflect.Value) goja.Value {
	if len(out) == 0 {
		return goja.Undefined()
	}
	var errVal reflect.Value
	resultVal := out[0]
	if len(out) == 2 {
		errVal = out[1]
	}
	if errVal.IsValid() && !errVal.IsNil() {
		jserr.ThrowError(rt, errVal.Interface().(error))
	}
	if !resultVal.IsValid() {
		return goja.Undefined()
	}
	switch rv := resultVal.Interface().(type) {
	case value.Value:
		return rv.Raw()
	case goja.Value:
		return rv
	}
	converted, err := value.IntoJS(rt, resultVal.Interface())
	if err != nil {
		jserr.ThrowError(rt, err)
	}
	return converted.Raw()
}

// capturePanic is the panic-capture trampoline from spec.md §4.G: every
// host-callback body runs under this boundary. A captured Go panic
// becomes a JS exception rather than unwinding into goja's own call
// stack uncontrolled.
func capturePanic(rt *goja.Runtime, result *goja.Value) {
	r := recover()
	if r == nil {
		return
	}
	if gojaVal, ok := r.(goja.Value); ok {
		panic(gojaVal)
	}
	if err, ok := r.(error); ok {
		jserr.ThrowError(rt, err)
		return
	}
	panic(rt.NewGoError(jserr.Unknown(nil)))
}
