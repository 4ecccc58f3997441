// Package urlparams implements a URLSearchParams native class, exercising
// class, object property iteration and Symbol.iterator access end-to-end
// against one *goja.Runtime.
package urlparams

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/class"
	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/object"
	"github.com/gojsembed/qjsgo/value"
)

type pair struct{ name, value string }

// URLSearchParams is the query-string model behind the JS class of the
// same name: an ordered, possibly-duplicate-keyed list of name/value
// pairs, grounded on original_source/util/src/url_search_params.rs's
// Vec<(String, String)> model rather than a map, since duplicate keys
// and insertion order both matter to the real API (append/getAll/sort).
type URLSearchParams struct {
	data []pair
}

type def struct{ class *class.Class[URLSearchParams] }

func (def) Name() string { return "URLSearchParams" }

// Register defines the URLSearchParams class on rt and returns its
// constructor function, for installation as a global or module export.
func Register(rt *goja.Runtime) (*goja.Object, error) {
	d := &def{}
	c, err := class.Register[URLSearchParams](rt, d)
	if err != nil {
		return nil, err
	}
	d.class = c

	if err := d.wirePrototype(rt, c.Prototype()); err != nil {
		return nil, err
	}

	return c.NewConstructor(d.construct)
}

func (d *def) construct(call goja.ConstructorCall) (URLSearchParams, error) {
	if len(call.Arguments) == 0 || goja.IsUndefined(call.Argument(0)) {
		return URLSearchParams{}, nil
	}
	return parseInput(call.Argument(0))
}

func parseInput(v goja.Value) (URLSearchParams, error) {
	switch raw := v.Export().(type) {
	case string:
		return URLSearchParams{data: parseQueryString(raw)}, nil
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return URLSearchParams{}, jserr.FromJS("unsupported type", "URLSearchParams constructor")
	}

	if obj.ClassName() == "Array" {
		return parseArrayInput(obj)
	}
	if next, ok := goja.AssertFunction(obj.Get("next")); ok {
		return parseIteratorInput(obj.Runtime(), next)
	}
	if iterSym, err := symbolIterator(obj.Runtime()); err == nil {
		if iterFn, ok := goja.AssertFunction(obj.GetSymbol(iterSym)); ok {
			it, err := iterFn(obj)
			if err != nil {
				return URLSearchParams{}, jserr.Unknown(err)
			}
			itObj, ok := it.(*goja.Object)
			if !ok {
				return URLSearchParams{}, jserr.FromJS("malformed iterator", "URLSearchParams constructor")
			}
			if next, ok := goja.AssertFunction(itObj.Get("next")); ok {
				return parseIteratorInput(obj.Runtime(), func(_ goja.Value, args ...goja.Value) (goja.Value, error) { return next(itObj, args...) })
			}
		}
	}
	return parseRecordInput(obj)
}

func parseQueryString(raw string) []pair {
	query := raw
	if idx := strings.Index(raw, "?"); idx >= 0 {
		query = raw[idx+1:]
	}
	if query == "" {
		return nil
	}
	parts := strings.Split(query, "&")
	data := make([]pair, 0, len(parts))
	for _, part := range parts {
		name, value, _ := strings.Cut(part, "=")
		data = append(data, pair{name: name, value: value})
	}
	return data
}

func parseArrayInput(obj *goja.Object) (URLSearchParams, error) {
	rt := obj.Runtime()
	arr, err := object.FromArray(value.Of(rt, obj))
	if err != nil {
		return URLSearchParams{}, err
	}
	var data []pair
	for _, item := range arr.Iter() {
		inner, ok := item.Raw().(*goja.Object)
		if !ok {
			return URLSearchParams{}, jserr.FromJS("non-pair entry", "URLSearchParams constructor")
		}
		innerArr, err := object.FromArray(value.Of(rt, inner))
		if err != nil {
			return URLSearchParams{}, err
		}
		data = append(data, pair{
			name:  innerArr.At(0).Raw().ToString().String(),
			value: innerArr.At(1).Raw().ToString().String(),
		})
	}
	return URLSearchParams{data: data}, nil
}

func parseIteratorInput(rt *goja.Runtime, next goja.Callable) (URLSearchParams, error) {
	var data []pair
	for {
		res, err := next(goja.Undefined())
		if err != nil {
			return URLSearchParams{}, jserr.Unknown(err)
		}
		resObj, ok := res.(*goja.Object)
		if !ok {
			return URLSearchParams{}, jserr.FromJS("malformed iterator result", "URLSearchParams constructor")
		}
		if resObj.Get("done").ToBoolean() {
			break
		}
		valueObj, ok := resObj.Get("value").(*goja.Object)
		if !ok {
			return URLSearchParams{}, jserr.FromJS("malformed iterator entry", "URLSearchParams constructor")
		}
		entryArr, err := object.FromArray(value.Of(rt, valueObj))
		if err != nil {
			return URLSearchParams{}, err
		}
		data = append(data, pair{
			name:  entryArr.At(0).Raw().ToString().String(),
			value: entryArr.At(1).Raw().ToString().String(),
		})
	}
	return URLSearchParams{data: data}, nil
}

func parseRecordInput(obj *goja.Object) (URLSearchParams, error) {
	rt := obj.Runtime()
	o, err := object.From(value.Of(rt, obj))
	if err != nil {
		return URLSearchParams{}, err
	}
	var data []pair
	for _, key := range o.Keys(object.FilterStringKeys | object.FilterEnumerableOnly) {
		data = append(data, pair{name: key, value: o.Get(key).Raw().ToString().String()})
	}
	return URLSearchParams{data: data}, nil
}

func (d *def) wirePrototype(rt *goja.Runtime, proto *goja.Object) error {
	c := d.class

	mustSet := func(name string, fn func(goja.FunctionCall) goja.Value) error {
		return proto.Set(name, rt.ToValue(fn))
	}

	if err := mustSet("append", func(call goja.FunctionCall) goja.Value {
		this := thisObject(call)
		mut, err := c.TryMut(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		defer mut.Drop()
		mut.Get().data = append(mut.Get().data, pair{
			name:  call.Argument(0).String(),
			value: call.Argument(1).String(),
		})
		return goja.Undefined()
	}); err != nil {
		return err
	}

	if err := mustSet("delete", func(call goja.FunctionCall) goja.Value {
		this := thisObject(call)
		mut, err := c.TryMut(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		defer mut.Drop()
		name := call.Argument(0).String()
		hasValue := len(call.Arguments) > 1 && !goja.IsUndefined(call.Argument(1))
		value := call.Argument(1).String()
		data := mut.Get().data[:0]
		for _, p := range mut.Get().data {
			if p.name == name && (!hasValue || p.value == value) {
				continue
			}
			data = append(data, p)
		}
		mut.Get().data = data
		return goja.Undefined()
	}); err != nil {
		return err
	}

	if err := mustSet("get", func(call goja.FunctionCall) goja.Value {
		this := thisObject(call)
		ref, err := c.TryRef(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		defer ref.Drop()
		name := call.Argument(0).String()
		for _, p := range ref.Get().data {
			if p.name == name {
				return rt.ToValue(p.value)
			}
		}
		return goja.Null()
	}); err != nil {
		return err
	}

	if err := mustSet("getAll", func(call goja.FunctionCall) goja.Value {
		this := thisObject(call)
		ref, err := c.TryRef(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		defer ref.Drop()
		name := call.Argument(0).String()
		var values []string
		for _, p := range ref.Get().data {
			if p.name == name {
				values = append(values, p.value)
			}
		}
		return rt.ToValue(values)
	}); err != nil {
		return err
	}

	if err := mustSet("has", func(call goja.FunctionCall) goja.Value {
		this := thisObject(call)
		ref, err := c.TryRef(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		defer ref.Drop()
		name := call.Argument(0).String()
		hasValue := len(call.Arguments) > 1 && !goja.IsUndefined(call.Argument(1))
		value := call.Argument(1).String()
		for _, p := range ref.Get().data {
			if p.name == name && (!hasValue || p.value == value) {
				return rt.ToValue(true)
			}
		}
		return rt.ToValue(false)
	}); err != nil {
		return err
	}

	if err := mustSet("set", func(call goja.FunctionCall) goja.Value {
		this := thisObject(call)
		mut, err := c.TryMut(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		defer mut.Drop()
		name := call.Argument(0).String()
		value := call.Argument(1).String()
		found := false
		data := mut.Get().data[:0]
		for _, p := range mut.Get().data {
			if p.name != name {
				data = append(data, p)
				continue
			}
			if found {
				continue
			}
			found = true
			data = append(data, pair{name: name, value: value})
		}
		if !found {
			data = append(data, pair{name: name, value: value})
		}
		mut.Get().data = data
		return goja.Undefined()
	}); err != nil {
		return err
	}

	if err := mustSet("sort", func(call goja.FunctionCall) goja.Value {
		this := thisObject(call)
		mut, err := c.TryMut(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		defer mut.Drop()
		data := mut.Get().data
		for i := 1; i < len(data); i++ {
			for j := i; j > 0 && data[j-1].name > data[j].name; j-- {
				data[j-1], data[j] = data[j], data[j-1]
			}
		}
		return goja.Undefined()
	}); err != nil {
		return err
	}

	if err := mustSet("toString", func(call goja.FunctionCall) goja.Value {
		this := thisObject(call)
		ref, err := c.TryRef(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		defer ref.Drop()
		parts := make([]string, len(ref.Get().data))
		for i, p := range ref.Get().data {
			parts[i] = p.name + "=" + p.value
		}
		return rt.ToValue(strings.Join(parts, "&"))
	}); err != nil {
		return err
	}

	if err := mustSet("forEach", func(call goja.FunctionCall) goja.Value {
		this := thisObject(call)
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			jserr.ThrowError(rt, jserr.FromJS("non-function", "forEach callback"))
		}
		ref, err := c.TryRef(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		data := append([]pair(nil), ref.Get().data...)
		ref.Drop()
		for _, p := range data {
			if _, err := callback(goja.Undefined(), rt.ToValue(p.value), rt.ToValue(p.name), this); err != nil {
				panic(err)
			}
		}
		return goja.Undefined()
	}); err != nil {
		return err
	}

	if err := proto.DefineAccessorProperty("size", rt.ToValue(func(call goja.FunctionCall) goja.Value {
		this := thisObject(call)
		ref, err := c.TryRef(this)
		if err != nil {
			jserr.ThrowError(rt, err)
		}
		defer ref.Drop()
		return rt.ToValue(len(ref.Get().data))
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		return jserr.Borrow(err.Error())
	}

	entriesFn := func(call goja.FunctionCall) goja.Value { return d.makeIterator(rt, call, entryProjection) }
	keysFn := func(call goja.FunctionCall) goja.Value { return d.makeIterator(rt, call, keyProjection) }
	valuesFn := func(call goja.FunctionCall) goja.Value { return d.makeIterator(rt, call, valueProjection) }

	if err := mustSet("entries", entriesFn); err != nil {
		return err
	}
	if err := mustSet("keys", keysFn); err != nil {
		return err
	}
	if err := mustSet("values", valuesFn); err != nil {
		return err
	}

	iterSym, err := symbolIterator(rt)
	if err != nil {
		return err
	}
	if err := proto.SetSymbol(iterSym, rt.ToValue(entriesFn)); err != nil {
		return jserr.Borrow(err.Error())
	}

	return nil
}

type projection func(p pair) []string

func entryProjection(p pair) []string { return []string{p.name, p.value} }
func keyProjection(p pair) []string   { return []string{p.name} }
func valueProjection(p pair) []string { return []string{p.value} }

// makeIterator builds a fresh, self-contained iterator object over a
// snapshot of this instance's data taken at call time - matching the
// Rust reference's position-indexed iterator objects, but backed by a Go
// closure over an index instead of a position property on the object.
func (d *def) makeIterator(rt *goja.Runtime, call goja.FunctionCall, project projection) goja.Value {
	this := thisObject(call)
	ref, err := d.class.TryRef(this)
	if err != nil {
		jserr.ThrowError(rt, err)
	}
	snapshot := append([]pair(nil), ref.Get().data...)
	ref.Drop()

	position := 0
	iter := rt.NewObject()
	_ = iter.Set("next", rt.ToValue(func(goja.FunctionCall) goja.Value {
		res := rt.NewObject()
		if position >= len(snapshot) {
			_ = res.Set("done", true)
			_ = res.Set("value", goja.Undefined())
			return res
		}
		values := project(snapshot[position])
		position++
		_ = res.Set("done", false)
		if len(values) == 1 {
			_ = res.Set("value", rt.ToValue(values[0]))
		} else {
			_ = res.Set("value", rt.ToValue(values))
		}
		return res
	}))
	iterSym, err := symbolIterator(rt)
	if err == nil {
		_ = iter.SetSymbol(iterSym, rt.ToValue(func(c goja.FunctionCall) goja.Value { return iter }))
	}
	return iter
}

func symbolIterator(rt *goja.Runtime) (*goja.Symbol, error) {
	symCtor, ok := rt.GlobalObject().Get("Symbol").(*goja.Object)
	if !ok {
		return nil, jserr.Unknown(nil)
	}
	sym, ok := symCtor.Get("iterator").(*goja.Symbol)
	if !ok {
		return nil, jserr.Unknown(nil)
	}
	return sym, nil
}

func thisObject(call goja.FunctionCall) *goja.Object {
	obj, ok := call.This.(*goja.Object)
	if !ok {
		panic("URLSearchParams method called on a non-object receiver")
	}
	return obj
}
