package module_test

import (
	"errors"
	"testing"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/module"
)

type greeterModule struct{}

func (greeterModule) Declare(d *module.Declarations) error {
	return d.Declare("greet")
}

func (greeterModule) Evaluate(cap module.Capability, exports *module.Exports) error {
	rt := cap.Runtime()
	return exports.Set("greet", func(name string) string {
		_ = rt
		return "hello, " + name
	})
}

func TestDefineAndRequireNativeModule(t *testing.T) {
	rt := goja.New()
	reg := module.NewRegistry(nil)
	reg.Define("greeter", greeterModule{})
	reg.Enable(rt)

	got, err := rt.RunString(`require('greeter').greet('world')`)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "hello, world" {
		t.Fatalf("greet('world') = %q, want %q", got.String(), "hello, world")
	}
}

type memoryLoader struct {
	files map[string]string
}

func (m memoryLoader) Resolve(base, name string) (string, error) {
	return name, nil
}

func (m memoryLoader) Load(name string) (module.Source, error) {
	code, ok := m.files[name]
	if !ok {
		return module.Source{}, errors.New("not found")
	}
	return module.Source{Path: name, Code: code}, nil
}

func TestRegistryEvalResolvesAndRunsSource(t *testing.T) {
	rt := goja.New()
	reg := module.NewRegistry(memoryLoader{files: map[string]string{
		"main.js": "1 + 2",
	}})

	got, err := reg.Eval(rt, "", "main.js")
	if err != nil {
		t.Fatal(err)
	}
	if got.ToInteger() != 3 {
		t.Fatalf("1+2 = %d, want 3", got.ToInteger())
	}
}
