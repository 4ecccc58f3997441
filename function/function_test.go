package function_test

import (
	"errors"
	"testing"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/function"
)

type fakeCapability struct {
	rt *goja.Runtime
}

func (f fakeCapability) Runtime() *goja.Runtime { return f.rt }

func TestFuncBasicArityAndCall(t *testing.T) {
	rt := goja.New()
	cap := fakeCapability{rt: rt}

	add := func(a function.Arg[int32], b function.Arg[int32]) (int32, error) {
		return a.Value + b.Value, nil
	}
	fn, err := function.Func(cap, add)
	if err != nil {
		t.Fatal(err)
	}
	_ = rt.Set("add", fn)

	got, err := rt.RunString("add(2, 3)")
	if err != nil {
		t.Fatal(err)
	}
	if got.ToInteger() != 5 {
		t.Fatalf("add(2,3) = %v, want 5", got)
	}
}

func TestFuncMissingArgsThrows(t *testing.T) {
	rt := goja.New()
	cap := fakeCapability{rt: rt}

	add := func(a function.Arg[int32], b function.Arg[int32]) (int32, error) {
		return a.Value + b.Value, nil
	}
	fn, err := function.Func(cap, add)
	if err != nil {
		t.Fatal(err)
	}
	_ = rt.Set("add", fn)

	_, err = rt.RunString("add(2)")
	if err == nil {
		t.Fatal("expected calling add with only one argument to throw")
	}
}

func TestOptAndRest(t *testing.T) {
	rt := goja.New()
	cap := fakeCapability{rt: rt}

	greet := func(name function.Arg[string], greeting function.Opt[string], rest function.Rest[string]) (string, error) {
		g := "Hello"
		if greeting.Present {
			g = greeting.Value
		}
		out := g + ", " + name.Value
		for _, extra := range rest.Values {
			out += " " + extra
		}
		return out, nil
	}
	fn, err := function.Func(cap, greet)
	if err != nil {
		t.Fatal(err)
	}
	_ = rt.Set("greet", fn)

	got, err := rt.RunString(`greet("Ada")`)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "Hello, Ada" {
		t.Fatalf("greet(\"Ada\") = %q, want %q", got.String(), "Hello, Ada")
	}

	got2, err := rt.RunString(`greet("Ada", "Hi", "!", "there")`)
	if err != nil {
		t.Fatal(err)
	}
	if got2.String() != "Hi, Ada ! there" {
		t.Fatalf("greet with rest = %q, want %q", got2.String(), "Hi, Ada ! there")
	}
}

func TestFuncPanicBecomesException(t *testing.T) {
	rt := goja.New()
	cap := fakeCapability{rt: rt}

	boom := func() (int32, error) {
		panic(errors.New("kaboom"))
	}
	fn, err := function.Func(cap, boom)
	if err != nil {
		t.Fatal(err)
	}
	_ = rt.Set("boom", fn)

	_, err = rt.RunString(`
		let caught = false;
		try { boom(); } catch (e) { caught = true; }
		if (!caught) throw new Error("expected boom() to throw");
	`)
	if err != nil {
		t.Fatal(err)
	}
}

func TestFuncMutRejectsReentrantCall(t *testing.T) {
	rt := goja.New()
	cap := fakeCapability{rt: rt}

	var self goja.Callable
	reenter := func(n function.Arg[int32]) (int32, error) {
		if n.Value > 0 {
			if _, err := self(goja.Undefined(), rt.ToValue(n.Value-1)); err != nil {
				panic(err)
			}
		}
		return n.Value, nil
	}
	fn, err := function.FuncMut(cap, reenter)
	if err != nil {
		t.Fatal(err)
	}
	callable, ok := goja.AssertFunction(fn)
	if !ok {
		t.Fatal("expected a callable")
	}
	self = callable
	_ = rt.Set("reenter", fn)

	_, err = rt.RunString("reenter(2)")
	if err == nil {
		t.Fatal("expected a re-entrant FuncMut call to fail")
	}
}

func TestFuncOnceRejectsSecondCall(t *testing.T) {
	rt := goja.New()
	cap := fakeCapability{rt: rt}

	calls := 0
	once := func() (int32, error) {
		calls++
		return int32(calls), nil
	}
	fn, err := function.FuncOnce(cap, once)
	if err != nil {
		t.Fatal(err)
	}
	_ = rt.Set("once", fn)

	if _, err := rt.RunString("once()"); err != nil {
		t.Fatal(err)
	}
	_, err = rt.RunString("once()")
	if err == nil {
		t.Fatal("expected the second FuncOnce call to throw")
	}
}
