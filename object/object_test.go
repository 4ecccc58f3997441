package object_test

import (
	"testing"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/object"
	"github.com/gojsembed/qjsgo/value"
)

func TestGetSetHasDelete(t *testing.T) {
	rt := goja.New()
	o := object.New(rt)

	if err := object.SetAs(o, "name", "ada"); err != nil {
		t.Fatal(err)
	}
	if !o.Has("name") {
		t.Fatal("expected Has(\"name\") to be true after Set")
	}
	got, err := object.GetAs[string](o, "name")
	if err != nil {
		t.Fatal(err)
	}
	if got != "ada" {
		t.Fatalf("GetAs = %q, want %q", got, "ada")
	}
	if err := o.Delete("name"); err != nil {
		t.Fatal(err)
	}
	if o.HasOwn("name") {
		t.Fatal("expected HasOwn(\"name\") to be false after Delete")
	}
}

func TestPrototypeChainAndInstanceOf(t *testing.T) {
	rt := goja.New()
	raw, err := rt.RunString(`
		function Animal() {}
		function Dog() {}
		Dog.prototype = Object.create(Animal.prototype);
		var rex = new Dog();
		rex;
	`)
	if err != nil {
		t.Fatal(err)
	}
	rexObj, err := object.From(value.Of(rt, raw))
	if err != nil {
		t.Fatal(err)
	}
	dogCtorVal, err := rt.RunString("Dog")
	if err != nil {
		t.Fatal(err)
	}
	dogCtor, err := object.From(value.Of(rt, dogCtorVal))
	if err != nil {
		t.Fatal(err)
	}
	isInstance, err := rexObj.InstanceOf(dogCtor)
	if err != nil {
		t.Fatal(err)
	}
	if !isInstance {
		t.Fatal("expected rex instanceof Dog to be true")
	}
}

func TestDefinePropertyNonConfigurableEnforced(t *testing.T) {
	rt := goja.New()
	o := object.New(rt)
	err := o.DefineProperty("frozen", object.Property{
		Value:        value.Int(rt, 1),
		Writable:     false,
		Configurable: false,
		Enumerable:   true,
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := object.GetAs[int32](o, "frozen")
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Fatalf("frozen = %d, want 1", got)
	}
	// Deleting a non-configurable property must fail, matching spec's
	// "throws if unconfigurable" contract.
	if err := o.Delete("frozen"); err == nil {
		t.Fatal("expected Delete of a non-configurable property to fail")
	}
}

func TestArrayPushPopLen(t *testing.T) {
	rt := goja.New()
	arr := object.NewArray(rt)
	if err := arr.Push(value.Int(rt, 1), value.Int(rt, 2), value.Int(rt, 3)); err != nil {
		t.Fatal(err)
	}
	if arr.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", arr.Len())
	}
	last, err := arr.Pop()
	if err != nil {
		t.Fatal(err)
	}
	got, err := value.FromJS[int32](last)
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Fatalf("Pop() = %d, want 3", got)
	}
	if arr.Len() != 2 {
		t.Fatalf("Len() after Pop = %d, want 2", arr.Len())
	}
}

func TestArrayFromValueWrongTagFails(t *testing.T) {
	rt := goja.New()
	v := value.String(rt, "not an array")
	if _, err := object.FromArray(v); err == nil {
		t.Fatal("expected FromArray on a string Value to fail")
	}
}

func TestEntriesAndValues(t *testing.T) {
	rt := goja.New()
	o := object.New(rt)
	_ = object.SetAs(o, "a", int32(1))
	_ = object.SetAs(o, "b", int32(2))

	entries := o.Entries(object.FilterDefault)
	if len(entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(entries))
	}
	seen := map[string]int32{}
	for _, e := range entries {
		n, err := value.FromJS[int32](e.Value)
		if err != nil {
			t.Fatal(err)
		}
		seen[e.Key] = n
	}
	if seen["a"] != 1 || seen["b"] != 2 {
		t.Fatalf("seen = %v, want a=1 b=2", seen)
	}
}
