package value_test

import (
	"testing"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/value"
)

func TestEvalOnePlusOneIsTaggedInt(t *testing.T) {
	rt := goja.New()
	raw, err := rt.RunString("1+1")
	if err != nil {
		t.Fatal(err)
	}
	v := value.Of(rt, raw)
	if v.Tag() != value.TagInt {
		t.Fatalf("Tag() = %v, want %v", v.Tag(), value.TagInt)
	}
	got, err := value.FromJS[int32](v)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Fatalf("FromJS[int32]() = %d, want 2", got)
	}
}

func TestFloatStaysFloat(t *testing.T) {
	rt := goja.New()
	raw, err := rt.RunString("1.5 + 1")
	if err != nil {
		t.Fatal(err)
	}
	v := value.Of(rt, raw)
	if v.Tag() != value.TagFloat {
		t.Fatalf("Tag() = %v, want %v", v.Tag(), value.TagFloat)
	}
	if !v.Is(value.TagFloat) {
		t.Fatal("expected Float to be interpretable as Float")
	}
}

func TestIntInterpretableAsFloat(t *testing.T) {
	rt := goja.New()
	v := value.Int(rt, 7)
	if !v.Is(value.TagFloat) {
		t.Fatal("expected Int to be interpretable as Float per spec's supertype relation")
	}
	if !v.IsNumber() {
		t.Fatal("expected IsNumber() true for an Int")
	}
}

func TestArrayInterpretableAsObject(t *testing.T) {
	rt := goja.New()
	raw, err := rt.RunString("[1,2,3]")
	if err != nil {
		t.Fatal(err)
	}
	v := value.Of(rt, raw)
	if v.Tag() != value.TagArray {
		t.Fatalf("Tag() = %v, want %v", v.Tag(), value.TagArray)
	}
	if !v.Is(value.TagObject) {
		t.Fatal("expected Array to be interpretable as Object")
	}
}

func TestFromJSOverflowFails(t *testing.T) {
	rt := goja.New()
	raw, err := rt.RunString("300")
	if err != nil {
		t.Fatal(err)
	}
	v := value.Of(rt, raw)
	if _, err := value.FromJS[int8](v); err == nil {
		t.Fatal("expected FromJS[int8] on 300 to fail with an overflow error")
	}
}

func TestFromJSNonIntegralFailsForIntTarget(t *testing.T) {
	rt := goja.New()
	raw, err := rt.RunString("3.5")
	if err != nil {
		t.Fatal(err)
	}
	v := value.Of(rt, raw)
	if _, err := value.FromJS[int32](v); err == nil {
		t.Fatal("expected FromJS[int32] on 3.5 to fail")
	}
}

func TestIntoJSRoundTripsString(t *testing.T) {
	rt := goja.New()
	v, err := value.IntoJS(rt, "hello")
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsString() {
		t.Fatal("expected IntoJS(string) to produce a String-tagged Value")
	}
	got, err := value.FromJS[string](v)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Fatalf("round trip = %q, want %q", got, "hello")
	}
}

func TestSliceRoundTrip(t *testing.T) {
	rt := goja.New()
	v, err := value.IntoSlice(rt, []int32{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsArray() {
		t.Fatal("expected IntoSlice to produce an Array-tagged Value")
	}
	got, err := value.ToSlice[int32](v)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("ToSlice() = %v, want [1 2 3]", got)
	}
}

func TestOptionalUndefinedIsNone(t *testing.T) {
	rt := goja.New()
	_, ok, err := value.ToOptional[int32](value.Undefined(rt))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected undefined to map to (zero, false)")
	}
}
