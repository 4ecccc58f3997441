package realm_test

import (
	"errors"
	"testing"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/qjs"
	"github.com/gojsembed/qjsgo/realm"
	"github.com/gojsembed/qjsgo/value"
)

func TestEvalOnePlusOneIsInt(t *testing.T) {
	rt := goja.New()
	r := realm.New(rt, 1)

	got, err := r.Eval("1+1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsInt() {
		t.Fatalf("tag = %v, want Int", got.Tag())
	}
	n, err := value.FromJS[int32](got)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("1+1 = %d, want 2", n)
	}
}

func TestEvalThrowIsCaught(t *testing.T) {
	rt := goja.New()
	r := realm.New(rt, 1)

	_, err := r.Eval(`throw new TypeError("boom")`)
	if err == nil {
		t.Fatal("expected an error from a throwing script")
	}
}

func TestEvalThrowNumberCaughtAsRawValue(t *testing.T) {
	rt := goja.New()
	r := realm.New(rt, 1)

	_, err := r.Eval(`throw 3`)
	if err == nil {
		t.Fatal("expected an error from a throwing script")
	}

	var caught *jserr.CaughtError
	if !errors.As(err, &caught) {
		t.Fatalf("err = %v (%T), want *jserr.CaughtError", err, err)
	}
	if caught.Exception != nil {
		t.Fatalf("Exception = %+v, want nil for a thrown number", caught.Exception)
	}
	if got := caught.Value.ToInteger(); got != 3 {
		t.Fatalf("caught value = %d, want 3", got)
	}
}

func TestWithClosesCapabilityOnReturn(t *testing.T) {
	rt := goja.New()
	r := realm.New(rt, 1)

	var captured *qjs.Capability
	if err := r.With(func(cap *qjs.Capability) error {
		captured = cap
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := captured.RequireOpen(); err == nil {
		t.Fatal("expected the capability to be closed once With returned")
	}
}

func TestSetGlobalAndGlobal(t *testing.T) {
	rt := goja.New()
	r := realm.New(rt, 1)

	if err := r.SetGlobal("answer", 42); err != nil {
		t.Fatal(err)
	}
	got, err := r.Global("answer")
	if err != nil {
		t.Fatal(err)
	}
	n, err := value.FromJS[int32](got)
	if err != nil {
		t.Fatal(err)
	}
	if n != 42 {
		t.Fatalf("answer = %d, want 42", n)
	}
}
