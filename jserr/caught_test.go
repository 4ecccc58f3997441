package jserr_test

import (
	"errors"
	"testing"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
)

func TestCatchExtractsExceptionInfo(t *testing.T) {
	rt := goja.New()
	_, err := rt.RunString(`
		function boom() {
			throw new TypeError("nope");
		}
		boom();
	`)
	if err == nil {
		t.Fatal("expected RunString to return an error")
	}
	var gojaErr *goja.Exception
	if !errors.As(err, &gojaErr) {
		t.Fatalf("expected *goja.Exception, got %T", err)
	}

	caught := jserr.Catch(gojaErr)
	if caught.Exception == nil {
		t.Fatal("expected Exception to be populated for a well-formed Error")
	}
	if caught.Exception.Message != "nope" {
		t.Fatalf("Exception.Message = %q, want %q", caught.Exception.Message, "nope")
	}
	if caught.Error() != "nope" {
		t.Fatalf("Error() = %q, want %q", caught.Error(), "nope")
	}
}

func TestCatchNonErrorThrow(t *testing.T) {
	rt := goja.New()
	_, err := rt.RunString(`throw "just a string";`)
	var gojaErr *goja.Exception
	if !errors.As(err, &gojaErr) {
		t.Fatalf("expected *goja.Exception, got %T", err)
	}

	caught := jserr.Catch(gojaErr)
	if caught.Exception != nil {
		t.Fatal("expected Exception to be nil for a thrown string")
	}
	if caught.Value.String() != "just a string" {
		t.Fatalf("Value.String() = %q, want %q", caught.Value.String(), "just a string")
	}
}

func TestThrowRoundTrips(t *testing.T) {
	rt := goja.New()
	_, err := rt.RunString(`throw new RangeError("out of bounds");`)
	var gojaErr *goja.Exception
	if !errors.As(err, &gojaErr) {
		t.Fatalf("expected *goja.Exception, got %T", err)
	}
	caught := jserr.Catch(gojaErr)

	rt.Set("rethrow", func(call goja.FunctionCall) goja.Value {
		jserr.Throw(rt, caught)
		return goja.Undefined()
	})

	_, err = rt.RunString(`
		let seen;
		try {
			rethrow();
		} catch (e) {
			seen = e;
		}
		if (!(seen instanceof RangeError) || seen.message !== "out of bounds") {
			throw new Error("round-trip failed: " + seen);
		}
	`)
	if err != nil {
		t.Fatalf("round-trip assertion failed: %v", err)
	}
}
