package qjs_test

import (
	"errors"
	"testing"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/persistent"
	"github.com/gojsembed/qjsgo/qjs"
)

func TestCapabilitySatisfiesPersistentCapability(t *testing.T) {
	rt := goja.New()
	cap := qjs.New(rt, 7)

	var _ persistent.Capability = cap

	if cap.Runtime() != rt {
		t.Fatal("Runtime() did not return the wrapped runtime")
	}
	if cap.EngineID() != 7 {
		t.Fatalf("EngineID() = %d, want 7", cap.EngineID())
	}
}

func TestCapabilityRequireOpenAfterClose(t *testing.T) {
	rt := goja.New()
	cap := qjs.New(rt, 1)

	if err := cap.RequireOpen(); err != nil {
		t.Fatalf("RequireOpen() on a fresh capability: %v", err)
	}

	cap.Close()

	err := cap.RequireOpen()
	if err == nil {
		t.Fatal("expected RequireOpen() to fail after Close()")
	}
	if !errors.Is(err, jserr.ErrScopeEscaped) {
		t.Fatalf("expected a ScopeEscaped error, got %v", err)
	}
}
