package function_test

import (
	"testing"
	"time"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/asynccore"
	"github.com/gojsembed/qjsgo/function"
)

// TestAsyncFuncDelayPreservesPrintOrder builds a delay(ms, cb)-style
// AsyncFunc against a real asynccore.Queue (both Spawn and Schedule, not
// the test-only fakes async_test.go uses) and checks that host-observable
// ordering matches what a JS caller of setTimeout would expect: code
// following the delay(...) call runs before the delayed callback does,
// even though delay's own Go-side sleep only resolves later.
func TestAsyncFuncDelayPreservesPrintOrder(t *testing.T) {
	rt := goja.New()
	cap := fakeCapability{rt: rt}
	queue := asynccore.NewQueue()

	delay := func(ms function.Arg[int32]) (bool, error) {
		time.Sleep(time.Duration(ms.Value) * time.Millisecond)
		return true, nil
	}
	fn, err := function.AsyncFunc(cap, queue, queue, delay)
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.Set("delay", fn); err != nil {
		t.Fatal(err)
	}

	var order []string
	if err := rt.Set("record", func(call goja.FunctionCall) goja.Value {
		order = append(order, call.Argument(0).String())
		return goja.Undefined()
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := rt.RunString(`
		record("before");
		delay(10).then(() => record("after delay"));
		record("after call");
	`); err != nil {
		t.Fatal(err)
	}

	if got := []string{order[0], order[1]}; got[0] != "before" || got[1] != "after call" {
		t.Fatalf("synchronous order = %v, want [before, after call]", got)
	}

	deadline := time.Now().Add(5 * time.Second)
	for queue.Live() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("delay never settled")
		}
		queue.Poll(nil)
		time.Sleep(time.Millisecond)
	}

	if len(order) != 3 || order[2] != "after delay" {
		t.Fatalf("final order = %v, want [before, after call, after delay]", order)
	}
}
