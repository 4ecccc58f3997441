package engine_test

import (
	"testing"
	"time"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/engine"
	"github.com/gojsembed/qjsgo/persistent"
	"github.com/gojsembed/qjsgo/qjs"
	"github.com/gojsembed/qjsgo/value"
)

func TestNewRealmEvaluatesScript(t *testing.T) {
	e, err := engine.New()
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	r, err := e.NewRealm()
	if err != nil {
		t.Fatal(err)
	}

	got, err := r.Eval("1+1")
	if err != nil {
		t.Fatal(err)
	}
	n, err := value.FromJS[int32](got)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("1+1 = %d, want 2", n)
	}
}

func TestNewRealmWithGlobalOption(t *testing.T) {
	e, err := engine.New()
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	r, err := e.NewRealm(engine.WithGlobal("answer", 42))
	if err != nil {
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

func TestSetInterruptHandlerStopsLongRunningScript(t *testing.T) {
	e, err := engine.New()
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	r, err := e.NewRealm()
	if err != nil {
		t.Fatal(err)
	}

	stop := make(chan struct{})
	e.SetInterruptHandler(func() bool {
		select {
		case <-stop:
			return true
		default:
			return false
		}
	})

	done := make(chan error, 1)
	go func() {
		_, err := r.Eval("while (true) {}")
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	close(stop)

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an interrupted script to return an error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("script did not stop after interrupt handler requested it")
	}
}

func TestMemoryUsageReportsNonZeroHeap(t *testing.T) {
	e, err := engine.New()
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	usage := e.MemoryUsage()
	if usage.HeapSys == 0 {
		t.Fatal("expected HeapSys to be non-zero for a running process")
	}
}

func TestHasPendingJobsAndExecutePendingJob(t *testing.T) {
	e, err := engine.New()
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if e.HasPendingJobs() {
		t.Fatal("fresh engine should have no pending jobs")
	}

	ran := make(chan struct{})
	e.Queue().Schedule(func() { close(ran) })

	if !e.HasPendingJobs() {
		t.Fatal("expected a scheduled job to count as pending")
	}

	progressed, err := e.ExecutePendingJob()
	if err != nil {
		t.Fatal(err)
	}
	if !progressed {
		t.Fatal("expected ExecutePendingJob to report progress")
	}

	select {
	case <-ran:
	default:
		t.Fatal("scheduled callback did not run")
	}
}

func TestPersistentSurvivesAcrossRealmsOfSameEngine(t *testing.T) {
	e, err := engine.New()
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	a, err := e.NewRealm()
	if err != nil {
		t.Fatal(err)
	}

	v, err := a.Eval(`(function greet(name) { return "hello, " + name; })`)
	if err != nil {
		t.Fatal(err)
	}

	var saved *persistent.Persistent
	if err := a.With(func(cap *qjs.Capability) error {
		var err error
		saved, err = persistent.Save(cap, v)
		return err
	}); err != nil {
		t.Fatal(err)
	}

	// a is now dropped in favor of a second realm owned by the same
	// engine - the closure must still be callable once restored there.
	b, err := e.NewRealm()
	if err != nil {
		t.Fatal(err)
	}

	var result value.Value
	if err := b.With(func(cap *qjs.Capability) error {
		restored, err := persistent.Restore(cap, saved)
		if err != nil {
			return err
		}
		fn, ok := goja.AssertFunction(restored.Raw())
		if !ok {
			t.Fatal("restored value is not callable")
		}
		out, err := fn(goja.Undefined(), cap.Runtime().ToValue("world"))
		if err != nil {
			return err
		}
		result = value.Of(cap.Runtime(), out)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	got, err := value.FromJS[string](result)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello, world" {
		t.Fatalf("restored closure result = %q, want %q", got, "hello, world")
	}
}

func TestCloseIsIdempotentAndBlocksNewRealm(t *testing.T) {
	e, err := engine.New()
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
	if _, err := e.NewRealm(); err == nil {
		t.Fatal("expected NewRealm to fail after Close")
	}
}
