package function_test

import (
	"sync"
	"testing"

	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/function"
)

// syncScheduler and goroutineSpawner give AsyncFunc real concurrency in
// tests while letting the test drain scheduled callbacks deterministically,
// the way an event loop's single-threaded dispatch would.
type syncScheduler struct {
	mu    sync.Mutex
	queue []func()
}

func (s *syncScheduler) Schedule(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

func (s *syncScheduler) Drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		fn()
	}
}

type goroutineSpawner struct {
	wg sync.WaitGroup
}

func (g *goroutineSpawner) Spawn(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

func (g *goroutineSpawner) Wait() { g.wg.Wait() }

func TestAsyncFuncResolves(t *testing.T) {
	rt := goja.New()
	cap := fakeCapability{rt: rt}
	sched := &syncScheduler{}
	spawner := &goroutineSpawner{}

	double := func(n function.Arg[int32]) (int32, error) {
		return n.Value * 2, nil
	}
	fn, err := function.AsyncFunc(cap, sched, spawner, double)
	if err != nil {
		t.Fatal(err)
	}
	_ = rt.Set("double", fn)
	_ = rt.Set("__done", false)
	_ = rt.Set("__result", goja.Undefined())

	_, err = rt.RunString(`double(21).then(v => { __result = v; __done = true; });`)
	if err != nil {
		t.Fatal(err)
	}

	spawner.Wait()
	sched.Drain()

	if _, err := rt.RunString(`if (!__done) throw new Error("promise never settled");`); err != nil {
		t.Fatal(err)
	}
	result, err := rt.RunString(`__result`)
	if err != nil {
		t.Fatal(err)
	}
	if result.ToInteger() != 42 {
		t.Fatalf("__result = %v, want 42", result)
	}
}
