// Package engine implements Engine, the top-level handle that owns a
// registry of Realms sharing one class-id space, one async task queue and
// one interrupt/GC policy - the concrete shape of spec.md's Engine/Realm
// split once "one engine, several realms" is mapped onto one
// *goja.Runtime per Realm (see DESIGN.md for the Open Question this
// resolves).
package engine

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"

	"github.com/gojsembed/qjsgo/asynccore"
	"github.com/gojsembed/qjsgo/jserr"
	"github.com/gojsembed/qjsgo/module"
	"github.com/gojsembed/qjsgo/persistent"
	"github.com/gojsembed/qjsgo/realm"
)

// EngineID re-exports persistent.EngineID; every Realm and Capability an
// Engine produces carries this id.
type EngineID = persistent.EngineID

var nextEngineID uint64

func allocateEngineID() EngineID {
	return EngineID(atomic.AddUint64(&nextEngineID, 1))
}

// InterruptFunc is polled periodically; returning true interrupts every
// realm currently executing a script. Matches the external InterruptFunc
// hook from spec.md §6.
type InterruptFunc func() bool

// MemoryUsage reports process-level Go heap statistics. goja keeps JS
// values on the Go heap rather than a separate accounted arena, so unlike
// a byte-exact embedder API there is no per-runtime JS heap size to
// report; this is a deliberate, documented approximation (see DESIGN.md)
// rather than a silent stand-in for a real per-Engine counter.
type MemoryUsage struct {
	HeapAlloc uint64
	HeapSys   uint64
	NumGC     uint32
	LastGC    time.Time
}

// Engine owns a registry of Realms, a shared async task queue, and the
// interrupt/GC/module-loading policy applied to every Realm it creates.
// Every operation that touches a wrapped *goja.Runtime acquires mu - the
// teacher ships only this kind of single always-parallel build, never a
// non-reentrant single-thread variant.
type Engine struct {
	mu     sync.Mutex
	id     EngineID
	logger *logiface.Logger[*izerolog.Event]
	queue  *asynccore.Queue

	memoryLimit  int64
	maxStackSize int64
	gcThreshold  int64
	lastGCAlloc  uint64
	lastGC       time.Time

	interruptFn InterruptFunc
	loader      module.ModuleLoader

	realms []*realm.Realm

	closed       bool
	interruptHup chan struct{}
	interruptWG  sync.WaitGroup
}

// New constructs an Engine. The returned Engine's background interrupt
// checkpoint goroutine (started only once SetInterruptHandler installs a
// handler) is stopped by Close.
func New(opts ...Option) (*Engine, error) {
	cfg, err := resolveEngineOptions(opts)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		id:           allocateEngineID(),
		logger:       cfg.logger,
		queue:        asynccore.NewQueue(),
		memoryLimit:  cfg.memoryLimit,
		maxStackSize: cfg.maxStackSize,
		gcThreshold:  cfg.gcThreshold,
		loader:       cfg.loader,
		interruptHup: make(chan struct{}),
	}

	e.logger.Info().Uint64("engine_id", uint64(e.id)).Log("engine created")
	return e, nil
}

func (e *Engine) ID() EngineID { return e.id }

// Queue returns the engine-owned async task queue, wired as both
// function.Spawner and function.Scheduler for AsyncFunc callers.
func (e *Engine) Queue() *asynccore.Queue { return e.queue }

// SetMemoryLimit caps the Go heap at bytes before an automatic RunGC is
// triggered; applied lazily on the next GC-threshold checkpoint rather
// than enforced by goja itself (see MemoryUsage's doc comment).
func (e *Engine) SetMemoryLimit(bytes int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.memoryLimit = bytes
}

// SetMaxStackSize caps call-stack depth for every Realm subsequently
// created by NewRealm, and for every Realm already created, via goja's
// own SetMaxCallStackSize.
func (e *Engine) SetMaxStackSize(bytes int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxStackSize = bytes
	for _, r := range e.realms {
		r.Runtime().SetMaxCallStackSize(int(bytes))
	}
}

// SetGCThreshold sets the Go heap allocation delta that triggers an
// automatic RunGC from the next checkpoint (an interrupt check or an
// ExecutePendingJob call).
func (e *Engine) SetGCThreshold(bytes int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gcThreshold = bytes
}

// RunGC forces a Go garbage collection pass. goja objects are already
// Go-GC-collected (class finalizers ride runtime.AddCleanup rather than
// a separate JS-heap sweep), so "collect the JS heap" and "collect the Go
// heap" are the same operation here.
func (e *Engine) RunGC() {
	runtime.GC()
	e.recordGC()
	e.logger.Debug().Uint64("engine_id", uint64(e.id)).Log("gc run")
}

func (e *Engine) recordGC() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	e.mu.Lock()
	e.lastGCAlloc = stats.HeapAlloc
	e.lastGC = time.Now()
	e.mu.Unlock()
}

// MemoryUsage reports the current approximate memory usage; see the
// MemoryUsage type's doc comment for the approximation this makes.
func (e *Engine) MemoryUsage() MemoryUsage {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	e.mu.Lock()
	lastGC := e.lastGC
	e.mu.Unlock()
	return MemoryUsage{
		HeapAlloc: stats.HeapAlloc,
		HeapSys:   stats.HeapSys,
		NumGC:     stats.NumGC,
		LastGC:    lastGC,
	}
}

// checkGCThreshold runs RunGC if HeapAlloc has grown past gcThreshold
// since the last recorded GC, or past memoryLimit; called from
// checkpoints, not continuously.
func (e *Engine) checkGCThreshold() {
	e.mu.Lock()
	threshold := e.gcThreshold
	limit := e.memoryLimit
	baseline := e.lastGCAlloc
	e.mu.Unlock()
	if threshold <= 0 && limit <= 0 {
		return
	}
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	if threshold > 0 && stats.HeapAlloc > baseline+uint64(threshold) {
		e.RunGC()
		return
	}
	if limit > 0 && stats.HeapAlloc > uint64(limit) {
		e.RunGC()
	}
}

// SetInterruptHandler installs fn, polled from a dedicated checkpoint
// goroutine every 20ms; a true return interrupts every Realm's Runtime
// currently executing a script, via goja's own Interrupt/ClearInterrupt
// pair (Runtime.Interrupt is documented safe to call from a different
// goroutine than the one running the script - the only concurrent access
// to *goja.Runtime this library relies on). Passing nil stops polling.
func (e *Engine) SetInterruptHandler(fn InterruptFunc) {
	e.mu.Lock()
	wasRunning := e.interruptFn != nil
	e.interruptFn = fn
	e.mu.Unlock()

	if fn != nil && !wasRunning {
		e.interruptWG.Add(1)
		go e.interruptLoop()
	}
}

func (e *Engine) interruptLoop() {
	defer e.interruptWG.Done()
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-e.interruptHup:
			return
		case <-ticker.C:
			e.mu.Lock()
			fn := e.interruptFn
			e.mu.Unlock()
			if fn == nil {
				return
			}
			if fn() {
				e.interrupt()
			}
			e.checkGCThreshold()
		}
	}
}

func (e *Engine) interrupt() {
	e.mu.Lock()
	realms := append([]*realm.Realm(nil), e.realms...)
	e.mu.Unlock()

	e.logger.Warning().Int("realms", len(realms)).Log("interrupt handler requested interruption")

	for _, r := range realms {
		r.Runtime().Interrupt("interrupted by host policy")
	}
}

// SetModuleLoader installs the loader used to resolve and load module
// source for subsequently created Realms' imports.
func (e *Engine) SetModuleLoader(l module.ModuleLoader) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loader = l
}

// HasPendingJobs reports whether the engine's task queue has live,
// unresolved tasks - promises awaiting a microtask continuation, spawned
// goroutines not yet joined, scheduled callbacks not yet run.
func (e *Engine) HasPendingJobs() bool {
	return e.queue.Live() > 0
}

// ExecutePendingJob advances the task queue by one poll step, running
// every currently-ready task once. It reports whether any task actually
// made progress, mirroring asynccore.Queue.Poll's Empty/Pending/Progress
// contract collapsed to a boolean for this entry point.
func (e *Engine) ExecutePendingJob() (bool, error) {
	status := e.queue.Poll(nil)
	e.checkGCThreshold()
	return status == asynccore.Progress, nil
}

// NewRealm creates a Realm owned by this engine: a fresh *goja.Runtime
// configured with the engine's current stack-size policy, registered so
// SetMaxStackSize and the interrupt checkpoint reach it too.
func (e *Engine) NewRealm(opts ...RealmOption) (*realm.Realm, error) {
	cfg, err := resolveRealmOptions(opts)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, jserr.Borrow("engine is closed")
	}
	maxStack := e.maxStackSize
	loader := e.loader
	e.mu.Unlock()

	rt := goja.New()
	if maxStack > 0 {
		rt.SetMaxCallStackSize(int(maxStack))
	}
	if loader != nil {
		module.NewRegistry(loader).Enable(rt)
	}

	r := realm.New(rt, e.id)
	for name, val := range cfg.globals {
		if err := r.SetGlobal(name, val); err != nil {
			return nil, err
		}
	}

	e.mu.Lock()
	e.realms = append(e.realms, r)
	e.mu.Unlock()

	e.logger.Debug().Uint64("engine_id", uint64(e.id)).Log("realm created")
	return r, nil
}

// Close stops the interrupt checkpoint goroutine (if running) and marks
// the engine unusable for further NewRealm calls. Existing Realms remain
// valid; Close only releases engine-owned background resources.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	running := e.interruptFn != nil
	e.mu.Unlock()

	if running {
		close(e.interruptHup)
		e.interruptWG.Wait()
	}

	e.logger.Info().Uint64("engine_id", uint64(e.id)).Log("engine closed")
	return nil
}
