package engine

import (
	"os"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// engineOptions holds configuration gathered from Option before an Engine
// is constructed.
type engineOptions struct {
	memoryLimit  int64
	maxStackSize int64
	gcThreshold  int64
	logger       *logiface.Logger[*izerolog.Event]
	loader       ModuleLoader
}

// Option configures an Engine at construction time.
type Option interface {
	applyEngine(*engineOptions) error
}

type engineOptionFunc func(*engineOptions) error

func (f engineOptionFunc) applyEngine(opts *engineOptions) error { return f(opts) }

// WithMemoryLimit caps the runtime's heap at bytes, enforced the same way
// SetMemoryLimit does when called after construction.
func WithMemoryLimit(bytes int64) Option {
	return engineOptionFunc(func(opts *engineOptions) error {
		opts.memoryLimit = bytes
		return nil
	})
}

// WithMaxStackSize caps call-stack depth. The value is handed to goja's
// SetMaxCallStackSize, which counts call frames, not bytes.
func WithMaxStackSize(bytes int64) Option {
	return engineOptionFunc(func(opts *engineOptions) error {
		opts.maxStackSize = bytes
		return nil
	})
}

// WithGCThreshold sets the allocation delta that triggers an automatic
// RunGC from interrupt checkpoints.
func WithGCThreshold(bytes int64) Option {
	return engineOptionFunc(func(opts *engineOptions) error {
		opts.gcThreshold = bytes
		return nil
	})
}

// WithLogger installs a logger for Engine lifecycle events (realm
// creation, GC runs, interrupts, close). Defaults to a zerolog logger
// writing to stderr at info level.
func WithLogger(logger *logiface.Logger[*izerolog.Event]) Option {
	return engineOptionFunc(func(opts *engineOptions) error {
		opts.logger = logger
		return nil
	})
}

// WithModuleLoader installs the ModuleLoader used to resolve import
// specifiers, equivalent to calling Engine.SetModuleLoader after New.
func WithModuleLoader(l ModuleLoader) Option {
	return engineOptionFunc(func(opts *engineOptions) error {
		opts.loader = l
		return nil
	})
}

func resolveEngineOptions(opts []Option) (*engineOptions, error) {
	cfg := &engineOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyEngine(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.logger == nil {
		cfg.logger = logiface.New[*izerolog.Event](izerolog.WithZerolog(zerolog.New(os.Stderr)))
	}
	return cfg, nil
}

// realmOptions holds configuration gathered from RealmOption.
type realmOptions struct {
	globals map[string]any
}

// RealmOption configures a Realm at construction time via Engine.NewRealm.
type RealmOption interface {
	applyRealm(*realmOptions) error
}

type realmOptionFunc func(*realmOptions) error

func (f realmOptionFunc) applyRealm(opts *realmOptions) error { return f(opts) }

// WithGlobal pre-seeds a top-level global in the realm before it's
// returned from NewRealm.
func WithGlobal(name string, value any) RealmOption {
	return realmOptionFunc(func(opts *realmOptions) error {
		if opts.globals == nil {
			opts.globals = make(map[string]any)
		}
		opts.globals[name] = value
		return nil
	})
}

func resolveRealmOptions(opts []RealmOption) (*realmOptions, error) {
	cfg := &realmOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyRealm(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
