package strategy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/dynmod/internal/ctxlog"
	"github.com/vk/dynmod/internal/hostcap"
)

// Strategy identifies a loading mechanism.
type Strategy int

const (
	// Auto means no strategy has been pinned yet; calls probe capabilities.
	Auto Strategy = iota
	// NativeAsync loads through the host's asynchronous loader.
	NativeAsync
	// NativeSync loads through the host's synchronous loader.
	NativeSync
	// Custom loads through the supplied custom loader.
	Custom
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	switch s {
	case Auto:
		return "auto"
	case NativeAsync:
		return "native-async"
	case NativeSync:
		return "native-sync"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ConfigurationError reports that the Custom strategy was selected without
// a custom loader being supplied. There is no fallback from it.
type ConfigurationError struct {
	Identifier string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("cannot load module %q: custom strategy selected but no custom loader supplied", e.Identifier)
}

// UnknownStrategyError indicates an invariant violation in the dispatcher's
// strategy state. It is unreachable in a correct implementation.
type UnknownStrategyError struct {
	Strategy Strategy
}

// Error implements the error interface.
func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown loading strategy %v", e.Strategy)
}

// Dispatcher routes module loads through one of the host's loading
// mechanisms, probing once and then staying pinned.
type Dispatcher struct {
	async    hostcap.AsyncLoader
	syncLoad hostcap.SyncLoader
	custom   hostcap.Loader

	mu       sync.Mutex
	strategy Strategy
}

// NewDispatcher creates a Dispatcher in the Auto state. Any capability may
// be nil, which marks it absent.
func NewDispatcher(async hostcap.AsyncLoader, syncLoader hostcap.SyncLoader, custom hostcap.Loader) *Dispatcher {
	return &Dispatcher{async: async, syncLoad: syncLoader, custom: custom}
}

// Strategy returns the currently pinned strategy, or Auto before pinning.
func (d *Dispatcher) Strategy() Strategy {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.strategy
}

// LoadModule loads id through the pinned strategy, probing first if none is
// pinned yet.
func (d *Dispatcher) LoadModule(ctx context.Context, id string) (cty.Value, error) {
	d.mu.Lock()
	pinned := d.strategy
	d.mu.Unlock()

	if pinned != Auto {
		return d.attempt(ctx, pinned, id)
	}
	return d.probe(ctx, id)
}

// probe walks the fallback chain while the dispatcher is still in Auto.
// A capability-absent answer moves on to the next mechanism; any other
// outcome, success or failure, pins the attempted strategy and is returned
// as-is.
func (d *Dispatcher) probe(ctx context.Context, id string) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	for _, s := range []Strategy{NativeAsync, NativeSync, Custom} {
		val, err := d.attempt(ctx, s, id)
		if err != nil && errors.Is(err, hostcap.ErrCapabilityAbsent) && s != Custom {
			logger.Debug("Loading capability absent, falling back.", "strategy", s.String())
			continue
		}

		d.pin(ctx, s)
		return val, err
	}

	// The chain above always pins at Custom.
	return cty.NilVal, &UnknownStrategyError{Strategy: Auto}
}

// attempt performs one load through the given mechanism.
func (d *Dispatcher) attempt(ctx context.Context, s Strategy, id string) (cty.Value, error) {
	switch s {
	case NativeAsync:
		if d.async == nil {
			return cty.NilVal, fmt.Errorf("native async loader: %w", hostcap.ErrCapabilityAbsent)
		}
		return d.async.BeginLoad(ctx, id).Await(ctx)
	case NativeSync:
		if d.syncLoad == nil {
			return cty.NilVal, fmt.Errorf("native sync loader: %w", hostcap.ErrCapabilityAbsent)
		}
		return d.syncLoad.LoadSync(ctx, id)
	case Custom:
		if d.custom == nil {
			return cty.NilVal, &ConfigurationError{Identifier: id}
		}
		return d.custom.LoadModule(ctx, id)
	default:
		return cty.NilVal, &UnknownStrategyError{Strategy: s}
	}
}

// pin transitions Auto to a concrete strategy, exactly once.
func (d *Dispatcher) pin(ctx context.Context, s Strategy) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.strategy == Auto {
		d.strategy = s
		ctxlog.FromContext(ctx).Debug("Loading strategy pinned.", "strategy", s.String())
	}
}
