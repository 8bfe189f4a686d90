// Package hostcap declares the host loading capabilities probed by the
// strategy dispatcher.
//
// Capability absence is modeled explicitly: a nil capability, or a
// capability that answers ErrCapabilityAbsent, marks the mechanism as
// unavailable in the current host. No error-subtype sniffing is involved
// beyond that one sentinel.
package hostcap

import (
	"context"
	"errors"

	"github.com/zclconf/go-cty/cty"
)

// ErrCapabilityAbsent marks a native loading mechanism as unavailable in
// the current host. It is only meaningful while the dispatcher probes; once
// a strategy is pinned it propagates like any other failure.
var ErrCapabilityAbsent = errors.New("host loading capability absent")

// Future is a settled-once handle on an asynchronous load.
type Future interface {
	// Await blocks until the load settles and returns its outcome.
	Await(ctx context.Context) (cty.Value, error)
}

// AsyncLoader starts module loads that settle asynchronously.
type AsyncLoader interface {
	BeginLoad(ctx context.Context, id string) Future
}

// SyncLoader loads modules by blocking the caller.
type SyncLoader interface {
	LoadSync(ctx context.Context, id string) (cty.Value, error)
}

// Loader is the module-loading contract shared across this runtime.
type Loader interface {
	LoadModule(ctx context.Context, id string) (cty.Value, error)
}

// goFuture settles when its goroutine finishes.
type goFuture struct {
	done chan struct{}
	val  cty.Value
	err  error
}

func (f *goFuture) Await(ctx context.Context) (cty.Value, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		// The load itself keeps running; only this waiter gives up.
		return cty.NilVal, ctx.Err()
	}
}

// asyncAdapter exposes a Loader as an AsyncLoader.
type asyncAdapter struct {
	loader Loader
}

func (a *asyncAdapter) BeginLoad(ctx context.Context, id string) Future {
	f := &goFuture{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = a.loader.LoadModule(context.WithoutCancel(ctx), id)
	}()
	return f
}

// AsyncFrom adapts a Loader into the native asynchronous capability.
func AsyncFrom(loader Loader) AsyncLoader {
	return &asyncAdapter{loader: loader}
}

// syncAdapter exposes a Loader as a SyncLoader.
type syncAdapter struct {
	loader Loader
}

func (a *syncAdapter) LoadSync(ctx context.Context, id string) (cty.Value, error) {
	return a.loader.LoadModule(ctx, id)
}

// SyncFrom adapts a Loader into the native synchronous capability.
func SyncFrom(loader Loader) SyncLoader {
	return &syncAdapter{loader: loader}
}
