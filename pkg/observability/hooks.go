// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about composite runs, batch execution,
// and kit store operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach avoids import cycles (hooks are registered by main, not by
// libraries), keeps the engine dependency-free from observability
// frameworks, and allows different backends.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCompositeHooks(&myCompositeHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Composite().OnCompositeStart(ctx, elementCount)
package observability

import (
	"context"
	"sync"
	"time"
)

// CompositeHooks receives events from single-image composite runs.
type CompositeHooks interface {
	// OnCompositeStart fires before the first element is drawn.
	OnCompositeStart(ctx context.Context, elementCount int)

	// OnElementSkipped fires when an overlay source fails to decode and
	// the element is skipped.
	OnElementSkipped(ctx context.Context, elementID, sourceURL string, err error)

	// OnCompositeComplete fires when a composite run finishes.
	OnCompositeComplete(ctx context.Context, elementCount int, duration time.Duration, err error)
}

// BatchHooks receives events from batch orchestration.
type BatchHooks interface {
	// OnGroupStart fires before a concurrency group begins.
	OnGroupStart(ctx context.Context, group, size int)

	// OnImageComplete fires when one image's compositing task settles.
	OnImageComplete(ctx context.Context, index int, err error)

	// OnBatchComplete fires when the whole batch has settled.
	OnBatchComplete(ctx context.Context, total, failed int, duration time.Duration)
}

// StoreHooks receives events from kit store operations.
type StoreHooks interface {
	// OnLoad fires after a kit load attempt.
	OnLoad(ctx context.Context, userID string, duration time.Duration, err error)

	// OnSave fires after a kit save attempt.
	OnSave(ctx context.Context, userID string, duration time.Duration, err error)
}

// No-op defaults.

type noopCompositeHooks struct{}

func (noopCompositeHooks) OnCompositeStart(context.Context, int)                       {}
func (noopCompositeHooks) OnElementSkipped(context.Context, string, string, error)     {}
func (noopCompositeHooks) OnCompositeComplete(context.Context, int, time.Duration, error) {
}

type noopBatchHooks struct{}

func (noopBatchHooks) OnGroupStart(context.Context, int, int)                {}
func (noopBatchHooks) OnImageComplete(context.Context, int, error)           {}
func (noopBatchHooks) OnBatchComplete(context.Context, int, int, time.Duration) {}

type noopStoreHooks struct{}

func (noopStoreHooks) OnLoad(context.Context, string, time.Duration, error) {}
func (noopStoreHooks) OnSave(context.Context, string, time.Duration, error) {}

var (
	mu             sync.RWMutex
	compositeHooks CompositeHooks = noopCompositeHooks{}
	batchHooks     BatchHooks     = noopBatchHooks{}
	storeHooks     StoreHooks     = noopStoreHooks{}
)

// SetCompositeHooks registers composite hooks. Pass nil to restore no-ops.
func SetCompositeHooks(h CompositeHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = noopCompositeHooks{}
	}
	compositeHooks = h
}

// SetBatchHooks registers batch hooks. Pass nil to restore no-ops.
func SetBatchHooks(h BatchHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = noopBatchHooks{}
	}
	batchHooks = h
}

// SetStoreHooks registers store hooks. Pass nil to restore no-ops.
func SetStoreHooks(h StoreHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = noopStoreHooks{}
	}
	storeHooks = h
}

// Composite returns the registered composite hooks.
func Composite() CompositeHooks {
	mu.RLock()
	defer mu.RUnlock()
	return compositeHooks
}

// Batch returns the registered batch hooks.
func Batch() BatchHooks {
	mu.RLock()
	defer mu.RUnlock()
	return batchHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	mu.RLock()
	defer mu.RUnlock()
	return storeHooks
}
