// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about stack mutations, reconciliation passes, and exports.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStackHooks(&myStackHooks{})
//	    observability.SetRenderHooks(&myRenderHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Render().OnReconcileStart(kind, selector)
//	// ... reconcile ...
//	observability.Render().OnReconcileComplete(kind, selector, rendered, culled, duration)
package observability

import (
	"sync"
	"time"
)

// =============================================================================
// Stack Hooks
// =============================================================================

// StackHooks receives events from layer stack mutations.
type StackHooks interface {
	// OnSurfaceAppended records a surface entering the stack.
	// depth is the stack size after the append.
	OnSurfaceAppended(kind string, depth int)

	// OnSurfaceMoved records a surface changing stacking position.
	OnSurfaceMoved(kind string, from, to int)

	// OnSurfaceRemoved records a surface leaving the stack.
	// depth is the stack size after the removal.
	OnSurfaceRemoved(kind string, depth int)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from reconciliation and draw passes.
type RenderHooks interface {
	// OnReconcileStart records the beginning of a reconciliation pass.
	OnReconcileStart(kind, selector string)

	// OnReconcileComplete records the outcome of a reconciliation pass.
	// rendered counts elements that produced output, culled counts elements
	// skipped by the bounds check.
	OnReconcileComplete(kind, selector string, rendered, culled int, duration time.Duration)

	// OnDrawPass records a full canvas repaint.
	OnDrawPass(elements int, duration time.Duration)
}

// =============================================================================
// Export Hooks
// =============================================================================

// ExportHooks receives events from snapshot export operations.
type ExportHooks interface {
	// OnExportStart records the beginning of an export.
	OnExportStart(format string, surfaces int)

	// OnExportComplete records the outcome of an export.
	OnExportComplete(format string, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopStackHooks is a no-op implementation of StackHooks.
type NoopStackHooks struct{}

func (NoopStackHooks) OnSurfaceAppended(string, int)   {}
func (NoopStackHooks) OnSurfaceMoved(string, int, int) {}
func (NoopStackHooks) OnSurfaceRemoved(string, int)    {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnReconcileStart(string, string)                             {}
func (NoopRenderHooks) OnReconcileComplete(string, string, int, int, time.Duration) {}
func (NoopRenderHooks) OnDrawPass(int, time.Duration)                               {}

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExportStart(string, int)                          {}
func (NoopExportHooks) OnExportComplete(string, int, time.Duration, error) {}

// =============================================================================
// Composite Implementations
// =============================================================================

// CompositeStackHooks fans each call out to every member, in order.
type CompositeStackHooks []StackHooks

func (c CompositeStackHooks) OnSurfaceAppended(kind string, depth int) {
	for _, h := range c {
		h.OnSurfaceAppended(kind, depth)
	}
}

func (c CompositeStackHooks) OnSurfaceMoved(kind string, from, to int) {
	for _, h := range c {
		h.OnSurfaceMoved(kind, from, to)
	}
}

func (c CompositeStackHooks) OnSurfaceRemoved(kind string, depth int) {
	for _, h := range c {
		h.OnSurfaceRemoved(kind, depth)
	}
}

// CompositeRenderHooks fans each call out to every member, in order.
type CompositeRenderHooks []RenderHooks

func (c CompositeRenderHooks) OnReconcileStart(kind, selector string) {
	for _, h := range c {
		h.OnReconcileStart(kind, selector)
	}
}

func (c CompositeRenderHooks) OnReconcileComplete(kind, selector string, rendered, culled int, d time.Duration) {
	for _, h := range c {
		h.OnReconcileComplete(kind, selector, rendered, culled, d)
	}
}

func (c CompositeRenderHooks) OnDrawPass(elements int, d time.Duration) {
	for _, h := range c {
		h.OnDrawPass(elements, d)
	}
}

// CompositeExportHooks fans each call out to every member, in order.
type CompositeExportHooks []ExportHooks

func (c CompositeExportHooks) OnExportStart(format string, surfaces int) {
	for _, h := range c {
		h.OnExportStart(format, surfaces)
	}
}

func (c CompositeExportHooks) OnExportComplete(format string, size int, d time.Duration, err error) {
	for _, h := range c {
		h.OnExportComplete(format, size, d, err)
	}
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	stackHooks  StackHooks  = NoopStackHooks{}
	renderHooks RenderHooks = NoopRenderHooks{}
	exportHooks ExportHooks = NoopExportHooks{}
	hooksMu     sync.RWMutex
)

// SetStackHooks registers custom stack hooks.
// This should be called once at application startup before any stack operations.
func SetStackHooks(h StackHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		stackHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any render operations.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetExportHooks registers custom export hooks.
// This should be called once at application startup before any export operations.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// Stack returns the registered stack hooks.
func Stack() StackHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return stackHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	stackHooks = NoopStackHooks{}
	renderHooks = NoopRenderHooks{}
	exportHooks = NoopExportHooks{}
}
