package diskkit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// ChangeToken represents a change notification token.
// It provides a mechanism to be notified when a change occurs.
//
// Consumers can either:
// 1. Poll HasChanged() periodically
// 2. Register a callback via RegisterChangeCallback()
//
// Check ActiveChangeCallbacks() to know which approach is more efficient
// for the underlying implementation.
type ChangeToken interface {
	// HasChanged returns true if a change has occurred.
	// Once true, it remains true (tokens are single-use).
	HasChanged() bool

	// ActiveChangeCallbacks indicates if the token proactively raises callbacks.
	// If false, consumers should poll HasChanged instead.
	ActiveChangeCallbacks() bool

	// RegisterChangeCallback registers a callback to be invoked when change occurs.
	// Returns a function to unregister the callback.
	RegisterChangeCallback(callback func()) (unregister func())
}

// ============================================================================
// Callback ChangeToken
// ============================================================================

// CallbackChangeToken is a ChangeToken that supports active callbacks.
// Used by drivers that have native change events (local, memory).
type CallbackChangeToken struct {
	mu        sync.RWMutex
	changed   atomic.Bool
	callbacks []func()
}

// NewCallbackChangeToken creates a new ChangeToken that supports active callbacks.
func NewCallbackChangeToken() *CallbackChangeToken {
	return &CallbackChangeToken{}
}

// HasChanged implements ChangeToken.
func (t *CallbackChangeToken) HasChanged() bool {
	return t.changed.Load()
}

// ActiveChangeCallbacks implements ChangeToken.
func (t *CallbackChangeToken) ActiveChangeCallbacks() bool {
	return true
}

// RegisterChangeCallback implements ChangeToken.
func (t *CallbackChangeToken) RegisterChangeCallback(callback func()) (unregister func()) {
	t.mu.Lock()
	t.callbacks = append(t.callbacks, callback)
	index := len(t.callbacks) - 1
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if index < len(t.callbacks) {
			// Nil out instead of removing to avoid index shifting
			t.callbacks[index] = nil
		}
	}
}

// SignalChange marks the token as changed and invokes all callbacks.
// This should be called by the driver when a change is detected.
func (t *CallbackChangeToken) SignalChange() {
	if t.changed.Swap(true) {
		return // Already changed
	}

	t.mu.RLock()
	callbacks := make([]func(), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.mu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb()
		}
	}
}

// ============================================================================
// Polling ChangeToken
// ============================================================================

// PollingConfig configures a polling change token.
type PollingConfig struct {
	// Interval between polls (default: 5 seconds)
	Interval time.Duration
	// CheckFunc returns true if a change is detected
	CheckFunc func() bool
}

// pollingChangeToken is a ChangeToken for backends without native events.
type pollingChangeToken struct {
	inner  *CallbackChangeToken
	cancel context.CancelFunc
}

// NewPollingChangeToken creates a ChangeToken that polls for changes.
// The check function is called at every interval until it reports a change
// or the context is cancelled. Cancel the context to stop the poll goroutine.
func NewPollingChangeToken(ctx context.Context, config PollingConfig) ChangeToken {
	if config.Interval == 0 {
		config.Interval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(ctx)
	t := &pollingChangeToken{
		inner:  NewCallbackChangeToken(),
		cancel: cancel,
	}

	go func() {
		ticker := time.NewTicker(config.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if config.CheckFunc() {
					t.inner.SignalChange()
					cancel()
					return
				}
			}
		}
	}()

	return t
}

func (t *pollingChangeToken) HasChanged() bool            { return t.inner.HasChanged() }
func (t *pollingChangeToken) ActiveChangeCallbacks() bool { return true }
func (t *pollingChangeToken) RegisterChangeCallback(callback func()) func() {
	return t.inner.RegisterChangeCallback(callback)
}

// ============================================================================
// Cancelled ChangeToken
// ============================================================================

// CancelledChangeToken is a no-op token for backends that cannot watch.
// It never signals a change.
type CancelledChangeToken struct{}

// HasChanged implements ChangeToken.
func (CancelledChangeToken) HasChanged() bool { return false }

// ActiveChangeCallbacks implements ChangeToken.
func (CancelledChangeToken) ActiveChangeCallbacks() bool { return false }

// RegisterChangeCallback implements ChangeToken.
func (CancelledChangeToken) RegisterChangeCallback(func()) func() {
	return func() {}
}

var (
	_ ChangeToken = (*CallbackChangeToken)(nil)
	_ ChangeToken = (*pollingChangeToken)(nil)
	_ ChangeToken = CancelledChangeToken{}
)
