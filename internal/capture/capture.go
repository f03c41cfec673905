// Package capture adapts a queue of decoded QR strings into a scanner handle
// that delivers results strictly one at a time.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"qrattend/internal/queue"
)

// ErrUnavailable is returned when the source cannot be started.
var ErrUnavailable = errors.New("capture unavailable")

// Handle is a running capture. Stop and Destroy may be called any number of
// times in any order.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	destroyed bool
}

// Start consumes src and calls onResult for every scan event, never
// concurrently. onError receives events that are not scans. A result that
// is being handled when the handle stops runs to completion.
func Start(ctx context.Context, src queue.Queue, onResult func(ctx context.Context, payload string), onError func(error)) (*Handle, error) {
	ctx, cancel := context.WithCancel(ctx)
	msgs, err := src.Consume(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	h := &Handle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		for msg := range msgs {
			if msg.Type != queue.TypeScan {
				if onError != nil {
					onError(fmt.Errorf("unexpected event type %q", msg.Type))
				}
				continue
			}
			onResult(ctx, msg.Body)
		}
	}()
	return h, nil
}

// Done is closed once the handle has stopped delivering results.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Stop halts delivery and waits for the in-flight result, if any.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Destroy stops the handle and releases it.
func (h *Handle) Destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return
	}
	h.Stop()
	h.destroyed = true
}
