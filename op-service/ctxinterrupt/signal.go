// Package ctxinterrupt ties process interrupt signals to context cancellation.
package ctxinterrupt

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// DefaultInterruptSignals is a set of default interrupt signals.
var DefaultInterruptSignals = []os.Signal{
	os.Interrupt,
	os.Kill,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

type waiterKey struct{}

// WithSignalWaiterMain returns a context that is cancelled on the first interrupt signal,
// and that carries the signal channel so later callers can wait on the same interrupt.
// It is meant to be called once, from main.
func WithSignalWaiterMain(ctx context.Context) context.Context {
	ctx, _ = WithSignalWaiter(ctx)
	return ctx
}

// WithSignalWaiter is like WithSignalWaiterMain but also returns the stop function
// that releases the signal handler.
func WithSignalWaiter(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(ctx, DefaultInterruptSignals...)
	return context.WithValue(ctx, waiterKey{}, true), stop
}

// Wait blocks until an interrupt is received or the context is done.
// If no signal waiter is attached to ctx, a temporary one is installed.
func Wait(ctx context.Context) error {
	if ctx.Value(waiterKey{}) == nil {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, DefaultInterruptSignals...)
		defer stop()
	}
	<-ctx.Done()
	return context.Cause(ctx)
}
