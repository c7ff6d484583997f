package cliapp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/faucet-bot/op-service/ctxinterrupt"
)

type Lifecycle interface {
	// Start starts a service. A service only fully starts once. Subsequent starts may return an error.
	// A context is provided to end the service during setup.
	// The caller should call Stop to clean up after failing to start.
	Start(ctx context.Context) error
	// Stop stops a service gracefully.
	// The provided ctx can force an accelerated shutdown,
	// but the node still has to completely stop.
	Stop(ctx context.Context) error
	// Stopped determines if the service was already fully stopped.
	// This returns true after Stop completes, whether successful or not.
	Stopped() bool
}

// LifecycleAction instantiates a Lifecycle based on a CLI context.
// With the collection of the optional closeApp function,
// the service can request the application to shut down by itself.
type LifecycleAction func(ctx *cli.Context, closeApp context.CancelCauseFunc) (Lifecycle, error)

var interruptErr = errors.New("interrupt signal")

// LifecycleCmd turns a LifecycleAction into a CLI action,
// by instrumenting it with CLI context and signal based termination.
// The signals are caught with the ctxinterrupt package, which is attached to the app context.
// The app may continue to run post-processing until fully shutting down.
// The user can force an early shut-down during post-processing by sending a second interruption signal.
func LifecycleCmd(fn LifecycleAction) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		hostCtx := ctx.Context
		appCtx, appCancel := context.WithCancelCause(hostCtx)
		defer appCancel(nil)
		ctx.Context = appCtx

		go func() {
			_ = ctxinterrupt.Wait(appCtx)
			appCancel(interruptErr) // no-op if the app already closed itself
		}()

		appLifecycle, err := fn(ctx, appCancel)
		if err != nil {
			// join errors to include context cause (nil errors are dropped)
			return errors.Join(
				fmt.Errorf("failed to setup: %w", err),
				context.Cause(appCtx),
			)
		}

		if err := appLifecycle.Start(appCtx); err != nil {
			// join errors to include context cause (nil errors are dropped)
			return errors.Join(
				fmt.Errorf("failed to start: %w", err),
				context.Cause(appCtx),
				appLifecycle.Stop(context.Background()),
			)
		}

		// wait for app to be closed (through interrupt, or app requests to be stopped by closing the context)
		<-appCtx.Done()

		// Graceful stop context.
		// This allows the service to idle before shutdown, if halted. User may interrupt.
		stopCtx, stopCancel := context.WithTimeout(hostCtx, 30*time.Second)
		defer stopCancel()

		// Execute graceful stop.
		stopErr := appLifecycle.Stop(stopCtx)
		// note: Stop implementation may choose to suppress a context error,
		// if it handles it well (e.g. stop idling after a halt).
		if stopErr != nil {
			// join errors to include context cause (nil errors are dropped)
			return errors.Join(
				fmt.Errorf("failed to stop: %w", stopErr),
				context.Cause(stopCtx),
			)
		}
		fmt.Fprintln(os.Stderr, "app stopped")
		return nil
	}
}
