package cliapp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

type fakeLifecycle struct {
	startErr error
	stopErr  error

	closeApp context.CancelCauseFunc
	started  bool
	stopped  bool
}

func (f *fakeLifecycle) Start(ctx context.Context) error {
	f.started = true
	if f.startErr != nil {
		return f.startErr
	}
	// the service decides it is done right away
	f.closeApp(errors.New("self-close"))
	return nil
}

func (f *fakeLifecycle) Stop(ctx context.Context) error {
	f.stopped = true
	return f.stopErr
}

func (f *fakeLifecycle) Stopped() bool {
	return f.stopped
}

func runApp(t *testing.T, fn LifecycleAction) error {
	app := cli.NewApp()
	app.Name = "test-app"
	app.Action = LifecycleCmd(fn)
	return app.RunContext(context.Background(), []string{"test-app"})
}

func TestLifecycleCmd(t *testing.T) {
	t.Run("SelfClose", func(t *testing.T) {
		f := &fakeLifecycle{}
		err := runApp(t, func(ctx *cli.Context, closeApp context.CancelCauseFunc) (Lifecycle, error) {
			f.closeApp = closeApp
			return f, nil
		})
		require.NoError(t, err)
		require.True(t, f.started)
		require.True(t, f.stopped)
	})

	t.Run("SetupError", func(t *testing.T) {
		err := runApp(t, func(ctx *cli.Context, closeApp context.CancelCauseFunc) (Lifecycle, error) {
			return nil, errors.New("boom")
		})
		require.ErrorContains(t, err, "failed to setup: boom")
	})

	t.Run("StartError", func(t *testing.T) {
		f := &fakeLifecycle{startErr: errors.New("no gateway")}
		err := runApp(t, func(ctx *cli.Context, closeApp context.CancelCauseFunc) (Lifecycle, error) {
			f.closeApp = closeApp
			return f, nil
		})
		require.ErrorContains(t, err, "failed to start: no gateway")
		require.True(t, f.stopped, "must clean up after failed start")
	})

	t.Run("StopError", func(t *testing.T) {
		f := &fakeLifecycle{stopErr: errors.New("stuck")}
		err := runApp(t, func(ctx *cli.Context, closeApp context.CancelCauseFunc) (Lifecycle, error) {
			f.closeApp = closeApp
			return f, nil
		})
		require.ErrorContains(t, err, "failed to stop: stuck")
	})
}

func TestProtectFlags(t *testing.T) {
	foo := &cli.StringFlag{Name: "foo"}
	gen := &cli.GenericFlag{Name: "gen", Value: &testGeneric{v: "a"}}
	out := ProtectFlags([]cli.Flag{foo, gen})
	require.Len(t, out, 2)
	require.Same(t, foo, out[0])
	require.NotSame(t, gen, out[1])
	require.NoError(t, out[1].(*cli.GenericFlag).Value.Set("b"))
	require.Equal(t, "a", gen.Value.String(), "original default must not change")

	require.Panics(t, func() {
		ProtectFlags([]cli.Flag{&cli.GenericFlag{Name: "bad", Value: &plainGeneric{}}})
	})
}

func TestFlagNameList(t *testing.T) {
	require.Equal(t, "--a, --b", FlagNameList(&cli.StringFlag{Name: "a"}, &cli.BoolFlag{Name: "b"}))
}

type testGeneric struct{ v string }

func (g *testGeneric) Set(v string) error { g.v = v; return nil }
func (g *testGeneric) String() string     { return g.v }
func (g *testGeneric) Clone() any         { cpy := *g; return &cpy }

type plainGeneric struct{}

func (g *plainGeneric) Set(string) error { return nil }
func (g *plainGeneric) String() string   { return "" }
