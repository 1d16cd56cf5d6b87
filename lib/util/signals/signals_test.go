//go:build !windows

package signals

import (
	"context"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) {
	t.Helper()
	mu.Lock()
	reloaders.handlers = nil
	interrupters.handlers = nil
	mu.Unlock()
}

func TestRegister_NilIgnored(t *testing.T) {
	reset(t)
	assert.Equal(t, HandlerID(-1), RegisterReloadHandler(nil))
	assert.Equal(t, HandlerID(-1), RegisterInterruptHandler(nil))
	assert.Empty(t, reloaders.handlers)
}

func TestDeregister(t *testing.T) {
	reset(t)
	var calls atomic.Int32
	keep := RegisterInterruptHandler(func() { calls.Add(1) })
	drop := RegisterInterruptHandler(func() { calls.Add(10) })
	assert.NotEqual(t, keep, drop)

	DeregisterInterruptHandler(drop)
	interrupters.run()
	assert.Equal(t, int32(1), calls.Load())
}

func TestDeregisterReload(t *testing.T) {
	reset(t)
	var calls atomic.Int32
	id := RegisterReloadHandler(func() { calls.Add(1) })
	reloaders.run()
	DeregisterReloadHandler(id)
	reloaders.run()
	assert.Equal(t, int32(1), calls.Load())

	DeregisterReloadHandler(HandlerID(12345))
	assert.Empty(t, reloaders.handlers)
}

func TestRun_PanicDoesNotStopOthers(t *testing.T) {
	reset(t)
	var order []int
	RegisterReloadHandler(func() { order = append(order, 1) })
	RegisterReloadHandler(func() { panic("boom") })
	RegisterReloadHandler(func() { order = append(order, 3) })

	reloaders.run()
	assert.Equal(t, []int{1, 3}, order)
}

func TestHandle_ReloadThenInterrupt(t *testing.T) {
	reset(t)
	var reloads, interrupts atomic.Int32
	RegisterReloadHandler(func() { reloads.Add(1) })
	RegisterInterruptHandler(func() { interrupts.Add(1) })

	ch := make(chan os.Signal, 2)
	ch <- syscall.SIGHUP
	ch <- syscall.SIGTERM

	done := make(chan struct{})
	go func() {
		handle(context.Background(), ch)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handle did not return after interrupt")
	}
	assert.Equal(t, int32(1), reloads.Load())
	assert.Equal(t, int32(1), interrupts.Load())
}

func TestHandle_ContextCancel(t *testing.T) {
	reset(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Handle(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "Handle did not return after cancel")
	}
}
