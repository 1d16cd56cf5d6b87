// Package signals dispatches process signals to registered handlers:
// SIGHUP to reload handlers, SIGINT and SIGTERM to interrupt handlers.
package signals

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Handler is a function called when a signal is received.
type Handler func()

// HandlerID identifies a registration so it can be removed again.
type HandlerID int

type registeredHandler struct {
	id HandlerID
	fn Handler
}

// registry is an ordered handler list safe for concurrent use.
type registry struct {
	kind     string
	handlers []registeredHandler
}

var (
	mu           sync.RWMutex
	nextID       HandlerID
	reloaders    = &registry{kind: "reload"}
	interrupters = &registry{kind: "interrupt"}
)

func (r *registry) add(f Handler) HandlerID {
	if f == nil {
		return -1
	}
	mu.Lock()
	defer mu.Unlock()
	id := nextID
	nextID++
	r.handlers = append(r.handlers, registeredHandler{id: id, fn: f})
	return id
}

func (r *registry) remove(id HandlerID) {
	mu.Lock()
	defer mu.Unlock()
	for i, h := range r.handlers {
		if h.id == id {
			r.handlers = append(r.handlers[:i], r.handlers[i+1:]...)
			return
		}
	}
}

// run calls every handler in registration order. A panicking handler is
// logged and does not prevent the others from running.
func (r *registry) run() {
	mu.RLock()
	snapshot := make([]registeredHandler, len(r.handlers))
	copy(snapshot, r.handlers)
	mu.RUnlock()

	for _, h := range snapshot {
		func() {
			defer func() {
				if p := recover(); p != nil {
					log.WithField("kind", r.kind).WithField("panic", fmt.Sprint(p)).Error("signal handler panicked")
				}
			}()
			h.fn()
		}()
	}
}

// RegisterReloadHandler registers f to run on SIGHUP. Nil handlers are
// ignored and return -1.
func RegisterReloadHandler(f Handler) HandlerID {
	return reloaders.add(f)
}

// DeregisterReloadHandler removes the reload handler registered as id.
func DeregisterReloadHandler(id HandlerID) {
	reloaders.remove(id)
}

// RegisterInterruptHandler registers f to run on SIGINT or SIGTERM. Nil
// handlers are ignored and return -1.
func RegisterInterruptHandler(f Handler) HandlerID {
	return interrupters.add(f)
}

// DeregisterInterruptHandler removes the interrupt handler registered as id.
func DeregisterInterruptHandler(id HandlerID) {
	interrupters.remove(id)
}

// Handle dispatches signals until ctx is done. After the first interrupt
// has been dispatched Handle returns, so a second one terminates the
// process the default way.
func Handle(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, notified...)
	defer signal.Stop(ch)
	handle(ctx, ch)
}

func handle(ctx context.Context, ch <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			log.WithField("signal", sig.String()).Debug("received signal")
			if isReload(sig) {
				reloaders.run()
				continue
			}
			interrupters.run()
			return
		}
	}
}
