package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pcdshub/happi-to-confluence/internal/logging"
	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger from the config level.
// --debug wins over the configured level.
func createLogger(w io.Writer, level string, debug bool) *slog.Logger {
	if debug {
		return logging.NewWithWriter(w, slog.LevelDebug)
	}
	return logging.NewWithWriter(w, logging.ParseLevel(level))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("Enter Node", "identifier", e.Identifier, "template", e.Template)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			if e.Result != nil && e.Result.Err != nil {
				logger.Debug("Leave Node (Error)", "identifier", e.Identifier, "template", e.Template, "outcome", e.Result.Outcome, "err", e.Result.Err)
				return
			}
			logger.Debug("Leave Node", "identifier", e.Identifier, "template", e.Template, "duration", e.Duration)
		},
	}
}

// combineHooks calls every non-nil hook in order.
func combineHooks(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var enter, leave []func(context.Context, *domain.NodeEvent)
	for _, h := range all {
		if h.OnNodeEnter != nil {
			enter = append(enter, h.OnNodeEnter)
		}
		if h.OnNodeLeave != nil {
			leave = append(leave, h.OnNodeLeave)
		}
	}
	return domain.LifecycleHooks{
		OnNodeEnter: fanOut(enter),
		OnNodeLeave: fanOut(leave),
	}
}

func fanOut(fns []func(context.Context, *domain.NodeEvent)) func(context.Context, *domain.NodeEvent) {
	if len(fns) == 0 {
		return nil
	}
	return func(ctx context.Context, e *domain.NodeEvent) {
		for _, fn := range fns {
			fn(ctx, e)
		}
	}
}
