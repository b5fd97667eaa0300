package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels long-running imports and syncs on SIGINT or
// SIGTERM and prints a short notice.
type InterruptHandler struct {
	writer      io.Writer
	signals     chan os.Signal
	operation   string
	partial     bool
	mu          sync.Mutex
	interrupted bool
}

// NewInterruptHandler creates a new interrupt handler. operation names what
// is being interrupted ("Import", "Sync").
func NewInterruptHandler(writer io.Writer, operation string) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	if operation == "" {
		operation = "Operation"
	}
	return &InterruptHandler{
		writer:    writer,
		operation: operation,
		signals:   make(chan os.Signal, 1),
	}
}

// HandleInterrupts returns a context canceled on the first interrupt. When
// partial is true the notice mentions that completed batches were kept.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, partial bool) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	h.partial = partial

	signal.Notify(h.signals, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-h.signals:
			h.mu.Lock()
			if !h.interrupted {
				h.interrupted = true
				h.showInterruptMessage()
			}
			h.mu.Unlock()
			cancel()
		case <-done:
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			signal.Stop(h.signals)
			close(done)
			cancel()
		})
	}
	return ctx, stop
}

func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n\n" + FormatWarning(h.operation+" interrupted!")

	if h.partial {
		msg += "\n" + FormatInfo("Transactions saved before the interrupt were kept. Re-run to pick up the rest.")
	}

	msg += "\n" + FormatInfo("See you later! "+SpiceIcon) + "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
