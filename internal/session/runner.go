package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Dicklesworthstone/ccdash/internal/hookevent"
	"github.com/Dicklesworthstone/ccdash/internal/pipe"
)

// Runner drives the consume loop: transport reader, normalizer, and
// lifecycle manager wired end to end on a single goroutine.
type Runner struct {
	reader  *pipe.Reader
	manager *Manager
	log     *slog.Logger

	// probe is how often the runner re-checks for the transport while
	// disconnected.
	probe time.Duration
}

// NewRunner wires a reader and manager into a consume loop. A nil logger
// uses slog.Default; a zero probe interval uses the pipe default.
func NewRunner(reader *pipe.Reader, manager *Manager, log *slog.Logger, probe time.Duration) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{reader: reader, manager: manager, log: log, probe: probe}
}

// Run consumes events until ctx is cancelled or the reader is closed.
// Malformed records are logged and skipped; a permanently absent transport
// moves the session to Disconnected and the runner waits for the transport
// to reappear before resuming. No error on the event path terminates the
// loop.
func (r *Runner) Run(ctx context.Context) error {
	for {
		line, err := r.reader.ReadNext(ctx)
		switch {
		case err == nil:
			ev, nerr := hookevent.NormalizeLine(line)
			if nerr != nil {
				r.log.Debug("dropping malformed record", "err", nerr)
				continue
			}
			r.manager.Handle(ev)

		case errors.Is(err, pipe.ErrSessionEnded):
			r.manager.OnTransportLost()
			if werr := r.reader.WaitForTransport(ctx, r.probe); werr != nil {
				return werr
			}
			r.reader.Reopen()
			r.manager.OnTransportAvailable()

		case errors.Is(err, pipe.ErrClosed):
			return nil

		default:
			// Context cancellation or another caller-driven stop.
			return err
		}
	}
}
