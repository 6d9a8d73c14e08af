// Package pipe implements the transport reader for the hook event stream.
//
// The transport is an append-only named pipe written by the hook producer.
// The reader tails it as a restartable sequence of newline-delimited
// records, owning all reconnect and backoff behavior. It never writes to
// the transport.
package pipe

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

var (
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("pipe: reader is closed")

	// ErrSessionEnded signals that the transport was confirmed permanently
	// absent. The reader stops retrying until Reopen is called for a new
	// session.
	ErrSessionEnded = errors.New("pipe: transport gone, session ended")
)

const (
	// DefaultBackoffBase is the initial reconnect delay.
	DefaultBackoffBase = 100 * time.Millisecond

	// DefaultBackoffCap bounds the reconnect delay.
	DefaultBackoffCap = 30 * time.Second

	// DefaultProbeInterval is how often WaitForTransport re-checks
	// existence while disconnected.
	DefaultProbeInterval = time.Second
)

// Reader tails the event transport. All methods are safe for use from a
// single consumer goroutine plus concurrent Close.
type Reader struct {
	path string
	base time.Duration
	cap  time.Duration
	log  *slog.Logger

	// Injection points for tests.
	open   func(string) (io.ReadCloser, error)
	exists func(string) bool
	sleep  func(context.Context, time.Duration) error

	mu       sync.Mutex
	rc       io.ReadCloser
	br       *bufio.Reader
	partial  []byte
	attempts int
	ended    bool
	closed   bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithBackoff overrides the reconnect backoff base and cap.
func WithBackoff(base, cap time.Duration) Option {
	return func(r *Reader) {
		if base > 0 {
			r.base = base
		}
		if cap > 0 {
			r.cap = cap
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

// WithOpenFunc overrides how the transport is opened (tests).
func WithOpenFunc(open func(string) (io.ReadCloser, error)) Option {
	return func(r *Reader) { r.open = open }
}

// WithExistsFunc overrides the transport existence check (tests).
func WithExistsFunc(exists func(string) bool) Option {
	return func(r *Reader) { r.exists = exists }
}

// WithSleepFunc overrides the backoff wait (tests inject a fake clock).
func WithSleepFunc(sleep func(context.Context, time.Duration) error) Option {
	return func(r *Reader) { r.sleep = sleep }
}

// Open creates a reader for the transport at path. The transport is opened
// lazily on the first ReadNext, so a transport absent at startup is not an
// error here.
func Open(path string, opts ...Option) *Reader {
	r := &Reader{
		path:   path,
		base:   DefaultBackoffBase,
		cap:    DefaultBackoffCap,
		log:    slog.Default(),
		open:   defaultOpen,
		exists: defaultExists,
		sleep:  sleepCtx,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func defaultOpen(path string) (io.ReadCloser, error) {
	// Opening a FIFO read-only blocks until the producer opens its end,
	// which is the suspend-until-available behavior we want.
	return os.OpenFile(path, os.O_RDONLY, 0)
}

func defaultExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NextDelay returns the reconnect delay for the current attempt count:
// min(base * 2^attempts, cap).
func (r *Reader) NextDelay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return backoffDelay(r.base, r.cap, r.attempts)
}

// Attempts returns the current reconnect attempt count. It resets to zero
// on any successful reconnect.
func (r *Reader) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

// Path returns the transport path.
func (r *Reader) Path() string { return r.path }

func backoffDelay(base, cap time.Duration, attempts int) time.Duration {
	d := base
	for i := 0; i < attempts; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	if d > cap {
		return cap
	}
	return d
}

// ReadNext returns the next newline-delimited record from the transport.
// It suspends until a record is available, reconnecting with exponential
// backoff on transient failures. It returns ErrSessionEnded once the
// transport is confirmed permanently absent, and ctx.Err() if the caller
// cancels an in-flight reconnect wait.
func (r *Reader) ReadNext(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return nil, ErrClosed
		}
		if r.ended {
			r.mu.Unlock()
			return nil, ErrSessionEnded
		}
		br := r.br
		r.mu.Unlock()

		if br == nil {
			if err := r.connect(ctx); err != nil {
				return nil, err
			}
			continue
		}

		line, err := br.ReadBytes('\n')
		if len(line) > 0 && err == nil {
			record := r.takeRecord(line)
			if record == nil {
				continue // blank line
			}
			return record, nil
		}
		if err != nil {
			// Writer side closed or a read failure: keep any partial
			// record and go through the reconnect path. The stream
			// resumes where it left off after reopen.
			if len(line) > 0 {
				r.mu.Lock()
				r.partial = append(r.partial, line...)
				r.mu.Unlock()
			}
			r.detach()
			if !errors.Is(err, io.EOF) {
				r.log.Warn("transport read error", "path", r.path, "err", err)
			}
			if err := r.reconnectWait(ctx); err != nil {
				return nil, err
			}
		}
	}
}

// takeRecord joins a carried-over partial with the completed line and
// strips the trailing newline. Returns nil for blank records.
func (r *Reader) takeRecord(line []byte) []byte {
	r.mu.Lock()
	record := append(r.partial, line...)
	r.partial = nil
	r.mu.Unlock()

	record = bytes.TrimRight(record, "\r\n")
	if len(bytes.TrimSpace(record)) == 0 {
		return nil
	}
	return record
}

// connect attempts to open the transport, entering the backoff path when
// it cannot.
func (r *Reader) connect(ctx context.Context) error {
	if !r.exists(r.path) {
		return r.reconnectWait(ctx)
	}

	rc, err := r.open(r.path)
	if err != nil {
		r.log.Warn("transport open failed", "path", r.path, "err", err)
		return r.reconnectWait(ctx)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		rc.Close()
		return ErrClosed
	}
	r.rc = rc
	r.br = bufio.NewReader(rc)
	if r.attempts > 0 {
		r.log.Info("transport reconnected", "path", r.path, "attempts", r.attempts)
	}
	r.attempts = 0
	r.mu.Unlock()
	return nil
}

// reconnectWait performs one backoff cycle: wait, then re-check existence.
// A transport that is absent after the wait is confirmed gone and the
// reader stops retrying.
func (r *Reader) reconnectWait(ctx context.Context) error {
	r.mu.Lock()
	delay := backoffDelay(r.base, r.cap, r.attempts)
	attempt := r.attempts
	r.attempts++
	r.mu.Unlock()

	r.log.Debug("transport reconnect", "path", r.path, "attempt", attempt, "delay", delay)
	if err := r.sleep(ctx, delay); err != nil {
		return err
	}

	if !r.exists(r.path) {
		r.mu.Lock()
		r.ended = true
		r.mu.Unlock()
		r.log.Info("transport gone, ending session", "path", r.path)
		return ErrSessionEnded
	}
	return nil
}

// detach drops the current handle without marking the reader closed.
func (r *Reader) detach() {
	r.mu.Lock()
	rc := r.rc
	r.rc = nil
	r.br = nil
	r.mu.Unlock()
	if rc != nil {
		rc.Close()
	}
}

// Reopen clears the session-ended state so the reader will retry the
// transport again, typically after the lifecycle manager observes a new
// transport for a fresh session.
func (r *Reader) Reopen() {
	r.mu.Lock()
	r.ended = false
	r.attempts = 0
	r.partial = nil
	r.mu.Unlock()
}

// WaitForTransport blocks until the transport exists again, probing at the
// given interval (DefaultProbeInterval when zero). It does not reopen the
// reader; call Reopen before the next ReadNext.
func (r *Reader) WaitForTransport(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	for {
		if r.exists(r.path) {
			return nil
		}
		if err := r.sleep(ctx, interval); err != nil {
			return err
		}
	}
}

// Close terminates the reader. Any blocked ReadNext returns once its
// current wait finishes; in-flight reconnect waits observe the caller's
// context for prompt shutdown.
func (r *Reader) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	rc := r.rc
	r.rc = nil
	r.br = nil
	r.mu.Unlock()

	if rc != nil {
		return rc.Close()
	}
	return nil
}
