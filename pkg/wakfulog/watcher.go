package wakfulog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/wakfulog/wakfulog-go/internal/classify"
	"github.com/wakfulog/wakfulog-go/internal/logfinder"
	"github.com/wakfulog/wakfulog-go/internal/tailer"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/event"
)

// watcherErrBuffer is the error channel buffer. A small buffer keeps
// errors from being lost while the consumer is busy with events.
const watcherErrBuffer = 16

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Watcher follows the Wakfu chat log and emits classified events for
// one archetype.
type Watcher struct {
	cfg        config // immutable after creation
	logDir     string
	classifier *classify.Classifier
	log        *slog.Logger

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc
	doneCh   chan struct{}
	watching bool
}

// Watch creates a watcher from options and starts it. The channels
// close when ctx is cancelled. For synchronous shutdown via Close, use
// NewWatcher and Watcher.Watch directly.
func Watch(ctx context.Context, opts ...Option) (<-chan event.Event, <-chan error, error) {
	w, err := NewWatcher(opts...)
	if err != nil {
		return nil, nil, err
	}
	return w.Watch(ctx)
}

// NewWatcher creates a watcher from options. It validates the options
// and locates the log directory but starts no goroutines.
func NewWatcher(opts ...Option) (*Watcher, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	logDir, err := logfinder.FindLogDir(cfg.logDir)
	if err != nil {
		return nil, fmt.Errorf("finding log directory: %w", err)
	}

	log := cfg.logger
	if log == nil {
		log = discardLogger
	}

	arch, _ := cfg.ruleset.Archetype(cfg.archetype)
	classifier := classify.New(arch)
	classifier.IncludeRaw = cfg.includeRawLine

	return &Watcher{
		cfg:        *cfg,
		logDir:     logDir,
		classifier: classifier,
		log:        log,
	}, nil
}

// Watch starts the watch loop and returns the event and error channels.
// Both close on ctx cancellation or fatal error. Watch can be called
// once per Watcher.
func (w *Watcher) Watch(ctx context.Context) (<-chan event.Event, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, nil, ErrWatcherClosed
	}
	if w.watching {
		return nil, nil, ErrAlreadyWatching
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})

	eventCh := make(chan event.Event)
	errCh := make(chan error, watcherErrBuffer)

	go w.run(ctx, eventCh, errCh)
	return eventCh, errCh, nil
}

// Close stops the watcher and blocks until its goroutine has exited.
// Safe to call multiple times.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, eventCh chan<- event.Event, errCh chan<- error) {
	defer close(w.doneCh)
	defer close(eventCh)
	defer close(errCh)

	lineCh := make(chan string)
	go runLineSource(ctx, &w.cfg, w.logDir, w.log, lineCh, errCh)

	for line := range lineCh {
		w.processLine(ctx, line, eventCh)
	}
}

func (w *Watcher) processLine(ctx context.Context, line string, eventCh chan<- event.Event) {
	ev := w.classifier.Classify(line)
	if ev.Type == event.Unrecognized && !w.cfg.emitUnrecognized {
		return
	}
	if !w.cfg.eventFilter.Allows(string(ev.Type)) {
		return
	}
	select {
	case eventCh <- ev:
	case <-ctx.Done():
	}
}

// runLineSource finds the live chat log, replays configured history,
// then tails it, switching files on rotation. Lines go to lineCh, which
// closes when the source stops; errors are non-fatal unless no tailer
// can be started at all.
func runLineSource(ctx context.Context, cfg *config, logDir string, log *slog.Logger, lineCh chan<- string, errCh chan<- error) {
	defer close(lineCh)

	logFile, err := findLogFileWithWait(ctx, cfg, logDir, log, errCh)
	if err != nil {
		return
	}
	log.Debug("found chat log", "path", logFile)

	tcfg := tailer.DefaultConfig()
	tcfg.FromStart = cfg.replay.Mode == ReplayFromStart

	if cfg.replay.Mode == ReplayLastN && cfg.replay.LastN > 0 {
		log.Debug("replaying last lines", "n", cfg.replay.LastN, "path", logFile)
		replayed, err := readLastNLines(logFile, cfg.replay.LastN, cfg.maxReplayBytes, cfg.maxReplayLineBytes)
		if err != nil {
			sendError(ctx, errCh, &WatchError{Op: WatchOpReplay, Path: logFile, Err: err})
		}
		for _, line := range replayed {
			select {
			case lineCh <- line:
			case <-ctx.Done():
				return
			}
		}
	}

	t, err := tailer.New(ctx, logFile, tcfg)
	if err != nil {
		sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: logFile, Err: err})
		return
	}
	defer func() { _ = t.Stop() }()
	log.Debug("tailing chat log", "path", logFile, "from_start", tcfg.FromStart)

	rotationTicker := time.NewTicker(cfg.pollInterval)
	defer rotationTicker.Stop()

	currentFile := logFile
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines():
			if !ok {
				return
			}
			select {
			case lineCh <- line:
			case <-ctx.Done():
				return
			}
		case err, ok := <-t.Errors():
			if !ok {
				return
			}
			sendError(ctx, errCh, err)
		case <-rotationTicker.C:
			newFile, err := logfinder.FindLatestLogFile(logDir)
			if err != nil {
				sendError(ctx, errCh, &WatchError{Op: WatchOpRotation, Err: err})
				continue
			}
			if newFile == currentFile {
				continue
			}
			log.Debug("log rotation detected", "from", currentFile, "to", newFile)
			_ = t.Stop()
			rcfg := tailer.DefaultConfig()
			rcfg.FromStart = true // new file, nothing seen yet
			newTailer, err := tailer.New(ctx, newFile, rcfg)
			if err != nil {
				sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: newFile, Err: err})
				continue
			}
			t = newTailer
			currentFile = newFile
		}
	}
}

// findLogFileWithWait finds the latest chat log, optionally polling
// until one appears.
func findLogFileWithWait(ctx context.Context, cfg *config, logDir string, log *slog.Logger, errCh chan<- error) (string, error) {
	logFile, err := logfinder.FindLatestLogFile(logDir)
	if err == nil {
		return logFile, nil
	}
	if err != ErrNoLogFiles || !cfg.waitForLogs {
		sendError(ctx, errCh, &WatchError{Op: WatchOpFindLatest, Err: err})
		return "", err
	}

	log.Debug("no chat logs yet, waiting", "poll_interval", cfg.pollInterval)
	ticker := time.NewTicker(cfg.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			err := ctx.Err()
			select {
			case errCh <- &WatchError{Op: WatchOpFindLatest, Err: err}:
			default:
			}
			return "", err
		case <-ticker.C:
			logFile, err := logfinder.FindLatestLogFile(logDir)
			if err == nil {
				log.Debug("chat log appeared", "path", logFile)
				return logFile, nil
			}
			if err != ErrNoLogFiles {
				sendError(ctx, errCh, &WatchError{Op: WatchOpFindLatest, Err: err})
				return "", err
			}
		}
	}
}

// sendError delivers err without blocking; errors are dropped only when
// the buffer is full or shutdown has begun.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
	default:
	}
}
