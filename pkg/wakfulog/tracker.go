package wakfulog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wakfulog/wakfulog-go/internal/classify"
	"github.com/wakfulog/wakfulog-go/internal/engine"
	"github.com/wakfulog/wakfulog-go/internal/logfinder"
	"github.com/wakfulog/wakfulog-go/internal/safefile"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/event"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/state"
)

// workerLineBuffer decouples the fan-out from slow workers briefly; a
// full buffer applies backpressure to the tail loop.
const workerLineBuffer = 64

// maxScanLineBytes bounds a single line when processing whole files.
const maxScanLineBytes = 1024 * 1024

// Tracker turns chat log lines into state-change notifications for one
// or more tracked characters. Each character runs on its own worker and
// owns its state; every worker sees every line.
type Tracker struct {
	cfg config
	log *slog.Logger

	mu       sync.Mutex
	closed   bool
	tracking bool
	cancel   context.CancelFunc
	doneCh   chan struct{}

	workers []*charWorker
}

type charWorker struct {
	cfg        CharacterConfig
	classifier *classify.Classifier
	char       *engine.Character

	lines  chan string
	reload chan *rules.Archetype
}

// Track creates a tracker from options and starts it. The channels
// close when ctx is cancelled. For synchronous shutdown via Close, use
// NewTracker and Tracker.Track directly.
func Track(ctx context.Context, opts ...Option) (<-chan state.Notification, <-chan error, error) {
	t, err := NewTracker(opts...)
	if err != nil {
		return nil, nil, err
	}
	return t.Track(ctx)
}

// NewTracker creates a tracker from options. It starts no goroutines;
// the log directory is resolved by Track, so a tracker used only with
// ProcessFile needs no live log installation.
func NewTracker(opts ...Option) (*Tracker, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	log := cfg.logger
	if log == nil {
		log = discardLogger
	}

	t := &Tracker{cfg: *cfg, log: log}
	for _, ch := range cfg.tracked() {
		arch, _ := cfg.ruleset.Archetype(ch.Archetype)
		classifier := classify.New(arch)
		classifier.IncludeRaw = cfg.includeRawLine
		t.workers = append(t.workers, &charWorker{
			cfg:        ch,
			classifier: classifier,
			char: engine.New(ch.Name, arch,
				engine.WithLogger(log),
				engine.WithAmendWindow(cfg.amendWindow),
				engine.WithTimelineLimit(cfg.timelineLimit)),
			lines:  make(chan string, workerLineBuffer),
			reload: make(chan *rules.Archetype, 1),
		})
	}
	return t, nil
}

// Track starts following the live chat log and returns the notification
// and error channels. Both close after ctx cancellation, once in-flight
// lines have drained. Track can be called once per Tracker.
func (t *Tracker) Track(ctx context.Context) (<-chan state.Notification, <-chan error, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, nil, ErrTrackerClosed
	}
	if t.tracking {
		return nil, nil, ErrAlreadyTracking
	}

	logDir, err := logfinder.FindLogDir(t.cfg.logDir)
	if err != nil {
		return nil, nil, fmt.Errorf("finding log directory: %w", err)
	}
	t.tracking = true

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.doneCh = make(chan struct{})

	noteCh := make(chan state.Notification)
	errCh := make(chan error, watcherErrBuffer)

	go t.run(ctx, logDir, noteCh, errCh)
	return noteCh, errCh, nil
}

// Close stops tracking and blocks until all workers have exited. Safe
// to call multiple times.
func (t *Tracker) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	if t.cancel != nil {
		t.cancel()
	}
	doneCh := t.doneCh
	t.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (t *Tracker) run(ctx context.Context, logDir string, noteCh chan<- state.Notification, errCh chan<- error) {
	defer close(t.doneCh)

	lineCh := make(chan string)
	go runLineSource(ctx, &t.cfg, logDir, t.log, lineCh, errCh)

	var wg sync.WaitGroup
	for _, w := range t.workers {
		wg.Add(1)
		go func(w *charWorker) {
			defer wg.Done()
			t.runWorker(ctx, w, noteCh)
		}(w)
	}

	// Fan out every line to every worker, in order.
	for line := range lineCh {
		for _, w := range t.workers {
			select {
			case w.lines <- line:
			case <-ctx.Done():
			}
		}
	}
	for _, w := range t.workers {
		close(w.lines)
	}
	wg.Wait()
	close(noteCh)
	close(errCh)
}

// runWorker processes one character's line stream until it closes,
// draining queued lines even after cancellation so events are never
// interpreted half-way.
func (t *Tracker) runWorker(ctx context.Context, w *charWorker, noteCh chan<- state.Notification) {
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				return
			}
			for _, note := range t.handleLine(w, line) {
				select {
				case noteCh <- note:
				case <-ctx.Done():
				}
			}
		case arch := <-w.reload:
			w.classifier.SetRules(arch)
			w.char.SetRules(arch)
		}
	}
}

// handleLine classifies and interprets one line for one character.
func (t *Tracker) handleLine(w *charWorker, line string) []state.Notification {
	ev := w.classifier.Classify(line)
	if ev.Type == event.Unrecognized {
		return nil
	}
	notes := w.char.HandleEvent(ev)
	if t.cfg.kindFilter == nil {
		return notes
	}
	out := notes[:0]
	for _, n := range notes {
		if t.cfg.kindFilter.Allows(string(n.Kind)) {
			out = append(out, n)
		}
	}
	return out
}

// ProcessFile interprets a whole chat log offline and returns every
// notification in order. Cannot run concurrently with Track.
func (t *Tracker) ProcessFile(path string) ([]state.Notification, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrTrackerClosed
	}
	if t.tracking {
		t.mu.Unlock()
		return nil, ErrAlreadyTracking
	}
	t.mu.Unlock()

	f, _, err := safefile.OpenRegular(path)
	if err != nil {
		return nil, fmt.Errorf("opening chat log: %w", err)
	}
	defer f.Close()

	var notes []state.Notification
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		for _, w := range t.workers {
			notes = append(notes, t.handleLine(w, line)...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading chat log: %w", err)
	}
	return notes, nil
}

// ReloadRules swaps the detection rules without discarding accumulated
// resource, buff or combo state. Every configured archetype must exist
// in the new ruleset.
func (t *Tracker) ReloadRules(rs *rules.Ruleset) error {
	if rs == nil || !rs.Compiled() {
		return errors.New("ruleset must be compiled")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTrackerClosed
	}

	archs := make([]*rules.Archetype, len(t.workers))
	for i, w := range t.workers {
		arch, ok := rs.Archetype(w.cfg.Archetype)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownArchetype, w.cfg.Archetype)
		}
		archs[i] = arch
	}

	for i, w := range t.workers {
		if !t.tracking {
			w.classifier.SetRules(archs[i])
			w.char.SetRules(archs[i])
			continue
		}
		// Hand the swap to the worker goroutine; a still-pending swap
		// is superseded.
		select {
		case <-w.reload:
		default:
		}
		w.reload <- archs[i]
	}
	t.cfg.ruleset = rs
	t.log.Debug("rules reloaded", "archetypes", len(rs.Archetypes))
	return nil
}

// Timeline returns the retained resolved casts for a character, oldest
// first. With a single tracked character the name may be empty.
func (t *Tracker) Timeline(character string) []state.ResolvedCast {
	for _, w := range t.workers {
		if w.cfg.Name == character || (character == "" && len(t.workers) == 1) {
			return w.char.Timeline().Recent(0)
		}
	}
	return nil
}

// UnrecognizedCount returns how many lines matched no rule, summed over
// all workers.
func (t *Tracker) UnrecognizedCount() uint64 {
	var total uint64
	for _, w := range t.workers {
		total += w.classifier.UnrecognizedCount()
	}
	return total
}
