// Package tailer follows a single log file, bridging nxadm/tail to
// plain line and error channels.
package tailer

import (
	"context"
	"io"

	"github.com/nxadm/tail"
)

// Config controls how a file is tailed.
type Config struct {
	// FromStart reads the whole file before following new lines.
	// Otherwise tailing starts at the current end of file.
	FromStart bool
	// Poll forces polling instead of inotify. Needed on filesystems
	// that do not deliver change notifications.
	Poll bool
}

// DefaultConfig tails from the end of the file using inotify.
func DefaultConfig() Config { return Config{} }

// Tailer follows one file. Lines and Errors close when tailing stops.
type Tailer struct {
	t      *tail.Tail
	lines  chan string
	errs   chan error
	cancel context.CancelFunc
	done   chan struct{}
}

// New starts tailing path. The file must exist; rotation of the same
// path (truncate or recreate) is handled by reopening.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	tc := tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Poll:      cfg.Poll,
		Logger:    tail.DiscardingLogger,
	}
	if !cfg.FromStart {
		tc.Location = &tail.SeekInfo{Whence: io.SeekEnd}
	}
	t, err := tail.TailFile(path, tc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	tl := &Tailer{
		t:      t,
		lines:  make(chan string),
		errs:   make(chan error, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go tl.run(ctx)
	return tl, nil
}

// Lines returns the channel of tailed lines, without trailing newlines.
func (tl *Tailer) Lines() <-chan string { return tl.lines }

// Errors returns the channel of non-fatal tailing errors.
func (tl *Tailer) Errors() <-chan error { return tl.errs }

// Stop ends tailing, waits for the forwarding goroutine and releases
// inotify watches. Safe to call once.
func (tl *Tailer) Stop() error {
	tl.cancel()
	err := tl.t.Stop()
	<-tl.done
	tl.t.Cleanup()
	return err
}

func (tl *Tailer) run(ctx context.Context) {
	defer close(tl.done)
	defer close(tl.lines)
	defer close(tl.errs)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-tl.t.Lines:
			if !ok {
				if err := tl.t.Err(); err != nil {
					tl.sendError(err)
				}
				return
			}
			if line.Err != nil {
				tl.sendError(line.Err)
				continue
			}
			select {
			case tl.lines <- line.Text:
			case <-ctx.Done():
				return
			}
		}
	}
}

// sendError drops the error if the buffer is full rather than block the
// tail loop.
func (tl *Tailer) sendError(err error) {
	select {
	case tl.errs <- err:
	default:
	}
}
