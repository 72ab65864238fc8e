package wakfulog

import (
	"errors"
	"fmt"

	"github.com/wakfulog/wakfulog-go/internal/logfinder"
)

// Sentinel errors.
var (
	// ErrWatcherClosed is returned by Watch after Close.
	ErrWatcherClosed = errors.New("watcher is closed")

	// ErrAlreadyWatching is returned when Watch is called twice.
	ErrAlreadyWatching = errors.New("watcher is already watching")

	// ErrTrackerClosed is returned by Track after Close.
	ErrTrackerClosed = errors.New("tracker is closed")

	// ErrAlreadyTracking is returned when Track is called twice.
	ErrAlreadyTracking = errors.New("tracker is already tracking")

	// ErrUnknownArchetype is returned when a configured archetype does
	// not exist in the active ruleset.
	ErrUnknownArchetype = errors.New("unknown archetype")

	// ErrReplayLimitExceeded is returned when replay would read more
	// bytes than the configured limits allow.
	ErrReplayLimitExceeded = errors.New("replay limit exceeded")
)

// Re-exported so callers need not import internal packages.
var (
	ErrLogDirNotFound = logfinder.ErrLogDirNotFound
	ErrNoLogFiles     = logfinder.ErrNoLogFiles
)

// WatchOp identifies the watch-loop operation an error occurred in.
type WatchOp string

// Watch operations.
const (
	WatchOpFindLatest WatchOp = "find_latest"
	WatchOpTail       WatchOp = "tail"
	WatchOpRotation   WatchOp = "rotation"
	WatchOpReplay     WatchOp = "replay"
)

// WatchError wraps a non-fatal error from the watch loop, tagged with
// the operation that produced it.
type WatchError struct {
	Op   WatchOp
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("watch %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("watch %s: %v", e.Op, e.Err)
}

func (e *WatchError) Unwrap() error { return e.Err }
