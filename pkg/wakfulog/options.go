package wakfulog

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/wakfulog/wakfulog-go/internal/engine"
	"github.com/wakfulog/wakfulog-go/internal/timeline"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/event"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/state"
)

// ReplayMode specifies how existing log lines are handled.
type ReplayMode int

const (
	// ReplayNone only follows new lines (default, tail -f behavior).
	ReplayNone ReplayMode = iota
	// ReplayFromStart reads the whole file before following.
	ReplayFromStart
	// ReplayLastN reads the last N lines before following.
	ReplayLastN
)

// ReplayConfig configures replay behavior. Modes are mutually exclusive.
type ReplayConfig struct {
	Mode  ReplayMode
	LastN int
}

// DefaultMaxReplayLastN caps ReplayLastN requests.
const DefaultMaxReplayLastN = 10000

// CharacterConfig declares one character to track.
type CharacterConfig struct {
	// Name is the in-game fighter name. Empty adopts the first fighter
	// seen casting one of the archetype's spells.
	Name string
	// Archetype names the ruleset archetype, e.g. rules.ArchetypeIop.
	Archetype string
}

// Option configures watchers and trackers using functional options.
type Option func(*config)

type config struct {
	logDir           string
	pollInterval     time.Duration
	waitForLogs      bool
	includeRawLine   bool
	emitUnrecognized bool
	replay           ReplayConfig

	maxReplayLines     int
	maxReplayBytes     int
	maxReplayLineBytes int

	logger *slog.Logger

	ruleset    *rules.Ruleset
	rulesErr   error // deferred error from WithRulesFile
	archetype  string
	characters []CharacterConfig

	eventFilter *compiledFilter // event types, watcher side
	kindFilter  *compiledFilter // notification kinds, tracker side

	amendWindow   time.Duration
	timelineLimit int
}

func defaultConfig() *config {
	return &config{
		pollInterval:       2 * time.Second,
		maxReplayLines:     DefaultMaxReplayLastN,
		maxReplayBytes:     10 * 1024 * 1024,
		maxReplayLineBytes: 512 * 1024,
		archetype:          rules.ArchetypeIop,
		amendWindow:        engine.DefaultAmendWindow,
		timelineLimit:      timeline.DefaultLimit,
	}
}

func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.ruleset == nil && cfg.rulesErr == nil {
		cfg.ruleset = rules.DefaultRuleset()
	}
	return cfg
}

// validate checks for invalid option combinations.
func (c *config) validate() error {
	if c.rulesErr != nil {
		return c.rulesErr
	}
	if c.replay.Mode == ReplayLastN {
		if c.replay.LastN < 0 {
			return fmt.Errorf("replay LastN must be non-negative, got %d", c.replay.LastN)
		}
		maxLines := c.maxReplayLines
		if maxLines == 0 {
			maxLines = DefaultMaxReplayLastN
		}
		if maxLines > 0 && c.replay.LastN > maxLines {
			return fmt.Errorf("replay LastN (%d) exceeds maximum of %d", c.replay.LastN, maxLines)
		}
	}
	if c.pollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.pollInterval)
	}
	if c.maxReplayBytes < 0 {
		return fmt.Errorf("maxReplayBytes must be non-negative, got %d", c.maxReplayBytes)
	}
	if c.maxReplayLineBytes < 0 {
		return fmt.Errorf("maxReplayLineBytes must be non-negative, got %d", c.maxReplayLineBytes)
	}
	if _, ok := c.ruleset.Archetype(c.archetype); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownArchetype, c.archetype)
	}
	for _, ch := range c.characters {
		if _, ok := c.ruleset.Archetype(ch.Archetype); !ok {
			return fmt.Errorf("%w: %q for character %q", ErrUnknownArchetype, ch.Archetype, ch.Name)
		}
	}
	return nil
}

// tracked returns the configured characters, defaulting to a single
// auto-adopted character of the default archetype.
func (c *config) tracked() []CharacterConfig {
	if len(c.characters) > 0 {
		return c.characters
	}
	return []CharacterConfig{{Archetype: c.archetype}}
}

// WithLogDir sets the Wakfu chat log directory. If not set, the
// directory is auto-detected; WAKFULOG_LOGDIR also overrides it.
func WithLogDir(dir string) Option {
	return func(c *config) { c.logDir = dir }
}

// WithPollInterval sets how often to check for rotated log files.
// Default: 2 seconds.
func WithPollInterval(interval time.Duration) Option {
	return func(c *config) { c.pollInterval = interval }
}

// WithWaitForLogs makes the watch loop poll until a chat log appears
// instead of failing immediately with ErrNoLogFiles. Useful when the
// watcher starts before the game does.
func WithWaitForLogs(wait bool) Option {
	return func(c *config) { c.waitForLogs = wait }
}

// WithIncludeRawLine includes the original log line in Event.RawLine.
func WithIncludeRawLine(include bool) Option {
	return func(c *config) { c.includeRawLine = include }
}

// WithEmitUnrecognized emits Unrecognized events instead of dropping
// them. Off by default; chat logs are mostly unrelated chatter.
func WithEmitUnrecognized(emit bool) Option {
	return func(c *config) { c.emitUnrecognized = emit }
}

// WithReplay configures replay of existing log lines.
func WithReplay(rc ReplayConfig) Option {
	return func(c *config) { c.replay = rc }
}

// WithReplayFromStart reads the whole chat log before following.
func WithReplayFromStart() Option {
	return func(c *config) { c.replay = ReplayConfig{Mode: ReplayFromStart} }
}

// WithReplayLastN reads the last N non-empty lines before following.
func WithReplayLastN(n int) Option {
	return func(c *config) { c.replay = ReplayConfig{Mode: ReplayLastN, LastN: n} }
}

// WithMaxReplayLines sets the maximum lines for ReplayLastN mode.
// 0 uses the default; -1 removes the limit.
func WithMaxReplayLines(max int) Option {
	return func(c *config) { c.maxReplayLines = max }
}

// WithMaxReplayBytes sets the maximum total bytes read during replay.
// Default 10MB; 0 removes the limit.
func WithMaxReplayBytes(max int) Option {
	return func(c *config) { c.maxReplayBytes = max }
}

// WithMaxReplayLineBytes sets the maximum bytes per replayed line.
// Default 512KB; 0 removes the limit.
func WithMaxReplayLineBytes(max int) Option {
	return func(c *config) { c.maxReplayLineBytes = max }
}

// WithLogger sets a structured logger for debug output. Nil disables
// logging (the default).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithRuleset replaces the built-in detection rules. The ruleset must
// already be compiled (rules.Load and rules.LoadBytes return compiled
// rulesets).
func WithRuleset(rs *rules.Ruleset) Option {
	return func(c *config) {
		if rs != nil {
			c.ruleset = rs
		}
	}
}

// WithRulesFile loads detection rules from a YAML file. Load errors are
// reported by NewWatcher / NewTracker, not here.
func WithRulesFile(path string) Option {
	return func(c *config) {
		rs, _, err := rules.Load(path)
		if err != nil {
			c.rulesErr = fmt.Errorf("loading rules from %s: %w", path, err)
			return
		}
		c.ruleset = rs
	}
}

// WithArchetype sets the archetype used for classification when no
// characters are configured. Default: rules.ArchetypeIop.
func WithArchetype(name string) Option {
	return func(c *config) { c.archetype = name }
}

// WithCharacter adds a character to track. May be repeated; each
// character gets its own worker and state.
func WithCharacter(name, archetype string) Option {
	return func(c *config) {
		c.characters = append(c.characters, CharacterConfig{Name: name, Archetype: archetype})
	}
}

// WithIncludeEvents keeps only the given event types on the Watch
// stream. The last call wins.
func WithIncludeEvents(types ...event.Type) Option {
	return func(c *config) {
		include := make([]string, len(types))
		for i, t := range types {
			include[i] = string(t)
		}
		c.eventFilter = newCompiledFilter(include, excludeOf(c.eventFilter))
	}
}

// WithExcludeEvents drops the given event types from the Watch stream.
// Exclude takes precedence over include. The last call wins.
func WithExcludeEvents(types ...event.Type) Option {
	return func(c *config) {
		exclude := make([]string, len(types))
		for i, t := range types {
			exclude[i] = string(t)
		}
		c.eventFilter = newCompiledFilter(includeOf(c.eventFilter), exclude)
	}
}

// WithIncludeKinds keeps only the given notification kinds on the Track
// stream. The last call wins.
func WithIncludeKinds(kinds ...state.Kind) Option {
	return func(c *config) {
		include := make([]string, len(kinds))
		for i, k := range kinds {
			include[i] = string(k)
		}
		c.kindFilter = newCompiledFilter(include, excludeOf(c.kindFilter))
	}
}

// WithExcludeKinds drops the given notification kinds from the Track
// stream. Exclude takes precedence over include. The last call wins.
func WithExcludeKinds(kinds ...state.Kind) Option {
	return func(c *config) {
		exclude := make([]string, len(kinds))
		for i, k := range kinds {
			exclude[i] = string(k)
		}
		c.kindFilter = newCompiledFilter(includeOf(c.kindFilter), exclude)
	}
}

// WithAmendWindow bounds how long a variable-cost cast waits for its
// follow-up line before committing at base cost.
func WithAmendWindow(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.amendWindow = d
		}
	}
}

// WithTimelineLimit sets the per-character timeline retention limit.
func WithTimelineLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.timelineLimit = n
		}
	}
}

func includeOf(f *compiledFilter) []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.include))
	for k := range f.include {
		out = append(out, k)
	}
	return out
}

func excludeOf(f *compiledFilter) []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.exclude))
	for k := range f.exclude {
		out = append(out, k)
	}
	return out
}
