package wakfulog

import (
	"bufio"
	"fmt"
	"io"

	"github.com/wakfulog/wakfulog-go/internal/classify"
	"github.com/wakfulog/wakfulog-go/internal/safefile"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/event"
)

// ParseLine classifies a single chat log line under the configured
// archetype. Lines that match no rule come back as Unrecognized; that
// is not an error.
func ParseLine(line string, opts ...Option) (event.Event, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return event.Event{}, fmt.Errorf("invalid options: %w", err)
	}
	arch, _ := cfg.ruleset.Archetype(cfg.archetype)
	c := classify.New(arch)
	c.IncludeRaw = cfg.includeRawLine
	return c.Classify(line), nil
}

// ParseFile classifies a whole chat log into events, in file order.
// Unrecognized lines are dropped unless WithEmitUnrecognized is set.
func ParseFile(path string, opts ...Option) ([]event.Event, error) {
	f, _, err := safefile.OpenRegular(path)
	if err != nil {
		return nil, fmt.Errorf("opening chat log: %w", err)
	}
	defer f.Close()
	return ParseReader(f, opts...)
}

// ParseReader classifies chat log lines from r. See ParseFile.
func ParseReader(r io.Reader, opts ...Option) ([]event.Event, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	arch, _ := cfg.ruleset.Archetype(cfg.archetype)
	c := classify.New(arch)
	c.IncludeRaw = cfg.includeRawLine

	var events []event.Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		ev := c.Classify(line)
		if ev.Type == event.Unrecognized && !cfg.emitUnrecognized {
			continue
		}
		if !cfg.eventFilter.Allows(string(ev.Type)) {
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading chat log: %w", err)
	}
	return events, nil
}
