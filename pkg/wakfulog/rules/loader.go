package rules

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wakfulog/wakfulog-go/internal/safefile"
)

const (
	// MaxRulesFileSize is the maximum allowed size for a ruleset file (1MB).
	MaxRulesFileSize = 1 * 1024 * 1024

	// MaxSpellCount limits spells per archetype to keep compilation and
	// classification bounded against hostile files.
	MaxSpellCount = 1000

	// MaxComboCount limits combo chains per archetype.
	MaxComboCount = 100
)

// sanitizePathError removes the path from os.PathError to avoid leaking
// file system paths into user-facing error messages.
func sanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}

// Load reads, parses and compiles a ruleset file from the given path.
//
// The file must be a regular file no larger than MaxRulesFileSize. The
// returned Report lists combo chains that were disabled during
// compilation; the error is non-nil only for fatal problems.
func Load(path string) (*Ruleset, *Report, error) {
	f, info, err := safefile.OpenRegular(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ruleset file: %w", sanitizePathError(err))
	}
	defer f.Close()

	if info.Size() == 0 {
		return nil, nil, errors.New("ruleset file is empty")
	}
	if info.Size() > MaxRulesFileSize {
		return nil, nil, fmt.Errorf("ruleset file too large: %d bytes (max %d)", info.Size(), MaxRulesFileSize)
	}

	// Read MaxRulesFileSize+1 to detect the file growing past the limit
	// between Stat and Read.
	data, err := io.ReadAll(io.LimitReader(f, MaxRulesFileSize+1))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read ruleset file: %w", sanitizePathError(err))
	}
	if len(data) > MaxRulesFileSize {
		return nil, nil, fmt.Errorf("ruleset file too large: %d bytes (max %d)", len(data), MaxRulesFileSize)
	}

	return LoadBytes(data)
}

// LoadBytes parses and compiles a ruleset from a byte slice.
func LoadBytes(data []byte) (*Ruleset, *Report, error) {
	if len(data) == 0 {
		return nil, nil, errors.New("ruleset file is empty")
	}
	if len(data) > MaxRulesFileSize {
		return nil, nil, fmt.Errorf("ruleset file too large: %d bytes (max %d)", len(data), MaxRulesFileSize)
	}

	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range rs.Archetypes {
		a := &rs.Archetypes[i]
		if len(a.Spells) > MaxSpellCount {
			return nil, nil, &RuleError{
				Archetype: a.Name,
				Section:   "spells",
				Message:   fmt.Sprintf("too many spells (%d), maximum allowed is %d", len(a.Spells), MaxSpellCount),
			}
		}
		if len(a.Combos) > MaxComboCount {
			return nil, nil, &RuleError{
				Archetype: a.Name,
				Section:   "combos",
				Message:   fmt.Sprintf("too many combos (%d), maximum allowed is %d", len(a.Combos), MaxComboCount),
			}
		}
	}

	report, err := rs.Compile()
	if err != nil {
		return nil, nil, err
	}
	return &rs, report, nil
}
