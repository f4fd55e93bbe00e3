package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/engram/internal/guard"
)

// File represents the structured input for preloading a fresh store.
type File struct {
	Memories []Entry  `json:"memories" yaml:"memories"`
	Goals    []string `json:"goals" yaml:"goals"`
}

// Entry is one memory to preload. A nil Importance means the store's
// baseline applies.
type Entry struct {
	Content    string            `json:"content" yaml:"content"`
	Importance *float64          `json:"importance,omitempty" yaml:"importance,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ValidationResult represents the outcome of a linting pass.
type ValidationResult struct {
	Valid    bool
	Warnings []string
	Errors   []string
}

// Loader reads and validates seed files.
type Loader struct {
	maxGoals int
}

func New(maxGoals int) *Loader {
	return &Loader{maxGoals: maxGoals}
}

// Load reads a seed file (JSON or YAML).
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f File
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON seed: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML seed: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed format: %s (use .json or .yaml)", ext)
	}

	return &f, nil
}

// Validate checks the seed for completeness and quality.
func (l *Loader) Validate(f File) ValidationResult {
	res := ValidationResult{
		Valid:    true,
		Warnings: []string{},
		Errors:   []string{},
	}

	if len(f.Memories) == 0 && len(f.Goals) == 0 {
		res.Valid = false
		res.Errors = append(res.Errors, "Seed has no memories and no goals")
		return res
	}

	for i, entry := range f.Memories {
		if strings.TrimSpace(entry.Content) == "" {
			res.Valid = false
			res.Errors = append(res.Errors, fmt.Sprintf("Memory %d has no content", i+1))
		}
		if entry.Importance != nil && (*entry.Importance < 0 || *entry.Importance > 1) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Memory %d importance %.2f is outside [0, 1] and will be clamped", i+1, *entry.Importance))
		}
		if len(entry.Content) > guard.DefaultPolicy.MaxContentBytes {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Memory %d is %d bytes and will fail the content guard", i+1, len(entry.Content)))
		}
	}

	for i, text := range f.Goals {
		if strings.TrimSpace(text) == "" {
			res.Valid = false
			res.Errors = append(res.Errors, fmt.Sprintf("Goal %d is blank", i+1))
		}
	}

	if l.maxGoals > 0 && len(f.Goals) > l.maxGoals {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Seed has %d goals but only %d can be active; the rest will be rejected", len(f.Goals), l.maxGoals))
	}

	return res
}
