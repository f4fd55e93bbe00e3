package guard

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Policy defines the hygiene limits for content entering the store.
type Policy struct {
	MaxContentBytes int      `json:"max_content_bytes"`
	MaxRecallK      int      `json:"max_recall_k"`
	DeniedGlobs     []string `json:"denied_globs"`
	BlockSensitive  bool     `json:"block_sensitive"`
}

// DefaultPolicy provides safe defaults.
var DefaultPolicy = Policy{
	MaxContentBytes: 16384,
	MaxRecallK:      100,
	DeniedGlobs: []string{
		"**/.ssh/**",
		"**/*.pem",
		"**/.env*",
		"**/id_rsa*",
	},
	BlockSensitive: true,
}

// Violation represents a specific breach of policy.
type Violation struct {
	Rule    string
	Message string
	Fatal   bool
}

// Guard enforces the policy.
type Guard struct {
	policy Policy
}

func New(p Policy) *Guard {
	return &Guard{policy: p}
}

// Policy returns the guard's current policy configuration.
func (g *Guard) Policy() Policy {
	return g.policy
}

// CheckContent verifies that content may be stored. It rejects oversized
// payloads and, when BlockSensitive is set, content that mentions a path
// matching one of the denied globs.
func (g *Guard) CheckContent(content string) *Violation {
	if g.policy.MaxContentBytes > 0 && len(content) > g.policy.MaxContentBytes {
		return &Violation{
			Rule:    "max_content_bytes",
			Message: fmt.Sprintf("content is %d bytes, limit is %d", len(content), g.policy.MaxContentBytes),
			Fatal:   true,
		}
	}

	if !g.policy.BlockSensitive {
		return nil
	}

	for _, tok := range pathTokens(content) {
		for _, pattern := range g.policy.DeniedGlobs {
			match, err := doublestar.Match(pattern, tok)
			if err == nil && match {
				return &Violation{
					Rule:    "denied_globs",
					Message: "content references a sensitive path: " + tok,
					Fatal:   true,
				}
			}
		}
	}
	return nil
}

// CheckRecall verifies that a recall request stays within limits.
func (g *Guard) CheckRecall(k int) *Violation {
	if g.policy.MaxRecallK > 0 && k > g.policy.MaxRecallK {
		return &Violation{
			Rule:    "max_recall_k",
			Message: fmt.Sprintf("recall of %d items exceeds limit %d", k, g.policy.MaxRecallK),
			Fatal:   false,
		}
	}
	return nil
}

// pathTokens picks the fields of the content that look like filesystem
// paths: anything containing a separator or starting with "." or "~".
func pathTokens(content string) []string {
	var out []string
	for _, tok := range strings.Fields(content) {
		tok = strings.TrimRight(tok, ".,;:!?)\"'")
		if tok == "" {
			continue
		}
		if strings.Contains(tok, "/") || tok[0] == '.' || tok[0] == '~' {
			out = append(out, tok)
		}
	}
	return out
}
