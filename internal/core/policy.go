package core

import (
	"sort"
	"strings"
)

// Policy enforces the optional tool allowlist parsed from a comma-separated
// env var. Unlike a repo allowlist, an empty list leaves every tool enabled.
type Policy struct {
	allowedTools map[string]bool
}

// NewPolicy creates a Policy from a comma-separated allowlist string.
func NewPolicy(toolCSV string) *Policy {
	return &Policy{allowedTools: parseCSV(toolCSV)}
}

// CheckTool returns an error if toolName is excluded by the allowlist.
// A nil Policy allows everything.
func (p *Policy) CheckTool(toolName string) error {
	if p.Allows(toolName) {
		return nil
	}
	return &ToolDisabledError{Name: toolName}
}

func (p *Policy) Allows(toolName string) bool {
	if p == nil || len(p.allowedTools) == 0 {
		return true
	}
	return p.allowedTools[toolName]
}

// Allowed lists the configured names in sorted order, or nil when
// unrestricted.
func (p *Policy) Allowed() []string {
	if p == nil || len(p.allowedTools) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.allowedTools))
	for name := range p.allowedTools {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func parseCSV(s string) map[string]bool {
	m := make(map[string]bool)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			m[item] = true
		}
	}
	return m
}
