//go:build !short

package core_test

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"testing"
)

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file location")
	}
	root := filepath.Join(filepath.Dir(file), "..", "..")
	abs, err := filepath.Abs(root)
	if err != nil {
		t.Fatalf("cannot resolve repo root: %v", err)
	}
	if _, err := os.Stat(filepath.Join(abs, "README.md")); err != nil {
		t.Fatalf("repo root %q does not contain README.md", abs)
	}
	return abs
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read %s: %v", path, err)
	}
	return string(data)
}

func TestDocDrift_EnvVarsInExample(t *testing.T) {
	root := repoRoot(t)
	loaderSrc := readFile(t, filepath.Join(root, "internal", "config", "loader.go"))
	envExample := readFile(t, filepath.Join(root, ".env.example"))

	reGetenv := regexp.MustCompile(`os\.(?:Getenv|LookupEnv)\("([A-Z_]+)"`)
	matches := reGetenv.FindAllStringSubmatch(loaderSrc, -1)
	if len(matches) == 0 {
		t.Fatal("no env lookups found in loader.go")
	}

	codeVars := make(map[string]bool)
	for _, m := range matches {
		codeVars[m[1]] = true
	}

	envLines := strings.Split(envExample, "\n")
	reEnvLine := regexp.MustCompile(`^([A-Z][A-Z0-9_]*)=`)
	exampleVars := make(map[string]bool)
	for _, line := range envLines {
		if m := reEnvLine.FindStringSubmatch(line); m != nil {
			exampleVars[m[1]] = true
		}
	}

	var missing []string
	for v := range codeVars {
		if !exampleVars[v] {
			missing = append(missing, v)
		}
	}
	sort.Strings(missing)
	if len(missing) > 0 {
		t.Errorf("env vars read by the config loader but missing from .env.example:\n  %s",
			strings.Join(missing, "\n  "))
	}
}

func TestDocDrift_HTTPEndpointsInREADME(t *testing.T) {
	root := repoRoot(t)
	serverSrc := readFile(t, filepath.Join(root, "internal", "http", "server.go"))
	readme := readFile(t, filepath.Join(root, "README.md"))

	reRoute := regexp.MustCompile(`Handle(?:Func)?\("(?:GET|POST) (/[^"]+)"`)
	matches := reRoute.FindAllStringSubmatch(serverSrc, -1)
	if len(matches) == 0 {
		t.Fatal("no routes found in server.go")
	}

	var missing []string
	for _, m := range matches {
		if !strings.Contains(readme, m[1]) {
			missing = append(missing, m[1])
		}
	}
	sort.Strings(missing)
	if len(missing) > 0 {
		t.Errorf("HTTP routes not found in README.md:\n  %s",
			strings.Join(missing, "\n  "))
	}
}

func TestDocDrift_MCPToolsInREADME(t *testing.T) {
	root := repoRoot(t)
	catalogSrc := readFile(t, filepath.Join(root, "internal", "tools", "catalog.go"))
	readme := readFile(t, filepath.Join(root, "README.md"))

	reToolName := regexp.MustCompile(`Tool[A-Za-z]+\s*=\s*"([a-z_]+)"`)
	matches := reToolName.FindAllStringSubmatch(catalogSrc, -1)

	serverTools := make(map[string]bool)
	for _, m := range matches {
		serverTools[m[1]] = true
	}
	if len(serverTools) != 6 {
		t.Fatalf("expected 6 tool names in catalog.go, found %d", len(serverTools))
	}

	reMCPSection := regexp.MustCompile(`(?s)## MCP Tools\n(.*?)(?:\n## |\z)`)
	sectionMatch := reMCPSection.FindStringSubmatch(readme)
	if sectionMatch == nil {
		t.Fatal("cannot find '## MCP Tools' section in README.md")
	}
	mcpSection := sectionMatch[1]

	reToolInREADME := regexp.MustCompile("`([a-z_]+)`")
	readmeMatches := reToolInREADME.FindAllStringSubmatch(mcpSection, -1)
	readmeTools := make(map[string]bool)
	for _, m := range readmeMatches {
		readmeTools[m[1]] = true
	}

	var missingInREADME []string
	for tool := range serverTools {
		if !readmeTools[tool] {
			missingInREADME = append(missingInREADME, tool)
		}
	}
	sort.Strings(missingInREADME)

	var missingInServer []string
	for tool := range readmeTools {
		if !serverTools[tool] {
			missingInServer = append(missingInServer, tool)
		}
	}
	sort.Strings(missingInServer)

	if len(missingInREADME) > 0 {
		t.Errorf("MCP tools in the catalog but missing from README:\n  %s",
			strings.Join(missingInREADME, "\n  "))
	}
	if len(missingInServer) > 0 {
		t.Errorf("MCP tools listed in README but not in the catalog:\n  %s",
			strings.Join(missingInServer, "\n  "))
	}
}
