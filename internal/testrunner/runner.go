// Package testrunner renders the command lines a SoapUI installation would
// use to run a test suite. It never starts a process.
package testrunner

import (
	"fmt"
	"strings"

	"al.essio.dev/pkg/shellescape"
)

type Mode string

const (
	ModeHeadless Mode = "headless"
	ModeGUI      Mode = "gui"
)

const DefaultEnvironment = "default"

type Config struct {
	TestRunnerPath string
	GUIPath        string
}

// Invocation is what execute_test_suite asks to run.
type Invocation struct {
	ProjectPath   string
	TestSuite     string
	TestCase      string
	Environment   string
	Mode          Mode
	ReportsFolder string
}

// Plan is the rendered, not executed, command.
type Plan struct {
	Mode    Mode     `json:"mode"`
	Args    []string `json:"args"`
	Command string   `json:"command"`
}

type Runner struct {
	cfg Config
}

func NewRunner(cfg Config) *Runner {
	if strings.TrimSpace(cfg.TestRunnerPath) == "" {
		cfg.TestRunnerPath = "testrunner.sh"
	}
	if strings.TrimSpace(cfg.GUIPath) == "" {
		cfg.GUIPath = "soapui.sh"
	}
	return &Runner{cfg: cfg}
}

// ParseMode maps the testRunner argument onto a Mode. Empty means headless.
func ParseMode(v string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(v))) {
	case "", ModeHeadless:
		return ModeHeadless, true
	case ModeGUI:
		return ModeGUI, true
	default:
		return "", false
	}
}

// Render builds the command line for inv.
func (r *Runner) Render(inv Invocation) (Plan, error) {
	if strings.TrimSpace(inv.ProjectPath) == "" {
		return Plan{}, fmt.Errorf("project path is empty")
	}
	env := inv.Environment
	if env == "" {
		env = DefaultEnvironment
	}

	var args []string
	switch inv.Mode {
	case ModeHeadless, "":
		if strings.TrimSpace(inv.TestSuite) == "" {
			return Plan{}, fmt.Errorf("test suite is empty")
		}
		args = []string{r.cfg.TestRunnerPath, "-s" + inv.TestSuite}
		if inv.TestCase != "" {
			args = append(args, "-c"+inv.TestCase)
		}
		args = append(args, "-E"+env, "-r", "-j")
		if inv.ReportsFolder != "" {
			args = append(args, "-f"+inv.ReportsFolder)
		}
		args = append(args, inv.ProjectPath)
		inv.Mode = ModeHeadless
	case ModeGUI:
		args = []string{r.cfg.GUIPath, inv.ProjectPath}
	default:
		return Plan{}, fmt.Errorf("unsupported runner mode: %s", inv.Mode)
	}

	return Plan{Mode: inv.Mode, Args: args, Command: shellescape.QuoteCommand(args)}, nil
}
