package tools

import (
	"fmt"
	"strings"

	"github.com/soapbridge/soapbridge/internal/core"
	"github.com/soapbridge/soapbridge/internal/testrunner"
)

const prefixExecute = "Error executing test suite"

type executeArgs struct {
	ProjectPath   string
	TestSuite     string
	TestCase      string
	Environment   string
	Mode          testrunner.Mode
	ReportsFolder string
}

func decodeExecuteArgs(a Arguments) (executeArgs, error) {
	path, err := a.projectPath()
	if err != nil {
		return executeArgs{}, err
	}
	suite, err := a.require("testSuitePath", "Test suite path is required and must be a string")
	if err != nil {
		return executeArgs{}, err
	}
	raw := strings.ToLower(strings.TrimSpace(a.optional("testRunner")))
	mode, ok := testrunner.ParseMode(raw)
	if !ok {
		return executeArgs{}, &core.UnknownDiscriminatorError{Label: "Unknown test runner", Value: raw}
	}
	env := a.optional("environment")
	if env == "" {
		env = testrunner.DefaultEnvironment
	}
	return executeArgs{
		ProjectPath:   path,
		TestSuite:     suite,
		TestCase:      a.optional("testCaseName"),
		Environment:   env,
		Mode:          mode,
		ReportsFolder: a.optional("reportsFolder"),
	}, nil
}

func (h *handlers) executeTestSuite(a Arguments) core.Result {
	text, err := h.execute(a)
	return respond(prefixExecute, text, err)
}

func (h *handlers) execute(a Arguments) (string, error) {
	args, err := decodeExecuteArgs(a)
	if err != nil {
		return "", err
	}
	plan, err := h.runner.Render(testrunner.Invocation{
		ProjectPath:   args.ProjectPath,
		TestSuite:     args.TestSuite,
		TestCase:      args.TestCase,
		Environment:   args.Environment,
		Mode:          args.Mode,
		ReportsFolder: args.ReportsFolder,
	})
	if err != nil {
		return "", err
	}

	testCase := args.TestCase
	if testCase == "" {
		testCase = "(all test cases)"
	}

	var b strings.Builder
	b.WriteString("# Test Suite Execution\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Test suite: %s\n", args.TestSuite)
	fmt.Fprintf(&b, "Test case: %s\n", testCase)
	fmt.Fprintf(&b, "Environment: %s\n", args.Environment)
	fmt.Fprintf(&b, "Runner: %s\n", plan.Mode)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("## Command\n")
	fmt.Fprintf(&b, "%s\n\n", plan.Command)
	if plan.Mode == testrunner.ModeHeadless {
		b.WriteString("The headless runner prints a summary per test case and writes JUnit-style reports (-j).\n")
		b.WriteString("Exit code 0 means every assertion passed.\n")
	} else {
		b.WriteString("The GUI opens the project; select the test suite and press Run.\n")
	}
	return b.String(), nil
}
