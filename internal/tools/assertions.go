package tools

import (
	"fmt"
	"slices"
	"strings"

	"github.com/soapbridge/soapbridge/internal/core"
)

const prefixAssertions = "Error managing assertions"

type assertionArgs struct {
	ProjectPath   string
	Action        string
	TestStepName  string
	AssertionType string
	AssertionName string
	ExpectedValue string
	Expression    string
}

func decodeAssertionArgs(a Arguments) (assertionArgs, error) {
	path, err := a.projectPath()
	if err != nil {
		return assertionArgs{}, err
	}
	action, err := a.action()
	if err != nil {
		return assertionArgs{}, err
	}
	return assertionArgs{
		ProjectPath:   path,
		Action:        action,
		TestStepName:  a.optional("testStepName"),
		AssertionType: strings.ToLower(a.optional("assertionType")),
		AssertionName: a.optional("assertionName"),
		ExpectedValue: a.optional("expectedValue"),
		Expression:    a.optional("expression"),
	}, nil
}

func (h *handlers) manageAssertions(a Arguments) core.Result {
	text, err := h.assertions(a)
	return respond(prefixAssertions, text, err)
}

func (h *handlers) assertions(a Arguments) (string, error) {
	args, err := decodeAssertionArgs(a)
	if err != nil {
		return "", err
	}
	switch args.Action {
	case "create_assertion":
		return h.createAssertion(args)
	case "validate_response":
		return h.validateAssertedResponse(args)
	case "update_assertion":
		return h.updateAssertion(args)
	case "list_assertions":
		return h.listAssertions(args), nil
	default:
		return "", &core.UnknownDiscriminatorError{Label: "Unknown assertion action", Value: args.Action}
	}
}

// assertionLabels maps assertion types to the names shown in the SoapUI UI.
var assertionLabels = map[string]string{
	"contains":          "Contains",
	"not_contains":      "Not Contains",
	"xpath":             "XPath Match",
	"jsonpath":          "JsonPath Match",
	"http_status":       "Valid HTTP Status Codes",
	"response_sla":      "Response SLA",
	"schema_compliance": "Schema Compliance",
	"soap_fault":        "Not SOAP Fault",
	"script":            "Script Assertion",
}

func (h *handlers) createAssertion(args assertionArgs) (string, error) {
	if args.TestStepName == "" {
		return "", missing("testStepName", "Test step name is required for creating assertion")
	}
	if args.AssertionType == "" {
		return "", missing("assertionType", "Assertion type is required for creating assertion")
	}
	if !slices.Contains(AssertionTypes, args.AssertionType) {
		return "", &core.UnknownDiscriminatorError{Label: "Unsupported assertion type", Value: args.AssertionType}
	}
	var b strings.Builder
	b.WriteString("# Assertion Created\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Test step: %s\n", args.TestStepName)
	fmt.Fprintf(&b, "Assertion: %s\n", assertionLabels[args.AssertionType])
	if args.Expression != "" {
		fmt.Fprintf(&b, "Expression: %s\n", args.Expression)
	}
	if args.ExpectedValue != "" {
		fmt.Fprintf(&b, "Expected: %s\n", args.ExpectedValue)
	}
	fmt.Fprintf(&b, "Generated: %s\n", h.timestamp())
	return b.String(), nil
}

func (h *handlers) validateAssertedResponse(args assertionArgs) (string, error) {
	if args.TestStepName == "" {
		return "", missing("testStepName", "Test step name is required for validating response")
	}
	var b strings.Builder
	b.WriteString("# Response Validation\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Test step: %s\n", args.TestStepName)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("Run the test step to evaluate its assertions against the latest response.\n")
	b.WriteString("A step passes only when every enabled assertion passes.\n")
	return b.String(), nil
}

func (h *handlers) updateAssertion(args assertionArgs) (string, error) {
	if args.TestStepName == "" {
		return "", missing("testStepName", "Test step name is required for updating assertion")
	}
	if args.AssertionName == "" {
		return "", missing("assertionName", "Assertion name is required for updating assertion")
	}
	var b strings.Builder
	b.WriteString("# Assertion Updated\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Test step: %s\n", args.TestStepName)
	fmt.Fprintf(&b, "Assertion: %s\n", args.AssertionName)
	if args.Expression != "" {
		fmt.Fprintf(&b, "Expression: %s\n", args.Expression)
	}
	if args.ExpectedValue != "" {
		fmt.Fprintf(&b, "Expected: %s\n", args.ExpectedValue)
	}
	fmt.Fprintf(&b, "Generated: %s\n", h.timestamp())
	return b.String(), nil
}

func (h *handlers) listAssertions(args assertionArgs) string {
	step := args.TestStepName
	if step == "" {
		step = "(all test steps)"
	}
	var b strings.Builder
	b.WriteString("# Assertions\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Test step: %s\n", step)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("## Available assertion types\n")
	for _, t := range AssertionTypes {
		fmt.Fprintf(&b, "- %s: %s\n", t, assertionLabels[t])
	}
	return b.String()
}
