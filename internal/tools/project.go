package tools

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/soapbridge/soapbridge/internal/core"
)

const prefixAnalyze = "Error analyzing project"

type analyzeArgs struct {
	ProjectPath  string
	AnalysisType string
}

func decodeAnalyzeArgs(a Arguments) (analyzeArgs, error) {
	path, err := a.projectPath()
	if err != nil {
		return analyzeArgs{}, err
	}
	kind := strings.ToLower(strings.TrimSpace(a.optional("analysisType")))
	if kind == "" {
		kind = "overview"
	}
	if !slices.Contains(AnalysisTypes, kind) {
		return analyzeArgs{}, &core.UnknownDiscriminatorError{Label: "Unknown analysis type", Value: kind}
	}
	return analyzeArgs{ProjectPath: path, AnalysisType: kind}, nil
}

func (h *handlers) analyzeProject(a Arguments) core.Result {
	text, err := h.analyze(a)
	return respond(prefixAnalyze, text, err)
}

func (h *handlers) analyze(a Arguments) (string, error) {
	args, err := decodeAnalyzeArgs(a)
	if err != nil {
		return "", err
	}
	switch args.AnalysisType {
	case "test_coverage":
		return h.testCoverage(args), nil
	case "endpoint_health":
		return h.endpointHealth(args), nil
	case "performance_metrics":
		return h.performanceMetrics(args), nil
	default:
		return h.overview(args), nil
	}
}

func projectName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (h *handlers) overview(args analyzeArgs) string {
	var b strings.Builder
	b.WriteString("# Project Overview\n\n")
	fmt.Fprintf(&b, "Project: %s\n", projectName(args.ProjectPath))
	fmt.Fprintf(&b, "Path: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("## Structure\n")
	b.WriteString("- Interfaces: WSDL and REST service definitions declared in the project\n")
	b.WriteString("- Test suites: grouped test cases with their setup and teardown scripts\n")
	b.WriteString("- Test steps: requests, property transfers, Groovy scripts and data source loops\n")
	b.WriteString("- Environments: endpoint and property sets selectable at run time\n\n")
	b.WriteString("## Next steps\n")
	b.WriteString("- Run analysisType=test_coverage to find operations without tests\n")
	b.WriteString("- Run analysisType=endpoint_health before executing suites against a new environment\n")
	return b.String()
}

func (h *handlers) testCoverage(args analyzeArgs) string {
	var b strings.Builder
	b.WriteString("# Test Coverage Analysis\n\n")
	fmt.Fprintf(&b, "Project: %s\n", projectName(args.ProjectPath))
	fmt.Fprintf(&b, "Path: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("## Coverage dimensions\n")
	b.WriteString("- Operations: each interface operation should be called by at least one test step\n")
	b.WriteString("- Assertions: each request step should carry at least one assertion\n")
	b.WriteString("- Negative paths: SOAP faults and 4xx/5xx responses should be asserted explicitly\n\n")
	b.WriteString("## Recommendations\n")
	b.WriteString("- Add a Valid HTTP Status Codes assertion to every REST request step\n")
	b.WriteString("- Add a Not SOAP Fault assertion to every SOAP request step\n")
	return b.String()
}

func (h *handlers) endpointHealth(args analyzeArgs) string {
	var b strings.Builder
	b.WriteString("# Endpoint Health Check\n\n")
	fmt.Fprintf(&b, "Project: %s\n", projectName(args.ProjectPath))
	fmt.Fprintf(&b, "Path: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("## Checks\n")
	b.WriteString("- DNS resolution and TLS certificate validity for every configured endpoint\n")
	b.WriteString("- Reachability of WSDL and Swagger definition URLs\n")
	b.WriteString("- Response time of a lightweight request per interface\n\n")
	b.WriteString("Endpoints are not contacted by this tool; run the project's health test suite to probe them.\n")
	return b.String()
}

func (h *handlers) performanceMetrics(args analyzeArgs) string {
	var b strings.Builder
	b.WriteString("# Performance Metrics\n\n")
	fmt.Fprintf(&b, "Project: %s\n", projectName(args.ProjectPath))
	fmt.Fprintf(&b, "Path: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("## Metrics to track\n")
	b.WriteString("- Average, minimum and maximum response time per test step\n")
	b.WriteString("- Transactions per second under load test strategies\n")
	b.WriteString("- Error ratio per test case\n\n")
	b.WriteString("## Suggested thresholds\n")
	b.WriteString("- Response SLA assertion of 2000 ms on interactive operations\n")
	b.WriteString("- Error ratio below 1% for load tests\n")
	return b.String()
}
