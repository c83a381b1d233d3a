package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Tool names.
const (
	ToolAnalyzeProject     = "analyze_project"
	ToolExecuteTestSuite   = "execute_test_suite"
	ToolManageSOAPServices = "manage_soap_services"
	ToolManageRESTServices = "manage_rest_services"
	ToolManageAssertions   = "manage_assertions"
	ToolManageTestData     = "manage_test_data"
)

// Discriminator and enum values accepted by the handler groups.
var (
	AnalysisTypes   = []string{"overview", "test_coverage", "endpoint_health", "performance_metrics"}
	TestRunners     = []string{"gui", "headless"}
	SOAPActions     = []string{"import_wsdl", "create_request", "validate_response", "update_endpoint"}
	RESTActions     = []string{"create_request", "import_swagger", "validate_endpoint", "test_auth"}
	HTTPMethods     = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	AuthTypes       = []string{"basic", "bearer", "oauth2", "api_key"}
	AssertionAction = []string{"create_assertion", "validate_response", "update_assertion", "list_assertions"}
	AssertionTypes  = []string{"contains", "not_contains", "xpath", "jsonpath", "http_status", "response_sla", "schema_compliance", "soap_fault", "script"}
	TestDataActions = []string{"create_datasource", "import_excel", "create_database_connection", "generate_test_data"}
	DataSourceTypes = []string{"excel", "csv", "jdbc", "grid", "xml", "groovy"}
	DataTypes       = []string{"users", "addresses", "orders", "products", "mixed"}
)

// Definition describes one tool for discovery.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// Property is one documented argument, used by the docs generator.
type Property struct {
	Name        string
	Type        string
	Description string
	Enum        []string
	Required    bool
}

type schemaDef struct {
	name        string
	description string
	props       []Property
}

var catalog = []schemaDef{
	{
		name:        ToolAnalyzeProject,
		description: "Analyze a SoapUI project and summarize its structure, test coverage, endpoint health or performance characteristics",
		props: []Property{
			projectPathProp(),
			{Name: "analysisType", Type: "string", Description: "Kind of analysis to run (default overview)", Enum: AnalysisTypes},
		},
	},
	{
		name:        ToolExecuteTestSuite,
		description: "Prepare execution of a SoapUI test suite with the headless test runner or the GUI",
		props: []Property{
			projectPathProp(),
			{Name: "testSuitePath", Type: "string", Description: "Name of the test suite to run", Required: true},
			{Name: "testCaseName", Type: "string", Description: "Run only this test case"},
			{Name: "environment", Type: "string", Description: "Project environment (default \"default\")"},
			{Name: "testRunner", Type: "string", Description: "Runner to use (default headless)", Enum: TestRunners},
			{Name: "reportsFolder", Type: "string", Description: "Folder the runner writes JUnit reports to"},
		},
	},
	{
		name:        ToolManageSOAPServices,
		description: "Import WSDL definitions, create SOAP requests, validate SOAP responses and update service endpoints",
		props: []Property{
			projectPathProp(),
			actionProp(SOAPActions),
			{Name: "wsdlUrl", Type: "string", Description: "WSDL location (import_wsdl)"},
			{Name: "serviceName", Type: "string", Description: "SOAP service or binding name"},
			{Name: "operationName", Type: "string", Description: "SOAP operation name"},
			{Name: "endpoint", Type: "string", Description: "Endpoint URL (update_endpoint)"},
		},
	},
	{
		name:        ToolManageRESTServices,
		description: "Create REST requests, import Swagger/OpenAPI definitions, validate endpoints and test authentication",
		props: []Property{
			projectPathProp(),
			actionProp(RESTActions),
			{Name: "endpoint", Type: "string", Description: "REST endpoint URL"},
			{Name: "method", Type: "string", Description: "HTTP method (default GET)", Enum: HTTPMethods},
			{Name: "swaggerUrl", Type: "string", Description: "Swagger/OpenAPI location (import_swagger)"},
			{Name: "authType", Type: "string", Description: "Authentication scheme (test_auth)", Enum: AuthTypes},
		},
	},
	{
		name:        ToolManageAssertions,
		description: "Create, update, list and validate test step assertions",
		props: []Property{
			projectPathProp(),
			actionProp(AssertionAction),
			{Name: "testStepName", Type: "string", Description: "Test step the assertion belongs to"},
			{Name: "assertionType", Type: "string", Description: "Assertion kind (create_assertion)", Enum: AssertionTypes},
			{Name: "assertionName", Type: "string", Description: "Existing assertion name (update_assertion)"},
			{Name: "expectedValue", Type: "string", Description: "Expected content, status code or SLA in milliseconds"},
			{Name: "expression", Type: "string", Description: "XPath, JSONPath or script expression"},
		},
	},
	{
		name:        ToolManageTestData,
		description: "Create data sources, import Excel data, configure database connections and generate synthetic test data",
		props: []Property{
			projectPathProp(),
			actionProp(TestDataActions),
			{Name: "dataSourceType", Type: "string", Description: "Data source kind (create_datasource)", Enum: DataSourceTypes},
			{Name: "name", Type: "string", Description: "Data source name"},
			{Name: "filePath", Type: "string", Description: "Excel workbook path (import_excel)"},
			{Name: "sheetName", Type: "string", Description: "Worksheet to import"},
			{Name: "connectionString", Type: "string", Description: "JDBC connection string (create_database_connection)"},
			{Name: "dataType", Type: "string", Description: "Kind of records to generate (default mixed)", Enum: DataTypes},
			{Name: "recordCount", Type: "integer", Description: "Number of records to generate, 1-1000 (default 10)"},
		},
	},
}

func projectPathProp() Property {
	return Property{Name: "projectPath", Type: "string", Description: "Path to the SoapUI project XML file", Required: true}
}

func actionProp(values []string) Property {
	return Property{Name: "action", Type: "string", Description: "Action to perform", Enum: values, Required: true}
}

func (d schemaDef) schema() map[string]any {
	props := make(map[string]any, len(d.props))
	var required []string
	for _, p := range d.props {
		prop := map[string]any{"type": p.Type, "description": p.Description}
		if p.Type == "integer" {
			// Hosts sometimes send numbers as strings.
			prop["type"] = []string{"integer", "string"}
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	out := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

var definitions = buildDefinitions()

func buildDefinitions() []Definition {
	out := make([]Definition, 0, len(catalog))
	for _, d := range catalog {
		raw, err := json.Marshal(d.schema())
		if err != nil {
			panic(fmt.Sprintf("marshal schema for %s: %v", d.name, err))
		}
		out = append(out, Definition{Name: d.name, Description: d.description, InputSchema: raw})
	}
	return out
}

// Definitions returns the full catalog in registration order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Names returns every tool name in registration order.
func Names() []string {
	out := make([]string, 0, len(catalog))
	for _, d := range catalog {
		out = append(out, d.name)
	}
	return out
}

// Properties returns the documented arguments of a tool, sorted with
// required fields first.
func Properties(name string) []Property {
	for _, d := range catalog {
		if d.name != name {
			continue
		}
		out := append([]Property(nil), d.props...)
		sort.SliceStable(out, func(i, j int) bool { return out[i].Required && !out[j].Required })
		return out
	}
	return nil
}

// CompileSchemas compiles every catalog schema. It is run at startup so a
// broken descriptor fails fast instead of on the first tools/list.
func CompileSchemas() (map[string]*gojsonschema.Schema, error) {
	out := make(map[string]*gojsonschema.Schema, len(definitions))
	for _, d := range definitions {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(d.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", d.Name, err)
		}
		out[d.Name] = schema
	}
	return out, nil
}

// ValidateArguments checks args against the named tool's schema and returns
// the violations, if any. Handlers never depend on this; it backs the
// "tools validate" command.
func ValidateArguments(name string, args map[string]any) ([]string, error) {
	schemas, err := CompileSchemas()
	if err != nil {
		return nil, err
	}
	schema, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s (known: %s)", name, strings.Join(Names(), ", "))
	}
	if args == nil {
		args = map[string]any{}
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", name, err)
	}
	var violations []string
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	sort.Strings(violations)
	return violations, nil
}

// Markdown renders the catalog as the "MCP Tools" reference used by the
// README and mcpdocgen.
func Markdown() string {
	var b strings.Builder
	for _, d := range catalog {
		fmt.Fprintf(&b, "### `%s`\n\n%s\n\n", d.name, d.description)
		b.WriteString("| Argument | Type | Required | Values |\n|---|---|---|---|\n")
		for _, p := range Properties(d.name) {
			req := ""
			if p.Required {
				req = "yes"
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", p.Name, p.Type, req, strings.Join(p.Enum, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
