package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeafContracts(t *testing.T) {
	d := newTestDispatcher()
	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"soap create_request without service", ToolManageSOAPServices,
			map[string]any{"action": "create_request"},
			"Error managing SOAP services: Service name is required for creating SOAP request"},
		{"soap create_request without operation", ToolManageSOAPServices,
			map[string]any{"action": "create_request", "serviceName": "Calc"},
			"Error managing SOAP services: Operation name is required for creating SOAP request"},
		{"soap import_wsdl", ToolManageSOAPServices,
			map[string]any{"action": "import_wsdl"},
			"Error managing SOAP services: WSDL URL is required for importing WSDL"},
		{"soap validate_response", ToolManageSOAPServices,
			map[string]any{"action": "validate_response"},
			"Error managing SOAP services: Service name is required for validating SOAP response"},
		{"soap update_endpoint without endpoint", ToolManageSOAPServices,
			map[string]any{"action": "update_endpoint", "serviceName": "Calc"},
			"Error managing SOAP services: Endpoint URL is required for updating SOAP endpoint"},
		{"rest create_request", ToolManageRESTServices,
			map[string]any{"action": "create_request"},
			"Error managing REST services: Endpoint is required for creating REST request"},
		{"rest create_request bad method", ToolManageRESTServices,
			map[string]any{"action": "create_request", "endpoint": "https://api.example.com", "method": "fetch"},
			"Error managing REST services: Unsupported HTTP method: FETCH"},
		{"rest import_swagger", ToolManageRESTServices,
			map[string]any{"action": "import_swagger"},
			"Error managing REST services: Swagger URL is required for importing Swagger definition"},
		{"rest validate_endpoint", ToolManageRESTServices,
			map[string]any{"action": "validate_endpoint"},
			"Error managing REST services: Endpoint is required for validating REST endpoint"},
		{"rest test_auth", ToolManageRESTServices,
			map[string]any{"action": "test_auth"},
			"Error managing REST services: Authentication type is required for testing authentication"},
		{"rest test_auth bad type", ToolManageRESTServices,
			map[string]any{"action": "test_auth", "authType": "kerberos"},
			"Error managing REST services: Unsupported authentication type: kerberos"},
		{"assertion create without step", ToolManageAssertions,
			map[string]any{"action": "create_assertion", "assertionType": "xpath"},
			"Error managing assertions: Test step name is required for creating assertion"},
		{"assertion create without type", ToolManageAssertions,
			map[string]any{"action": "create_assertion", "testStepName": "GetUser"},
			"Error managing assertions: Assertion type is required for creating assertion"},
		{"assertion create bad type", ToolManageAssertions,
			map[string]any{"action": "create_assertion", "testStepName": "GetUser", "assertionType": "regex"},
			"Error managing assertions: Unsupported assertion type: regex"},
		{"assertion validate", ToolManageAssertions,
			map[string]any{"action": "validate_response"},
			"Error managing assertions: Test step name is required for validating response"},
		{"assertion update", ToolManageAssertions,
			map[string]any{"action": "update_assertion", "testStepName": "GetUser"},
			"Error managing assertions: Assertion name is required for updating assertion"},
		{"datasource", ToolManageTestData,
			map[string]any{"action": "create_datasource"},
			"Error managing test data: Data source type is required for creating data source"},
		{"datasource bad type", ToolManageTestData,
			map[string]any{"action": "create_datasource", "dataSourceType": "ldap"},
			"Error managing test data: Unsupported data source type: ldap"},
		{"import excel", ToolManageTestData,
			map[string]any{"action": "import_excel"},
			"Error managing test data: File path is required for importing Excel data"},
		{"db connection", ToolManageTestData,
			map[string]any{"action": "create_database_connection"},
			"Error managing test data: Connection string is required for creating database connection"},
		{"record count too large", ToolManageTestData,
			map[string]any{"action": "generate_test_data", "recordCount": 5000},
			"Error managing test data: Record count must be an integer between 1 and 1000"},
		{"record count not numeric", ToolManageTestData,
			map[string]any{"action": "generate_test_data", "recordCount": "many"},
			"Error managing test data: Record count must be an integer between 1 and 1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.args["projectPath"] = "/p.xml"
			res := d.Call(tt.tool, tt.args)
			assert.False(t, res.IsError)
			assert.Equal(t, tt.want, res.Text())
		})
	}
}

func TestLeafSuccess(t *testing.T) {
	d := newTestDispatcher()
	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		contains []string
	}{
		{"soap import", ToolManageSOAPServices,
			map[string]any{"action": "import_wsdl", "wsdlUrl": "http://example.com/calc?wsdl"},
			[]string{"# WSDL Import", "WSDL: http://example.com/calc?wsdl"}},
		{"soap request", ToolManageSOAPServices,
			map[string]any{"action": "create_request", "serviceName": "Calc", "operationName": "Add"},
			[]string{"Service: Calc", "<Add>", "</Add>"}},
		{"soap validate", ToolManageSOAPServices,
			map[string]any{"action": "validate_response", "serviceName": "Calc"},
			[]string{"Operation: (all operations)"}},
		{"soap endpoint", ToolManageSOAPServices,
			map[string]any{"action": "update_endpoint", "serviceName": "Calc", "endpoint": "https://calc.internal/ws"},
			[]string{"New endpoint: https://calc.internal/ws"}},
		{"rest post", ToolManageRESTServices,
			map[string]any{"action": "create_request", "endpoint": "https://api.example.com/users", "method": "post"},
			[]string{"POST https://api.example.com/users", "Content-Type: application/json"}},
		{"rest default method", ToolManageRESTServices,
			map[string]any{"action": "create_request", "endpoint": "https://api.example.com/users"},
			[]string{"Method: GET"}},
		{"rest swagger", ToolManageRESTServices,
			map[string]any{"action": "import_swagger", "swaggerUrl": "https://api.example.com/openapi.json"},
			[]string{"Definition: https://api.example.com/openapi.json"}},
		{"rest validate", ToolManageRESTServices,
			map[string]any{"action": "validate_endpoint", "endpoint": "https://api.example.com/health"},
			[]string{"# REST Endpoint Validation"}},
		{"rest auth", ToolManageRESTServices,
			map[string]any{"action": "test_auth", "authType": "bearer"},
			[]string{"Authorization: Bearer <token>", "Endpoint: (service default)"}},
		{"assertion create", ToolManageAssertions,
			map[string]any{"action": "create_assertion", "testStepName": "GetUser", "assertionType": "jsonpath", "expression": "$.id", "expectedValue": "42"},
			[]string{"Assertion: JsonPath Match", "Expression: $.id", "Expected: 42"}},
		{"assertion update", ToolManageAssertions,
			map[string]any{"action": "update_assertion", "testStepName": "GetUser", "assertionName": "Status"},
			[]string{"# Assertion Updated", "Assertion: Status"}},
		{"assertion list", ToolManageAssertions,
			map[string]any{"action": "list_assertions"},
			[]string{"Test step: (all test steps)", "- soap_fault: Not SOAP Fault"}},
		{"datasource", ToolManageTestData,
			map[string]any{"action": "create_datasource", "dataSourceType": "CSV"},
			[]string{"Name: csv-datasource", "Type: csv"}},
		{"excel", ToolManageTestData,
			map[string]any{"action": "import_excel", "filePath": "/data/users.xlsx", "sheetName": "Users"},
			[]string{"Workbook: /data/users.xlsx", "Sheet: Users"}},
		{"generate defaults", ToolManageTestData,
			map[string]any{"action": "generate_test_data"},
			[]string{"Data type: mixed", "Records: 10"}},
		{"generate string count", ToolManageTestData,
			map[string]any{"action": "generate_test_data", "dataType": "orders", "recordCount": "25"},
			[]string{"Data type: orders", "Records: 25", "- customerId"}},
		{"generate float count", ToolManageTestData,
			map[string]any{"action": "generate_test_data", "recordCount": float64(3)},
			[]string{"Records: 3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.args["projectPath"] = "/p.xml"
			res := d.Call(tt.tool, tt.args)
			assert.False(t, res.IsError)
			assert.Contains(t, res.Text(), "Generated: 2026-03-14T09:26:53Z")
			for _, want := range tt.contains {
				assert.Contains(t, res.Text(), want)
			}
		})
	}
}

func TestDatabaseConnectionRedactsPassword(t *testing.T) {
	d := newTestDispatcher()
	res := d.Call(ToolManageTestData, map[string]any{
		"projectPath":      "/p.xml",
		"action":           "create_database_connection",
		"connectionString": "jdbc:postgresql://db:5432/app?user=qa&password=secret",
	})
	assert.False(t, res.IsError)
	assert.NotContains(t, res.Text(), "secret")
	assert.Contains(t, res.Text(), "password=[REDACTED]")
	assert.Contains(t, res.Text(), "user=qa")
}

func TestDatabaseConnectionRedactsSpacedPassword(t *testing.T) {
	d := newTestDispatcher()
	res := d.Call(ToolManageTestData, map[string]any{
		"projectPath":      "/p.xml",
		"action":           "create_database_connection",
		"connectionString": "Server=h;Password = my secret pass;",
	})
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text(), "Connection string: Server=h;Password = [REDACTED];")
	assert.NotContains(t, res.Text(), "secret pass")
}
