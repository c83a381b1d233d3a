package tools

import (
	"fmt"
	"slices"
	"strings"

	"github.com/soapbridge/soapbridge/internal/core"
)

const (
	prefixTestData = "Error managing test data"

	defaultRecordCount = 10
	maxRecordCount     = 1000
)

type testDataArgs struct {
	ProjectPath      string
	Action           string
	DataSourceType   string
	Name             string
	FilePath         string
	SheetName        string
	ConnectionString string
	DataType         string
	RecordCount      int
}

func decodeTestDataArgs(a Arguments) (testDataArgs, error) {
	path, err := a.projectPath()
	if err != nil {
		return testDataArgs{}, err
	}
	action, err := a.action()
	if err != nil {
		return testDataArgs{}, err
	}
	args := testDataArgs{
		ProjectPath:      path,
		Action:           action,
		DataSourceType:   strings.ToLower(a.optional("dataSourceType")),
		Name:             a.optional("name"),
		FilePath:         a.optional("filePath"),
		SheetName:        a.optional("sheetName"),
		ConnectionString: a.optional("connectionString"),
		DataType:         strings.ToLower(a.optional("dataType")),
		RecordCount:      defaultRecordCount,
	}
	if action == "generate_test_data" {
		n, present, valid := a.integer("recordCount")
		if present && (!valid || n < 1 || n > maxRecordCount) {
			return testDataArgs{}, &core.InvalidFieldError{
				Field:   "recordCount",
				Message: fmt.Sprintf("Record count must be an integer between 1 and %d", maxRecordCount),
			}
		}
		if present {
			args.RecordCount = n
		}
	}
	return args, nil
}

func (h *handlers) manageTestData(a Arguments) core.Result {
	text, err := h.testData(a)
	return respond(prefixTestData, text, err)
}

func (h *handlers) testData(a Arguments) (string, error) {
	args, err := decodeTestDataArgs(a)
	if err != nil {
		return "", err
	}
	switch args.Action {
	case "create_datasource":
		return h.createDataSource(args)
	case "import_excel":
		return h.importExcel(args)
	case "create_database_connection":
		return h.createDatabaseConnection(args)
	case "generate_test_data":
		return h.generateTestData(args)
	default:
		return "", &core.UnknownDiscriminatorError{Label: "Unknown test data action", Value: args.Action}
	}
}

func (h *handlers) createDataSource(args testDataArgs) (string, error) {
	if args.DataSourceType == "" {
		return "", missing("dataSourceType", "Data source type is required for creating data source")
	}
	if !slices.Contains(DataSourceTypes, args.DataSourceType) {
		return "", &core.UnknownDiscriminatorError{Label: "Unsupported data source type", Value: args.DataSourceType}
	}
	name := args.Name
	if name == "" {
		name = args.DataSourceType + "-datasource"
	}
	var b strings.Builder
	b.WriteString("# Data Source Created\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Name: %s\n", name)
	fmt.Fprintf(&b, "Type: %s\n", args.DataSourceType)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("Add a DataSource Loop step after the requests that consume its properties.\n")
	return b.String(), nil
}

func (h *handlers) importExcel(args testDataArgs) (string, error) {
	if args.FilePath == "" {
		return "", missing("filePath", "File path is required for importing Excel data")
	}
	sheet := args.SheetName
	if sheet == "" {
		sheet = "(first sheet)"
	}
	var b strings.Builder
	b.WriteString("# Excel Import\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Workbook: %s\n", args.FilePath)
	fmt.Fprintf(&b, "Sheet: %s\n", sheet)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("The first row is read as property names; each following row is one iteration.\n")
	return b.String(), nil
}

func (h *handlers) createDatabaseConnection(args testDataArgs) (string, error) {
	if args.ConnectionString == "" {
		return "", missing("connectionString", "Connection string is required for creating database connection")
	}
	var b strings.Builder
	b.WriteString("# Database Connection\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Connection string: %s\n", h.redactor.Redact(args.ConnectionString))
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("Store the password in a project property instead of the connection string.\n")
	b.WriteString("Reference it as ${#Project#dbPassword} from JDBC steps.\n")
	return b.String(), nil
}

var sampleFields = map[string][]string{
	"users":     {"id", "username", "email", "createdAt"},
	"addresses": {"id", "street", "city", "postalCode", "country"},
	"orders":    {"id", "customerId", "total", "currency", "status"},
	"products":  {"id", "sku", "name", "price"},
	"mixed":     {"id", "name", "email", "amount", "status"},
}

func (h *handlers) generateTestData(args testDataArgs) (string, error) {
	kind := args.DataType
	if kind == "" {
		kind = "mixed"
	}
	if !slices.Contains(DataTypes, kind) {
		return "", &core.UnknownDiscriminatorError{Label: "Unsupported data type", Value: kind}
	}
	var b strings.Builder
	b.WriteString("# Generated Test Data\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Data type: %s\n", kind)
	fmt.Fprintf(&b, "Records: %d\n", args.RecordCount)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("## Columns\n")
	for _, f := range sampleFields[kind] {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	b.WriteString("\nLoad the records into a Grid data source to drive a DataSource Loop.\n")
	return b.String(), nil
}
