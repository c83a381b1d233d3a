package tools

import (
	"fmt"
	"slices"
	"strings"

	"github.com/soapbridge/soapbridge/internal/core"
)

const prefixREST = "Error managing REST services"

type restArgs struct {
	ProjectPath string
	Action      string
	Endpoint    string
	Method      string
	SwaggerURL  string
	AuthType    string
}

func decodeRESTArgs(a Arguments) (restArgs, error) {
	path, err := a.projectPath()
	if err != nil {
		return restArgs{}, err
	}
	action, err := a.action()
	if err != nil {
		return restArgs{}, err
	}
	return restArgs{
		ProjectPath: path,
		Action:      action,
		Endpoint:    a.optional("endpoint"),
		Method:      strings.ToUpper(a.optional("method")),
		SwaggerURL:  a.optional("swaggerUrl"),
		AuthType:    strings.ToLower(a.optional("authType")),
	}, nil
}

func (h *handlers) manageRESTServices(a Arguments) core.Result {
	text, err := h.rest(a)
	return respond(prefixREST, text, err)
}

func (h *handlers) rest(a Arguments) (string, error) {
	args, err := decodeRESTArgs(a)
	if err != nil {
		return "", err
	}
	switch args.Action {
	case "create_request":
		return h.createRESTRequest(args)
	case "import_swagger":
		return h.importSwagger(args)
	case "validate_endpoint":
		return h.validateRESTEndpoint(args)
	case "test_auth":
		return h.testAuth(args)
	default:
		return "", &core.UnknownDiscriminatorError{Label: "Unknown REST action", Value: args.Action}
	}
}

func (h *handlers) createRESTRequest(args restArgs) (string, error) {
	if args.Endpoint == "" {
		return "", missing("endpoint", "Endpoint is required for creating REST request")
	}
	method := args.Method
	if method == "" {
		method = "GET"
	}
	if !slices.Contains(HTTPMethods, method) {
		return "", &core.UnknownDiscriminatorError{Label: "Unsupported HTTP method", Value: method}
	}
	var b strings.Builder
	b.WriteString("# REST Request\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Endpoint: %s\n", args.Endpoint)
	fmt.Fprintf(&b, "Method: %s\n", method)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("## Request\n")
	fmt.Fprintf(&b, "%s %s\n", method, args.Endpoint)
	b.WriteString("Accept: application/json\n")
	switch method {
	case "POST", "PUT", "PATCH":
		b.WriteString("Content-Type: application/json\n\n{}\n")
	}
	b.WriteString("\nAdd a Valid HTTP Status Codes assertion before saving the step.\n")
	return b.String(), nil
}

func (h *handlers) importSwagger(args restArgs) (string, error) {
	if args.SwaggerURL == "" {
		return "", missing("swaggerUrl", "Swagger URL is required for importing Swagger definition")
	}
	var b strings.Builder
	b.WriteString("# Swagger Import\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Definition: %s\n", args.SwaggerURL)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("## Import steps\n")
	b.WriteString("1. Open the project and choose Import Swagger/OpenAPI\n")
	fmt.Fprintf(&b, "2. Enter %s as the definition URL\n", args.SwaggerURL)
	b.WriteString("3. A REST service with one resource per path is added to the project\n")
	return b.String(), nil
}

func (h *handlers) validateRESTEndpoint(args restArgs) (string, error) {
	if args.Endpoint == "" {
		return "", missing("endpoint", "Endpoint is required for validating REST endpoint")
	}
	var b strings.Builder
	b.WriteString("# REST Endpoint Validation\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Endpoint: %s\n", args.Endpoint)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("## Checks\n")
	b.WriteString("- Valid HTTP Status Codes: 200-299\n")
	b.WriteString("- Response SLA: 2000 ms\n")
	b.WriteString("- Content-Type header matches the declared media type\n")
	return b.String(), nil
}

func (h *handlers) testAuth(args restArgs) (string, error) {
	if args.AuthType == "" {
		return "", missing("authType", "Authentication type is required for testing authentication")
	}
	if !slices.Contains(AuthTypes, args.AuthType) {
		return "", &core.UnknownDiscriminatorError{Label: "Unsupported authentication type", Value: args.AuthType}
	}
	endpoint := args.Endpoint
	if endpoint == "" {
		endpoint = "(service default)"
	}
	var b strings.Builder
	b.WriteString("# Authentication Test\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Endpoint: %s\n", endpoint)
	fmt.Fprintf(&b, "Auth type: %s\n", args.AuthType)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("## Profile\n")
	switch args.AuthType {
	case "basic":
		b.WriteString("Authorization: Basic <base64 user:password>\n")
	case "bearer":
		b.WriteString("Authorization: Bearer <token>\n")
	case "oauth2":
		b.WriteString("OAuth 2.0 profile: configure the token endpoint, client id and scope, then Get Access Token\n")
	case "api_key":
		b.WriteString("X-API-Key: <key> (header) or api_key=<key> (query parameter)\n")
	}
	b.WriteString("\nExpect 401 without credentials and 2xx with them.\n")
	return b.String(), nil
}
