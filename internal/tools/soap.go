package tools

import (
	"fmt"
	"strings"

	"github.com/soapbridge/soapbridge/internal/core"
)

const prefixSOAP = "Error managing SOAP services"

type soapArgs struct {
	ProjectPath   string
	Action        string
	WSDLURL       string
	ServiceName   string
	OperationName string
	Endpoint      string
}

func decodeSOAPArgs(a Arguments) (soapArgs, error) {
	path, err := a.projectPath()
	if err != nil {
		return soapArgs{}, err
	}
	action, err := a.action()
	if err != nil {
		return soapArgs{}, err
	}
	return soapArgs{
		ProjectPath:   path,
		Action:        action,
		WSDLURL:       a.optional("wsdlUrl"),
		ServiceName:   a.optional("serviceName"),
		OperationName: a.optional("operationName"),
		Endpoint:      a.optional("endpoint"),
	}, nil
}

func (h *handlers) manageSOAPServices(a Arguments) core.Result {
	text, err := h.soap(a)
	return respond(prefixSOAP, text, err)
}

func (h *handlers) soap(a Arguments) (string, error) {
	args, err := decodeSOAPArgs(a)
	if err != nil {
		return "", err
	}
	switch args.Action {
	case "import_wsdl":
		return h.importWSDL(args)
	case "create_request":
		return h.createSOAPRequest(args)
	case "validate_response":
		return h.validateSOAPResponse(args)
	case "update_endpoint":
		return h.updateSOAPEndpoint(args)
	default:
		return "", &core.UnknownDiscriminatorError{Label: "Unknown SOAP action", Value: args.Action}
	}
}

func missing(field, message string) error {
	return &core.MissingFieldError{Field: field, Message: message}
}

func (h *handlers) importWSDL(args soapArgs) (string, error) {
	if args.WSDLURL == "" {
		return "", missing("wsdlUrl", "WSDL URL is required for importing WSDL")
	}
	var b strings.Builder
	b.WriteString("# WSDL Import\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "WSDL: %s\n", args.WSDLURL)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("## Import steps\n")
	b.WriteString("1. Open the project and choose Add WSDL\n")
	fmt.Fprintf(&b, "2. Enter %s as the definition URL\n", args.WSDLURL)
	b.WriteString("3. Enable Create Requests to generate a sample request per operation\n")
	b.WriteString("4. Optionally create a test suite and a mock service from the new interface\n")
	return b.String(), nil
}

func (h *handlers) createSOAPRequest(args soapArgs) (string, error) {
	if args.ServiceName == "" {
		return "", missing("serviceName", "Service name is required for creating SOAP request")
	}
	if args.OperationName == "" {
		return "", missing("operationName", "Operation name is required for creating SOAP request")
	}
	var b strings.Builder
	b.WriteString("# SOAP Request\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Service: %s\n", args.ServiceName)
	fmt.Fprintf(&b, "Operation: %s\n", args.OperationName)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("## Request template\n")
	b.WriteString("```xml\n")
	b.WriteString("<soapenv:Envelope xmlns:soapenv=\"http://schemas.xmlsoap.org/soap/envelope/\">\n")
	b.WriteString("   <soapenv:Header/>\n")
	b.WriteString("   <soapenv:Body>\n")
	fmt.Fprintf(&b, "      <%s>\n", args.OperationName)
	b.WriteString("         <!-- request parameters -->\n")
	fmt.Fprintf(&b, "      </%s>\n", args.OperationName)
	b.WriteString("   </soapenv:Body>\n")
	b.WriteString("</soapenv:Envelope>\n")
	b.WriteString("```\n")
	return b.String(), nil
}

func (h *handlers) validateSOAPResponse(args soapArgs) (string, error) {
	if args.ServiceName == "" {
		return "", missing("serviceName", "Service name is required for validating SOAP response")
	}
	operation := args.OperationName
	if operation == "" {
		operation = "(all operations)"
	}
	var b strings.Builder
	b.WriteString("# SOAP Response Validation\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Service: %s\n", args.ServiceName)
	fmt.Fprintf(&b, "Operation: %s\n", operation)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("## Checks\n")
	b.WriteString("- SOAP Response: the body is a well-formed SOAP envelope\n")
	b.WriteString("- Schema Compliance: the body matches the WSDL message definitions\n")
	b.WriteString("- Not SOAP Fault: the response carries no soapenv:Fault element\n")
	return b.String(), nil
}

func (h *handlers) updateSOAPEndpoint(args soapArgs) (string, error) {
	if args.ServiceName == "" {
		return "", missing("serviceName", "Service name is required for updating SOAP endpoint")
	}
	if args.Endpoint == "" {
		return "", missing("endpoint", "Endpoint URL is required for updating SOAP endpoint")
	}
	var b strings.Builder
	b.WriteString("# SOAP Endpoint Update\n\n")
	fmt.Fprintf(&b, "Project: %s\n", args.ProjectPath)
	fmt.Fprintf(&b, "Service: %s\n", args.ServiceName)
	fmt.Fprintf(&b, "New endpoint: %s\n", args.Endpoint)
	fmt.Fprintf(&b, "Generated: %s\n\n", h.timestamp())
	b.WriteString("Every request of the interface will be pointed at the new endpoint.\n")
	b.WriteString("Use an environment instead when the endpoint differs per stage.\n")
	return b.String(), nil
}
