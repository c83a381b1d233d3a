package main

import (
	"fmt"
	"os"

	"github.com/soapbridge/soapbridge/internal/tools"
)

func main() {
	fmt.Fprintln(os.Stdout, "# MCP Tools (Generated)")
	fmt.Fprintln(os.Stdout)
	fmt.Fprintln(os.Stdout, "This file is generated from `internal/tools/catalog.go`.")
	fmt.Fprintln(os.Stdout)
	fmt.Fprint(os.Stdout, tools.Markdown())
}
