package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/timothepoznanski/poznote-mcp/pkg/transport"
)

func main() {
	err := newRootCmd(&options{}).Execute()
	os.Exit(report(os.Stderr, err))
}

// report prints err for the operator and returns the process exit code.
func report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	fmt.Fprintf(w, "Error: %v\n", err)

	var fault *transport.Fault
	if errors.As(err, &fault) && fault.Remediation != "" {
		fmt.Fprintf(w, "%s\n", fault.Remediation)
	}

	return 1
}
