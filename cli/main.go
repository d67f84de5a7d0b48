// Command kisaan is the terminal client for the KisaanSahayak chat gateway.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd, closeApp := newRootCmd()
	err := cmd.Execute()
	if closeErr := closeApp(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
