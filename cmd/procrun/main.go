// procrun runs single Procfile entries through a POSIX shell.
//
// Usage:
//
//	procrun check                  List Procfile entries
//	procrun expand <name>          Print the expanded command
//	procrun run <name>             Run and print captured output
//	procrun exec <name>            Install the environment, then run
//	procrun start <name>           Replace procrun with the command
//	procrun digest <name>          Print the policy digest of the command
//	procrun set <name> <command>   Add or replace an entry
//	procrun rm <name>              Remove an entry
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sa6mwa/procrun/cmd/procrun/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	if err == nil {
		return
	}
	var exitErr *cmd.ExitCodeError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	fmt.Fprintf(os.Stderr, "procrun: %v\n", err)
	os.Exit(1)
}
