// The main package for the leadhunter executable.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/JakeFAU/lead-hunter/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
