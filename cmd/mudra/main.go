package main

import (
	"fmt"
	"os"

	"github.com/ayusman/mudra/cmd/mudra/commands"
	"github.com/ayusman/mudra/internal/logging"
)

func main() {
	if _, err := logging.InitLoggerFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
	}
	defer logging.Sync()

	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
