package main

import (
	"context"
	"os"

	"github.com/desertthunder/nicofix/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := runner.Command().Run(context.Background(), os.Args); err != nil {
		if hint := describeError(err); hint != "" {
			logger.Warn(hint)
		}
		logger.Fatalf("nicofix: %v", err)
	}
}
