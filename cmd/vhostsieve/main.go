package main

import (
	"os"

	"github.com/vhostsieve/vhostsieve/internal/cli"
	"github.com/vhostsieve/vhostsieve/internal/utils/logger"
)

func main() {
	runner := cli.NewRunner()

	if err := runner.Initialize(); err != nil {
		logger.Fatalf("%v", err)
	}

	if err := runner.Run(); err != nil {
		logger.Fatalf("%v", err)
	}

	os.Exit(0)
}
