package main

import (
	"os"

	"github.com/vzahanych/climaai-weather-api/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
