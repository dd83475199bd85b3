package main

import (
	"os"

	"github.com/mohit1233k/Ranking-agent/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
