package main

import (
	"os"

	"github.com/JonMunkholm/drygas/cmd/drygas/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
