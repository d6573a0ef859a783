package main

import (
	"os"

	"blotquant/cmd/blotquant/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
