package main

import (
	"os"

	"cairn/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
