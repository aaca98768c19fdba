package main

import (
	"os"

	"github.com/pengelbrecht/calc/cmd/calc/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
