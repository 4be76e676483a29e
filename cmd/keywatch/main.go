package main

import (
	"os"

	"github.com/keywatchhq/keywatch/cmd/keywatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
