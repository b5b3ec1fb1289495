package main

import (
	"os"

	"github.com/lintang-b-s/Multicutx/cmd/multicut/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
